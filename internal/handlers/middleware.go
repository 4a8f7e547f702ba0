package handlers

import (
	"context"

	"event-ticketing/internal/services"
	"event-ticketing/models"
	"event-ticketing/utils"

	"github.com/pocketbase/pocketbase/core"
)

const identityKey = "identity"

// Authenticator validates the Authorization header of a request.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*services.Identity, error)
}

// RequireAuth rejects requests without a live session and stores the
// caller's identity on the request event.
func RequireAuth(auth Authenticator) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		identity, err := auth.Authenticate(e.Request.Context(), e.Request.Header.Get("Authorization"))
		if err != nil {
			return apiError(e, "RequireAuth()", err)
		}
		e.Set(identityKey, identity)
		return e.Next()
	}
}

func identityFrom(e *core.RequestEvent) *services.Identity {
	identity, _ := e.Get(identityKey).(*services.Identity)
	return identity
}

func requestContext(e *core.RequestEvent) models.RequestContext {
	return models.RequestContext{
		IPAddress: utils.ClientIP(e.Request),
		UserAgent: e.Request.Header.Get("User-Agent"),
	}
}
