package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"event-ticketing/internal/services"
	"event-ticketing/internal/status"
	"event-ticketing/models"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	identity *services.Identity
	err      error
	header   string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, header string) (*services.Identity, error) {
	f.header = header
	return f.identity, f.err
}

func newRequestEvent(method, target string) *core.RequestEvent {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "203.0.113.9:40000"
	req.Header.Set("User-Agent", "Mozilla/5.0")

	e := &core.RequestEvent{}
	e.Request = req
	e.Response = httptest.NewRecorder()
	return e
}

func requireAPIStatus(t *testing.T, err error, code int) *router.ApiError {
	t.Helper()
	var apiErr *router.ApiError
	require.True(t, errors.As(err, &apiErr), "expected an api error, got %v", err)
	assert.Equal(t, code, apiErr.Status)
	return apiErr
}

// clientMessage is the text PocketBase sends for err, after sentence
// normalization.
func clientMessage(err error) string {
	return router.NewApiError(status.HTTPStatus(err), status.Message(err), nil).Message
}

func TestRequireAuth_StoresIdentity(t *testing.T) {
	auth := &fakeAuthenticator{identity: &services.Identity{UserID: "admin-1", Email: "ada@example.com", Token: "tok"}}
	e := newRequestEvent(http.MethodGet, "/api/v1/auth/sessions")
	e.Request.Header.Set("Authorization", "Bearer tok")

	require.NoError(t, RequireAuth(auth)(e))

	assert.Equal(t, "Bearer tok", auth.header)
	identity := identityFrom(e)
	require.NotNil(t, identity)
	assert.Equal(t, "admin-1", identity.UserID)
}

func TestRequireAuth_Rejects(t *testing.T) {
	tests := map[string]error{
		"missing header": status.ErrUnauthorized,
		"expired":        status.ErrTokenExpired,
		"revoked":        status.ErrSessionRevoked,
	}
	for name, authErr := range tests {
		t.Run(name, func(t *testing.T) {
			e := newRequestEvent(http.MethodGet, "/api/v1/dashboard/stats")

			err := RequireAuth(&fakeAuthenticator{err: authErr})(e)

			apiErr := requireAPIStatus(t, err, http.StatusUnauthorized)
			assert.Equal(t, clientMessage(authErr), apiErr.Message)
			assert.Nil(t, identityFrom(e))
		})
	}
}

func TestAPIError_HidesInternalDetails(t *testing.T) {
	e := newRequestEvent(http.MethodPost, "/api/v1/payment/purchase")

	apiErr := requireAPIStatus(t, apiError(e, "test", errors.New("sql: connection refused")), http.StatusInternalServerError)
	assert.NotContains(t, apiErr.Message, "sql")

	wrapped := errors.Join(status.ErrUpstream, errors.New("paystack: 503"))
	apiErr = requireAPIStatus(t, apiError(e, "test", wrapped), http.StatusBadGateway)
	assert.Equal(t, clientMessage(status.ErrUpstream), apiErr.Message)
	assert.Equal(t, "A downstream service is unavailable, please try again.", apiErr.Message)
}

func TestRequestContext(t *testing.T) {
	e := newRequestEvent(http.MethodPost, "/api/v1/auth/verify-otp")
	e.Request.Header.Set("X-Forwarded-For", "198.51.100.20, 10.0.0.1")

	rc := requestContext(e)

	assert.Equal(t, "198.51.100.20", rc.IPAddress)
	assert.Equal(t, "Mozilla/5.0", rc.UserAgent)
}

func TestNewSessionView_UsesKeyAsID(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	view := newSessionView(&models.Session{
		Key:        "session:admin-1:1748768400000:00000001",
		Token:      "secret-token",
		IPAddress:  "198.51.100.20",
		LoginTime:  now,
		LastActive: now,
		IsCurrent:  true,
	})

	assert.Equal(t, "session:admin-1:1748768400000:00000001", view.ID)
	assert.True(t, view.IsCurrent)
	assert.Equal(t, "198.51.100.20", view.IPAddress)
}
