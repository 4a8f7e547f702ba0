package handlers

import (
	"log/slog"
	"net/http"

	"event-ticketing/internal/status"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

// apiError converts a service error into the JSON error response. Only
// unexpected failures are logged; their details never reach the client.
func apiError(e *core.RequestEvent, op string, err error) error {
	code := status.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		slog.Error(op, "method", e.Request.Method, "path", e.Request.URL.Path, "error", err)
	}
	return apis.NewApiError(code, status.Message(err), nil)
}

func bindBody(e *core.RequestEvent, dst any) error {
	if err := e.BindBody(dst); err != nil {
		return apis.NewBadRequestError("Invalid request body", nil)
	}
	return nil
}
