package handlers

import (
	"net/http"
	"time"

	"event-ticketing/internal/services"
	"event-ticketing/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

// sessionView is a session as shown to its owner. Tokens are never echoed.
type sessionView struct {
	ID         string            `json:"id"`
	DeviceInfo models.DeviceInfo `json:"deviceInfo"`
	Location   models.Location   `json:"location"`
	IPAddress  string            `json:"ipAddress"`
	LoginTime  time.Time         `json:"loginTime"`
	LastActive time.Time         `json:"lastActive"`
	IsCurrent  bool              `json:"isCurrent"`
}

func newSessionView(s *models.Session) sessionView {
	return sessionView{
		ID:         s.Key,
		DeviceInfo: s.DeviceInfo,
		Location:   s.Location,
		IPAddress:  s.IPAddress,
		LoginTime:  s.LoginTime,
		LastActive: s.LastActive,
		IsCurrent:  s.IsCurrent,
	}
}

type SessionHandler struct {
	auth *services.AuthService
}

func NewSessionHandler(auth *services.AuthService) *SessionHandler {
	return &SessionHandler{auth: auth}
}

func (h *SessionHandler) List(e *core.RequestEvent) error {
	sessions, err := h.auth.Sessions(e.Request.Context(), identityFrom(e))
	if err != nil {
		return apiError(e, "sessionHandler.List()", err)
	}

	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, newSessionView(s))
	}
	return e.JSON(http.StatusOK, map[string]any{
		"sessions": views,
		"total":    len(views),
	})
}

// Revoke removes one session named by token or sessionId, in the body or the
// query string. With neither it revokes the caller's own session.
func (h *SessionHandler) Revoke(e *core.RequestEvent) error {
	var req struct {
		Token     string `json:"token"`
		SessionID string `json:"sessionId"`
	}
	if e.Request.ContentLength > 0 {
		if err := bindBody(e, &req); err != nil {
			return err
		}
	}
	query := e.Request.URL.Query()
	if req.Token == "" {
		req.Token = query.Get("token")
	}
	if req.SessionID == "" {
		req.SessionID = query.Get("sessionId")
	}

	removed, err := h.auth.RevokeSession(e.Request.Context(), identityFrom(e), req.Token, req.SessionID)
	if err != nil {
		return apiError(e, "sessionHandler.Revoke()", err)
	}
	if !removed {
		return apis.NewNotFoundError("Session not found", nil)
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Session revoked"})
}

func (h *SessionHandler) RevokeOthers(e *core.RequestEvent) error {
	n, err := h.auth.RevokeOthers(e.Request.Context(), identityFrom(e))
	if err != nil {
		return apiError(e, "sessionHandler.RevokeOthers()", err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"message": "Other sessions revoked",
		"revoked": n,
	})
}
