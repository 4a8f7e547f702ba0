package handlers

import (
	"fmt"
	"net/http"

	"event-ticketing/internal/services"
	"event-ticketing/models"

	"github.com/pocketbase/pocketbase/core"
)

type AuthHandler struct {
	credentials *services.CredentialService
	auth        *services.AuthService
	activities  services.ActivityRecorder
}

func NewAuthHandler(credentials *services.CredentialService, auth *services.AuthService, activities services.ActivityRecorder) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		auth:        auth,
		activities:  activities,
	}
}

// CreateAccount registers another admin. Requires an authenticated admin.
func (h *AuthHandler) CreateAccount(e *core.RequestEvent) error {
	var req services.CreateAdminInput
	if err := bindBody(e, &req); err != nil {
		return err
	}

	admin, err := h.credentials.Create(e.Request.Context(), req)
	if err != nil {
		return apiError(e, "authHandler.CreateAccount()", err)
	}

	h.activities.Record(e.Request.Context(), models.ActivityUserRegistered, fmt.Sprintf("%s joined as admin", admin.FullName))
	return e.JSON(http.StatusCreated, map[string]any{
		"message": "Account created",
		"admin":   admin,
	})
}

func (h *AuthHandler) Login(e *core.RequestEvent) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bindBody(e, &req); err != nil {
		return err
	}

	if err := h.credentials.BeginLogin(e.Request.Context(), req.Email, req.Password); err != nil {
		return apiError(e, "authHandler.Login()", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message": "OTP sent to your email",
	})
}

func (h *AuthHandler) VerifyOtp(e *core.RequestEvent) error {
	var req struct {
		Email string `json:"email"`
		Otp   string `json:"otp"`
	}
	if err := bindBody(e, &req); err != nil {
		return err
	}
	ctx := e.Request.Context()

	admin, err := h.credentials.VerifyOtp(ctx, req.Email, req.Otp)
	if err != nil {
		return apiError(e, "authHandler.VerifyOtp()", err)
	}

	result, err := h.auth.Login(ctx, admin, requestContext(e))
	if err != nil {
		return apiError(e, "authHandler.VerifyOtp()", err)
	}

	h.activities.Record(ctx, models.ActivityUserLogin, fmt.Sprintf("%s logged in from %s", admin.FullName, result.Session.DeviceInfo.Browser))
	return e.JSON(http.StatusOK, map[string]any{
		"message":      "Login successful",
		"token":        result.Token,
		"refreshToken": result.RefreshToken,
		"session":      newSessionView(result.Session),
		"admin":        admin,
	})
}

func (h *AuthHandler) ResendOtp(e *core.RequestEvent) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := bindBody(e, &req); err != nil {
		return err
	}

	if err := h.credentials.ResendOtp(e.Request.Context(), req.Email); err != nil {
		return apiError(e, "authHandler.ResendOtp()", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message": "A new OTP has been sent",
	})
}

func (h *AuthHandler) Logout(e *core.RequestEvent) error {
	if err := h.auth.Logout(e.Request.Context(), identityFrom(e)); err != nil {
		return apiError(e, "authHandler.Logout()", err)
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Logged out"})
}

// Me returns the authenticated admin.
func (h *AuthHandler) Me(e *core.RequestEvent) error {
	admin, err := h.credentials.FindByID(e.Request.Context(), identityFrom(e).UserID)
	if err != nil {
		return apiError(e, "authHandler.Me()", err)
	}
	return e.JSON(http.StatusOK, map[string]any{"admin": admin})
}
