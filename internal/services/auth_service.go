package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"event-ticketing/internal/status"
	"event-ticketing/models"
	"event-ticketing/monitoring"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/tools/store"
)

const maxCachedTokens = 10000

// SessionRegistry is the subset of the session store the auth layer needs.
type SessionRegistry interface {
	Create(ctx context.Context, userID, email, token string, rc models.RequestContext) (*models.Session, error)
	List(ctx context.Context, userID, currentToken string) ([]*models.Session, error)
	VerifyAndTouch(ctx context.Context, userID, token string) (bool, error)
	Revoke(ctx context.Context, userID, token string) (bool, error)
	RevokeKey(ctx context.Context, userID, key string) (bool, error)
	RevokeAllOthers(ctx context.Context, userID, currentToken string) (int, error)
	RevokeAll(ctx context.Context, userID string) (int, error)
}

type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Identity is what an authenticated request carries.
type Identity struct {
	UserID string
	Email  string
	Token  string
}

type LoginResult struct {
	Token        string          `json:"token"`
	RefreshToken string          `json:"refreshToken"`
	Session      *models.Session `json:"session"`
}

type AuthSettings struct {
	Secret        string
	RefreshSecret string
	TokenTTL      time.Duration
	RefreshTTL    time.Duration
	CacheTTL      time.Duration
}

type cachedToken struct {
	identity  Identity
	expiresAt time.Time
}

// AuthService mints tokens and authenticates bearer requests. Verified
// tokens are cached in-process for CacheTTL, so a revocation made on another
// instance takes effect here within that window.
type AuthService struct {
	sessions SessionRegistry
	settings AuthSettings
	monitor  *monitoring.Monitor
	verified *store.Store[string, cachedToken]
	now      func() time.Time
}

func NewAuthService(sessions SessionRegistry, settings AuthSettings, monitor *monitoring.Monitor) *AuthService {
	return &AuthService{
		sessions: sessions,
		settings: settings,
		monitor:  monitor,
		verified: store.New[string, cachedToken](nil),
		now:      time.Now,
	}
}

func (s *AuthService) sign(admin *models.Admin, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		ID:    admin.ID,
		Email: admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   admin.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Login mints an access and refresh token for a verified admin and records
// the session they belong to.
func (s *AuthService) Login(ctx context.Context, admin *models.Admin, rc models.RequestContext) (*LoginResult, error) {
	token, err := s.sign(admin, s.settings.Secret, s.settings.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("authService.Login: sign: %w", err)
	}
	refresh, err := s.sign(admin, s.settings.RefreshSecret, s.settings.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("authService.Login: sign refresh: %w", err)
	}

	session, err := s.sessions.Create(ctx, admin.ID, admin.Email, token, rc)
	if err != nil {
		return nil, fmt.Errorf("authService.Login: %w", err)
	}
	session.IsCurrent = true

	return &LoginResult{Token: token, RefreshToken: refresh, Session: session}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate validates an Authorization header and the session it is bound to.
func (s *AuthService) Authenticate(ctx context.Context, header string) (*Identity, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, status.ErrUnauthorized
	}

	now := s.now()
	if entry, ok := s.verified.GetOk(token); ok {
		if now.Before(entry.expiresAt) {
			s.monitor.TrackSessionCheck("cache", "hit")
			identity := entry.identity
			return &identity, nil
		}
		s.verified.Remove(token)
	}

	claims, err := s.parse(token)
	if err != nil {
		s.monitor.TrackSessionCheck("registry", "bad_token")
		return nil, err
	}

	live, err := s.sessions.VerifyAndTouch(ctx, claims.ID, token)
	if err != nil {
		return nil, fmt.Errorf("authService.Authenticate: %w", err)
	}
	if !live {
		s.monitor.TrackSessionCheck("registry", "revoked")
		return nil, status.ErrSessionRevoked
	}
	s.monitor.TrackSessionCheck("registry", "ok")

	identity := Identity{UserID: claims.ID, Email: claims.Email, Token: token}
	s.remember(identity, claims, now)
	return &identity, nil
}

func (s *AuthService) parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.settings.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, status.ErrTokenExpired
		}
		return nil, status.ErrInvalidToken
	}
	if claims.ID == "" {
		return nil, status.ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) remember(identity Identity, claims *Claims, now time.Time) {
	expiresAt := now.Add(s.settings.CacheTTL)
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(expiresAt) {
		expiresAt = claims.ExpiresAt.Time
	}

	if s.verified.Length() >= maxCachedTokens {
		for token, entry := range s.verified.GetAll() {
			if !now.Before(entry.expiresAt) {
				s.verified.Remove(token)
			}
		}
	}
	if s.verified.Length() < maxCachedTokens {
		s.verified.Set(identity.Token, cachedToken{identity: identity, expiresAt: expiresAt})
	}
}

// forget evicts the cached tokens of userID for which drop returns true.
func (s *AuthService) forget(userID string, drop func(token string) bool) {
	for token, entry := range s.verified.GetAll() {
		if entry.identity.UserID == userID && drop(token) {
			s.verified.Remove(token)
		}
	}
}

func (s *AuthService) Sessions(ctx context.Context, identity *Identity) ([]*models.Session, error) {
	return s.sessions.List(ctx, identity.UserID, identity.Token)
}

// Logout revokes the caller's own session.
func (s *AuthService) Logout(ctx context.Context, identity *Identity) error {
	s.verified.Remove(identity.Token)
	if _, err := s.sessions.Revoke(ctx, identity.UserID, identity.Token); err != nil {
		return fmt.Errorf("authService.Logout: %w", err)
	}
	return nil
}

// RevokeSession removes one of the caller's sessions, identified either by
// its token or by its registry key.
func (s *AuthService) RevokeSession(ctx context.Context, identity *Identity, token, key string) (bool, error) {
	if key != "" {
		// the key does not reveal the token, so drop the user's cached tokens except the caller's
		s.forget(identity.UserID, func(t string) bool { return t != identity.Token })
		removed, err := s.sessions.RevokeKey(ctx, identity.UserID, key)
		if err != nil {
			return false, fmt.Errorf("authService.RevokeSession: %w", err)
		}
		return removed, nil
	}

	if token == "" {
		token = identity.Token
	}
	s.verified.Remove(token)
	removed, err := s.sessions.Revoke(ctx, identity.UserID, token)
	if err != nil {
		return false, fmt.Errorf("authService.RevokeSession: %w", err)
	}
	return removed, nil
}

func (s *AuthService) RevokeOthers(ctx context.Context, identity *Identity) (int, error) {
	s.forget(identity.UserID, func(t string) bool { return t != identity.Token })
	n, err := s.sessions.RevokeAllOthers(ctx, identity.UserID, identity.Token)
	if err != nil {
		return 0, fmt.Errorf("authService.RevokeOthers: %w", err)
	}
	return n, nil
}

func (s *AuthService) RevokeAll(ctx context.Context, userID string) (int, error) {
	s.forget(userID, func(string) bool { return true })
	n, err := s.sessions.RevokeAll(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("authService.RevokeAll: %w", err)
	}
	return n, nil
}
