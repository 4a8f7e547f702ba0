package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"event-ticketing/models"
	"event-ticketing/utils"

	"github.com/redis/go-redis/v9"
)

const (
	sessionPrefix      = "session:"
	userSessionsPrefix = "user_sessions:"
)

// SessionService is the registry of logged-in devices. Each session is its
// own Redis string with a TTL; user_sessions:{id} indexes them and is pruned
// lazily when a member no longer resolves.
type SessionService struct {
	Redis *redis.Client

	geo    GeoLocator
	ttl    time.Duration
	now    func() time.Time
	suffix func() (string, error)
}

func NewSessionService(redisClient *redis.Client, geo GeoLocator, ttl time.Duration) *SessionService {
	if geo == nil {
		geo = &GeoIPLocator{}
	}
	return &SessionService{
		Redis:  redisClient,
		geo:    geo,
		ttl:    ttl,
		now:    time.Now,
		suffix: func() (string, error) { return utils.GenerateCode(4) },
	}
}

// sessionKey is session:{userId}:{unixMillis}:{suffix}. The suffix keeps two
// logins within the same millisecond apart.
func sessionKey(userID string, at time.Time, suffix string) string {
	return fmt.Sprintf("%s%s:%d:%s", sessionPrefix, userID, at.UnixMilli(), suffix)
}

func userSessionsKey(userID string) string {
	return userSessionsPrefix + userID
}

// Create records a new session for token and returns it.
func (s *SessionService) Create(ctx context.Context, userID, email, token string, rc models.RequestContext) (*models.Session, error) {
	now := s.now().UTC()
	session := &models.Session{
		UserID:     userID,
		Email:      email,
		DeviceInfo: ParseDevice(rc.UserAgent),
		Location:   s.geo.Locate(rc.IPAddress),
		IPAddress:  rc.IPAddress,
		LoginTime:  now,
		LastActive: now,
		Token:      token,
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("sessionService.Create: json.Marshal: %w", err)
	}

	suffix, err := s.suffix()
	if err != nil {
		return nil, fmt.Errorf("sessionService.Create: key suffix: %w", err)
	}
	key := sessionKey(userID, now, suffix)
	indexKey := userSessionsKey(userID)

	if _, err := s.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, string(data), s.ttl)
		pipe.SAdd(ctx, indexKey, key)
		pipe.Expire(ctx, indexKey, s.ttl)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("sessionService.Create: %w", err)
	}

	session.Key = key
	return session, nil
}

// List returns the user's live sessions, most recently active first.
func (s *SessionService) List(ctx context.Context, userID, currentToken string) ([]*models.Session, error) {
	sessions, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, session := range sessions {
		session.IsCurrent = currentToken != "" && session.Token == currentToken
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastActive.After(sessions[j].LastActive)
	})
	return sessions, nil
}

// VerifyAndTouch reports whether token belongs to a live session of userID,
// refreshing its last-active time and TTL when it does.
func (s *SessionService) VerifyAndTouch(ctx context.Context, userID, token string) (bool, error) {
	sessions, err := s.load(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, session := range sessions {
		if session.Token != token {
			continue
		}

		session.LastActive = s.now().UTC()
		data, err := json.Marshal(session)
		if err != nil {
			return false, fmt.Errorf("sessionService.VerifyAndTouch: json.Marshal: %w", err)
		}

		// XX keeps a concurrently revoked session from being written back
		ok, err := s.Redis.SetXX(ctx, session.Key, string(data), s.ttl).Result()
		if err != nil {
			return false, fmt.Errorf("sessionService.VerifyAndTouch: %w", err)
		}
		if !ok {
			return false, nil
		}

		if err := s.Redis.Expire(ctx, userSessionsKey(userID), s.ttl).Err(); err != nil {
			slog.Warn("sessionService.VerifyAndTouch: refresh index ttl", "userId", userID, "error", err)
		}
		return true, nil
	}

	return false, nil
}

// Revoke removes the session bound to token.
func (s *SessionService) Revoke(ctx context.Context, userID, token string) (bool, error) {
	n, err := s.revokeWhere(ctx, userID, func(session *models.Session) bool {
		return session.Token == token
	})
	return n > 0, err
}

// RevokeKey removes one session by its registry key.
func (s *SessionService) RevokeKey(ctx context.Context, userID, key string) (bool, error) {
	n, err := s.revokeWhere(ctx, userID, func(session *models.Session) bool {
		return session.Key == key
	})
	return n > 0, err
}

// RevokeAllOthers removes every session except the one bound to currentToken.
func (s *SessionService) RevokeAllOthers(ctx context.Context, userID, currentToken string) (int, error) {
	return s.revokeWhere(ctx, userID, func(session *models.Session) bool {
		return session.Token != currentToken
	})
}

// RevokeAll removes every session of userID together with the index.
func (s *SessionService) RevokeAll(ctx context.Context, userID string) (int, error) {
	indexKey := userSessionsKey(userID)

	keys, err := s.Redis.SMembers(ctx, indexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("sessionService.RevokeAll: %w", err)
	}

	if err := s.Redis.Del(ctx, append(keys, indexKey)...).Err(); err != nil {
		return 0, fmt.Errorf("sessionService.RevokeAll: %w", err)
	}
	return len(keys), nil
}

func (s *SessionService) revokeWhere(ctx context.Context, userID string, match func(*models.Session) bool) (int, error) {
	sessions, err := s.load(ctx, userID)
	if err != nil {
		return 0, err
	}

	var keys []string
	for _, session := range sessions {
		if match(session) {
			keys = append(keys, session.Key)
		}
	}
	if len(keys) == 0 {
		return 0, nil
	}

	members := make([]any, len(keys))
	for i, key := range keys {
		members[i] = key
	}

	if _, err := s.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.SRem(ctx, userSessionsKey(userID), members...)
		return nil
	}); err != nil {
		return 0, fmt.Errorf("sessionService.revoke: %w", err)
	}
	return len(keys), nil
}

// load fetches every indexed session and prunes index members whose record
// has expired or cannot be decoded.
func (s *SessionService) load(ctx context.Context, userID string) ([]*models.Session, error) {
	indexKey := userSessionsKey(userID)

	keys, err := s.Redis.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("sessionService.load: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.Redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("sessionService.load: %w", err)
	}

	sessions := make([]*models.Session, 0, len(keys))
	var stale []any
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			stale = append(stale, keys[i])
			continue
		}

		var session models.Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			slog.Warn("sessionService.load: corrupt session", "key", keys[i], "error", err)
			stale = append(stale, keys[i])
			continue
		}
		session.Key = keys[i]
		sessions = append(sessions, &session)
	}

	if len(stale) > 0 {
		if err := s.Redis.SRem(ctx, indexKey, stale...).Err(); err != nil {
			slog.Warn("sessionService.load: prune index", "userId", userID, "error", err)
		}
	}
	return sessions, nil
}
