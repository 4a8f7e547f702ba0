package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"event-ticketing/models"

	pubnub "github.com/pubnub/go/v7"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	Recent(ctx context.Context, limit int) ([]*models.Activity, error)
}

// Publisher pushes a message to a realtime channel.
type Publisher interface {
	Publish(channel string, message any) error
}

type PubNubPublisher struct {
	pn *pubnub.PubNub
}

// NewPubNubPublisher returns nil when no publish key is configured.
func NewPubNubPublisher(publishKey, subscribeKey, userID string) *PubNubPublisher {
	if publishKey == "" {
		return nil
	}
	cfg := pubnub.NewConfigWithUserId(pubnub.UserId(userID))
	cfg.PublishKey = publishKey
	cfg.SubscribeKey = subscribeKey
	return &PubNubPublisher{pn: pubnub.NewPubNub(cfg)}
}

func (p *PubNubPublisher) Publish(channel string, message any) error {
	if p == nil {
		return nil
	}
	_, st, err := p.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		return fmt.Errorf("pubnub publish (status %d): %w", st.StatusCode, err)
	}
	return nil
}

// ActivityService keeps the admin activity feed and mirrors each entry to a
// realtime channel for open dashboards.
type ActivityService struct {
	repo      ActivityRepository
	publisher Publisher
	channel   string
	now       func() time.Time
}

func NewActivityService(repo ActivityRepository, publisher Publisher, channel string) *ActivityService {
	return &ActivityService{repo: repo, publisher: publisher, channel: channel, now: time.Now}
}

func (s *ActivityService) Record(ctx context.Context, kind models.ActivityType, title string) {
	activity := &models.Activity{Title: title, Type: kind, Created: s.now().UTC()}
	if err := s.repo.Create(ctx, activity); err != nil {
		slog.Error("activityService.Record()", "type", kind, "error", err)
		return
	}

	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(s.channel, activity); err != nil {
		slog.Warn("activityService.Record() publish", "channel", s.channel, "error", err)
	}
}

func (s *ActivityService) Recent(ctx context.Context, limit int) ([]*models.Activity, error) {
	activities, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("activityService.Recent: %w", err)
	}
	return activities, nil
}
