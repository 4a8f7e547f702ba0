package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"event-ticketing/models"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	dashboardCacheKey = "dashboard:stats"
	upcomingLimit     = 5
	recentLimit       = 10
)

type ActivityFeed interface {
	Recent(ctx context.Context, limit int) ([]*models.Activity, error)
}

// MonthlyStat compares the current calendar month with the previous one.
type MonthlyStat struct {
	CurrentMonth     decimal.Decimal `json:"currentMonth"`
	LastMonth        decimal.Decimal `json:"lastMonth"`
	PercentageChange float64         `json:"percentageChange"`
	Trend            string          `json:"trend"` // up, down, stable
	Currency         string          `json:"currency,omitempty"`
}

type Dashboard struct {
	TicketSale       MonthlyStat        `json:"ticketSale"`
	Revenue          MonthlyStat        `json:"revenue"`
	AvgTicketPrice   MonthlyStat        `json:"avgTicketPrice"`
	ActiveEvents     int                `json:"activeEvents"`
	UpcomingEvents   []*models.Event    `json:"upcomingEvents"`
	RecentActivities []*models.Activity `json:"recentActivities"`
	GeneratedAt      time.Time          `json:"generatedAt"`
}

type DashboardService struct {
	Redis *redis.Client

	store    Store
	feed     ActivityFeed
	ttl      time.Duration
	currency string
	now      func() time.Time
}

func NewDashboardService(redisClient *redis.Client, store Store, feed ActivityFeed, ttl time.Duration, currency string) *DashboardService {
	return &DashboardService{
		Redis:    redisClient,
		store:    store,
		feed:     feed,
		ttl:      ttl,
		currency: currency,
		now:      time.Now,
	}
}

// Stats returns the cached dashboard, computing it on a miss.
func (s *DashboardService) Stats(ctx context.Context) (*Dashboard, error) {
	cached, err := s.Redis.Get(ctx, dashboardCacheKey).Result()
	switch {
	case err == nil:
		var d Dashboard
		if err := json.Unmarshal([]byte(cached), &d); err == nil {
			return &d, nil
		}
		slog.Warn("dashboardService.Stats: corrupt cache entry, recomputing")
	case !errors.Is(err, redis.Nil):
		slog.Warn("dashboardService.Stats: cache read", "error", err)
	}

	d, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("dashboardService.Stats: json.Marshal: %w", err)
	}
	if err := s.Redis.Set(ctx, dashboardCacheKey, string(data), s.ttl).Err(); err != nil {
		slog.Warn("dashboardService.Stats: cache write", "error", err)
	}
	return d, nil
}

func (s *DashboardService) Invalidate(ctx context.Context) error {
	return s.Redis.Del(ctx, dashboardCacheKey).Err()
}

func (s *DashboardService) compute(ctx context.Context) (*Dashboard, error) {
	now := s.now().UTC()
	currentStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastStart := currentStart.AddDate(0, -1, 0)

	txns, err := s.store.Transactions().ListCompletedBetween(ctx, lastStart, now.Add(time.Second))
	if err != nil {
		return nil, fmt.Errorf("dashboardService.compute: transactions: %w", err)
	}

	var tickets, revenue [2]decimal.Decimal
	for _, txn := range txns {
		i := 0
		if txn.Created.Before(currentStart) {
			i = 1
		}
		tickets[i] = tickets[i].Add(decimal.NewFromInt(int64(len(txn.Buyers))))
		revenue[i] = revenue[i].Add(txn.Amount)
	}

	var avg [2]decimal.Decimal
	for i := range avg {
		if tickets[i].IsPositive() {
			avg[i] = revenue[i].DivRound(tickets[i], 2)
		}
	}

	active, err := s.store.Events().CountPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboardService.compute: active events: %w", err)
	}

	upcoming, err := s.store.Events().ListUpcoming(ctx, now, upcomingLimit)
	if err != nil {
		return nil, fmt.Errorf("dashboardService.compute: upcoming events: %w", err)
	}

	recent, err := s.feed.Recent(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("dashboardService.compute: %w", err)
	}

	return &Dashboard{
		TicketSale:       monthlyStat(tickets[0], tickets[1], ""),
		Revenue:          monthlyStat(revenue[0], revenue[1], s.currency),
		AvgTicketPrice:   monthlyStat(avg[0], avg[1], s.currency),
		ActiveEvents:     active,
		UpcomingEvents:   upcoming,
		RecentActivities: recent,
		GeneratedAt:      now,
	}, nil
}

func monthlyStat(current, last decimal.Decimal, currency string) MonthlyStat {
	var change decimal.Decimal
	switch {
	case last.IsPositive():
		change = current.Sub(last).Div(last).Mul(decimal.NewFromInt(100)).Round(2)
	case current.IsPositive():
		change = decimal.NewFromInt(100)
	}

	trend := "stable"
	if change.IsPositive() {
		trend = "up"
	} else if change.IsNegative() {
		trend = "down"
	}

	return MonthlyStat{
		CurrentMonth:     current.Round(2),
		LastMonth:        last.Round(2),
		PercentageChange: change.InexactFloat64(),
		Trend:            trend,
		Currency:         currency,
	}
}
