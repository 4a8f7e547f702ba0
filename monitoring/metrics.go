package monitoring

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login and OTP attempts by step and result",
		},
		[]string{"step", "result"},
	)

	sessionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_session_checks_total",
			Help: "Bearer token checks by path (cache, registry) and result",
		},
		[]string{"path", "result"},
	)

	loggedInAdmins = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auth_logged_in_admins",
			Help: "Admins with at least one session index in Redis",
		},
	)

	paymentOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_transactions_total",
			Help: "Payment ledger transitions by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	ticketsOversold = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_tickets_oversold_total",
			Help: "Tickets confirmed by the gateway after the tier ran out",
		},
	)

	ticketDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_deliveries_total",
			Help: "Ticket emails by result",
		},
		[]string{"result"},
	)

	gatewayLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_gateway_request_duration_seconds",
			Help:    "Duration of payment gateway calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 8),
		},
		[]string{"operation", "result"},
	)
)

type Monitor struct {
	redis    *redis.Client
	interval time.Duration
}

func NewMonitor(redisClient *redis.Client, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{redis: redisClient, interval: interval}
}

// Run collects Redis-backed gauges until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.collectSessionMetrics(ctx); err != nil {
				slog.Warn("monitor.collectSessionMetrics()", "error", err)
			}
		}
	}
}

func (m *Monitor) collectSessionMetrics(ctx context.Context) error {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := m.redis.Scan(ctx, cursor, "user_sessions:*", 200).Result()
		if err != nil {
			return err
		}
		total += len(keys)
		if next == 0 {
			break
		}
		cursor = next
	}
	loggedInAdmins.Set(float64(total))
	return nil
}

// The Track methods are safe on a nil *Monitor so services can run without metrics.

func (m *Monitor) TrackLogin(step, result string) {
	if m == nil {
		return
	}
	loginAttempts.WithLabelValues(step, result).Inc()
}

func (m *Monitor) TrackSessionCheck(path, result string) {
	if m == nil {
		return
	}
	sessionChecks.WithLabelValues(path, result).Inc()
}

func (m *Monitor) TrackPayment(operation, outcome string) {
	if m == nil {
		return
	}
	paymentOutcomes.WithLabelValues(operation, outcome).Inc()
}

func (m *Monitor) TrackOversold(n int) {
	if m == nil || n <= 0 {
		return
	}
	ticketsOversold.Add(float64(n))
}

func (m *Monitor) TrackDelivery(result string) {
	if m == nil {
		return
	}
	ticketDeliveries.WithLabelValues(result).Inc()
}

func (m *Monitor) TrackGatewayCall(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	gatewayLatency.WithLabelValues(operation, result).Observe(duration.Seconds())
}
