package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"event-ticketing/models"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFeed []*models.Activity

func (f staticFeed) Recent(context.Context, int) ([]*models.Activity, error) {
	return f, nil
}

func setupTestDashboardService() (*DashboardService, redismock.ClientMock, *memoryStore) {
	db, redisMock := redismock.NewClientMock()
	store := newMemoryStore(testEvent(5))

	feed := staticFeed{{ID: "act-1", Title: "Ada logged in", Type: models.ActivityUserLogin}}
	service := NewDashboardService(db, store, feed, time.Minute, "NGN")
	service.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return service, redisMock, store
}

func completedTxn(id string, created time.Time, buyers int, amount int64) *models.Transaction {
	return &models.Transaction{
		ID:      id,
		TxnID:   "TXN-" + id,
		Status:  models.TransactionCompleted,
		Buyers:  make([]models.Buyer, buyers),
		Amount:  decimal.NewFromInt(amount),
		Created: created,
	}
}

func TestDashboardService_ComputesOnMiss(t *testing.T) {
	service, redisMock, store := setupTestDashboardService()
	defer redisMock.ClearExpect()

	store.txns["a"] = completedTxn("a", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), 3, 15000)
	store.txns["b"] = completedTxn("b", time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), 2, 10000)
	store.txns["c"] = completedTxn("c", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 9, 90000)

	redisMock.ExpectGet("dashboard:stats").RedisNil()
	redisMock.Regexp().ExpectSet("dashboard:stats", `.*"ticketSale".*`, time.Minute).SetVal("OK")

	d, err := service.Stats(context.Background())
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(3).Equal(d.TicketSale.CurrentMonth))
	assert.True(t, decimal.NewFromInt(2).Equal(d.TicketSale.LastMonth))
	assert.Equal(t, 50.0, d.TicketSale.PercentageChange)
	assert.Equal(t, "up", d.TicketSale.Trend)

	assert.True(t, decimal.NewFromInt(15000).Equal(d.Revenue.CurrentMonth))
	assert.Equal(t, "NGN", d.Revenue.Currency)
	assert.True(t, decimal.NewFromInt(5000).Equal(d.AvgTicketPrice.CurrentMonth))
	assert.Equal(t, "stable", d.AvgTicketPrice.Trend)

	assert.Equal(t, 1, d.ActiveEvents)
	assert.Len(t, d.UpcomingEvents, 1)
	assert.Len(t, d.RecentActivities, 1)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestDashboardService_ServesCache(t *testing.T) {
	service, redisMock, _ := setupTestDashboardService()

	cached, err := json.Marshal(&Dashboard{ActiveEvents: 42})
	require.NoError(t, err)
	redisMock.ExpectGet("dashboard:stats").SetVal(string(cached))

	d, err := service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, d.ActiveEvents)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestDashboardService_CacheErrorsDoNotFail(t *testing.T) {
	service, redisMock, _ := setupTestDashboardService()

	redisMock.ExpectGet("dashboard:stats").SetErr(errors.New("redis down"))
	redisMock.Regexp().ExpectSet("dashboard:stats", `.*`, time.Minute).SetErr(errors.New("redis down"))

	d, err := service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, d.ActiveEvents)
}

func TestDashboardService_Invalidate(t *testing.T) {
	service, redisMock, _ := setupTestDashboardService()

	redisMock.ExpectDel("dashboard:stats").SetVal(1)

	assert.NoError(t, service.Invalidate(context.Background()))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestMonthlyStat(t *testing.T) {
	tests := []struct {
		name     string
		current  int64
		last     int64
		change   float64
		expected string
	}{
		{"growth", 150, 100, 50, "up"},
		{"decline", 25, 100, -75, "down"},
		{"first sales", 10, 0, 100, "up"},
		{"nothing", 0, 0, 0, "stable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stat := monthlyStat(decimal.NewFromInt(tt.current), decimal.NewFromInt(tt.last), "")
			assert.Equal(t, tt.change, stat.PercentageChange)
			assert.Equal(t, tt.expected, stat.Trend)
		})
	}
}
