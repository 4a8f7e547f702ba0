package services

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"event-ticketing/internal/services/bank"
	"event-ticketing/internal/status"
	"event-ticketing/models"

	"github.com/stretchr/testify/mock"
)

type memoryAdmins struct {
	mu     sync.Mutex
	byID   map[string]*models.Admin
	nextID int
	saves  int
}

func newMemoryAdmins() *memoryAdmins {
	return &memoryAdmins{byID: map[string]*models.Admin{}}
}

func (r *memoryAdmins) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memoryAdmins) FindByID(_ context.Context, id string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, nil
}

func (r *memoryAdmins) Create(_ context.Context, admin *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == admin.Email {
			return status.ErrDuplicateEmail
		}
	}
	r.nextID++
	admin.ID = fmt.Sprintf("admin-%d", r.nextID)
	clone := *admin
	r.byID[admin.ID] = &clone
	return nil
}

func (r *memoryAdmins) Save(_ context.Context, admin *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	clone := *admin
	r.byID[admin.ID] = &clone
	return nil
}

type MockOtpSender struct {
	mock.Mock
	codes []string
}

func (m *MockOtpSender) SendOtp(ctx context.Context, admin *models.Admin, code string) error {
	m.codes = append(m.codes, code)
	args := m.Called(ctx, admin.Email)
	return args.Error(0)
}

func (m *MockOtpSender) lastCode() string {
	if len(m.codes) == 0 {
		return ""
	}
	return m.codes[len(m.codes)-1]
}

func clone[T any](t *T) *T {
	data, err := json.Marshal(t)
	if err != nil {
		panic(err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return &out
}

// memoryStore is a Store whose transactions are serialized and rolled back on error.
type memoryStore struct {
	txMu   sync.Mutex
	mu     sync.Mutex
	events map[string]*models.Event
	txns   map[string]*models.Transaction
	nextID int
}

func newMemoryStore(events ...*models.Event) *memoryStore {
	s := &memoryStore{events: map[string]*models.Event{}, txns: map[string]*models.Transaction{}}
	for _, e := range events {
		s.events[e.ID] = clone(e)
	}
	return s
}

func (s *memoryStore) Events() EventRepository             { return memoryEvents{s} }
func (s *memoryStore) Transactions() TransactionRepository { return memoryTxns{s} }

func (s *memoryStore) RunInTransaction(_ context.Context, fn func(tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	events := maps.Clone(s.events)
	txns := maps.Clone(s.txns)
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.events, s.txns = events, txns
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memoryStore) event(id string) *models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.events[id])
}

func (s *memoryStore) txn(txnID string) *models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.txns {
		if t.TxnID == txnID {
			return clone(t)
		}
	}
	return nil
}

type memoryEvents struct{ s *memoryStore }

func (r memoryEvents) FindByID(_ context.Context, id string) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, status.ErrEventNotFound
	}
	return clone(e), nil
}

func (r memoryEvents) Save(_ context.Context, event *models.Event) error {
	if err := event.ValidateTiers(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.events[event.ID] = clone(event)
	return nil
}

func (r memoryEvents) CountPublished(context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, e := range r.s.events {
		if e.Status == models.EventStatusPublished {
			n++
		}
	}
	return n, nil
}

func (r memoryEvents) ListUpcoming(_ context.Context, after time.Time, limit int) ([]*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Event
	for _, e := range r.s.events {
		if e.Status == models.EventStatusPublished && e.StartDate.After(after) {
			out = append(out, clone(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memoryTxns struct{ s *memoryStore }

func (r memoryTxns) FindByTxnID(_ context.Context, txnID string) (*models.Transaction, error) {
	if t := r.s.txn(txnID); t != nil {
		return t, nil
	}
	return nil, status.ErrTransactionNotFound
}

func (r memoryTxns) Create(_ context.Context, txn *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	txn.ID = fmt.Sprintf("rec-%d", r.s.nextID)
	r.s.txns[txn.ID] = clone(txn)
	return nil
}

func (r memoryTxns) Save(_ context.Context, txn *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.txns[txn.ID] = clone(txn)
	return nil
}

func (r memoryTxns) ListCompletedBetween(_ context.Context, from, to time.Time) ([]*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Transaction
	for _, t := range r.s.txns {
		if t.Status == models.TransactionCompleted && !t.Created.Before(from) && t.Created.Before(to) {
			out = append(out, clone(t))
		}
	}
	return out, nil
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Provider() bank.Provider { return bank.ProviderSandbox }

func (m *MockGateway) Initialize(ctx context.Context, req *bank.InitializeRequest) (*bank.Checkout, error) {
	args := m.Called(ctx, req)
	checkout, _ := args.Get(0).(*bank.Checkout)
	return checkout, args.Error(1)
}

func (m *MockGateway) Verify(ctx context.Context, reference string) (*bank.Charge, error) {
	args := m.Called(ctx, reference)
	charge, _ := args.Get(0).(*bank.Charge)
	return charge, args.Error(1)
}

type recordedActivity struct {
	kind  models.ActivityType
	title string
}

type fakeActivities struct {
	mu      sync.Mutex
	entries []recordedActivity
}

func (f *fakeActivities) Record(_ context.Context, kind models.ActivityType, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, recordedActivity{kind: kind, title: title})
}

func (f *fakeActivities) kinds() []models.ActivityType {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ActivityType
	for _, e := range f.entries {
		out = append(out, e.kind)
	}
	return out
}

type fakeDeliverer struct {
	mu    sync.Mutex
	calls []*models.Transaction
}

func (f *fakeDeliverer) Deliver(_ context.Context, txn *models.Transaction, _ *models.Event, _ *models.TicketTier) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, txn)
	return len(txn.Buyers)
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.calls++
	return nil
}
