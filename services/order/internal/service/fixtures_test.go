package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	pkgdb "github.com/Skotchmaster/dealer_market/pkg/db"
	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
	"github.com/Skotchmaster/dealer_market/services/order/internal/repo"
	"github.com/Skotchmaster/dealer_market/services/order/internal/transport"
)

var seedBase = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	ctx := context.Background()
	db, err := pkgdb.Open(ctx, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)

	rp := &repo.GormRepo{DB: db}
	require.NoError(t, rp.Migrate(ctx))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return rp
}

type seeder struct {
	t   *testing.T
	rp  *repo.GormRepo
	seq int
}

func newSeeder(t *testing.T, rp *repo.GormRepo) *seeder {
	return &seeder{t: t, rp: rp}
}

// next returns strictly increasing creation times so catalog order is stable.
func (s *seeder) next() time.Time {
	s.seq++
	return seedBase.Add(time.Duration(s.seq) * time.Second)
}

func (s *seeder) account(role models.Role, name, pin string, active bool) models.Account {
	s.t.Helper()
	acc := models.Account{
		Name:         name,
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         role,
		PinCode:      pin,
		IsActive:     active,
		CreatedAt:    s.next(),
	}
	require.NoError(s.t, s.rp.DB.Create(&acc).Error)
	return acc
}

func (s *seeder) dealer(name, pin string) models.Account {
	return s.account(models.RoleDealer, name, pin, true)
}

func (s *seeder) customer() (models.Account, models.Address) {
	s.t.Helper()
	acc := s.account(models.RoleCustomer, "customer", "560001", true)
	addr := models.Address{
		CustomerID: acc.ID,
		Line1:      "12 MG Road",
		City:       "Bengaluru",
		PinCode:    "560001",
		IsDefault:  true,
		CreatedAt:  s.next(),
	}
	require.NoError(s.t, s.rp.DB.Create(&addr).Error)
	return acc, addr
}

type productOpt func(*models.Product)

func unapproved(p *models.Product) { p.IsApproved = false }
func inactive(p *models.Product)   { p.IsActive = false }

func (s *seeder) product(dealerID uuid.UUID, title, sku, price string, stock int64, opts ...productOpt) models.Product {
	s.t.Helper()
	p := models.Product{
		DealerID:      dealerID,
		Title:         title,
		SKU:           sku,
		DealerPrice:   decimal.Zero,
		CustomerPrice: decimal.RequireFromString(price),
		Commission:    decimal.Zero,
		Stock:         stock,
		IsApproved:    true,
		IsActive:      true,
		PinCode:       "560001",
		CreatedAt:     s.next(),
	}
	for _, o := range opts {
		o(&p)
	}
	require.NoError(s.t, s.rp.DB.Create(&p).Error)
	return p
}

func (s *seeder) stockOf(id uuid.UUID) int64 {
	s.t.Helper()
	p, err := s.rp.GetProduct(context.Background(), id)
	require.NoError(s.t, err)
	return p.Stock
}

func (s *seeder) orderCount() int64 {
	s.t.Helper()
	var n int64
	require.NoError(s.t, s.rp.DB.Model(&models.Order{}).Count(&n).Error)
	return n
}

// orderFor builds a request whose declared total matches the lines at the
// given unit price with no charges.
func orderFor(unitPrice string, items ...transport.CreateOrderItem) transport.CreateOrderRequest {
	total := decimal.Zero
	price := decimal.RequireFromString(unitPrice)
	for _, it := range items {
		total = total.Add(price.Mul(decimal.NewFromInt(it.Quantity)))
	}
	return transport.CreateOrderRequest{
		Items:         items,
		GrandTotal:    total,
		PaymentMethod: models.PaymentCOD,
	}
}

func line(p models.Product, qty int64) transport.CreateOrderItem {
	return transport.CreateOrderItem{ProductID: p.ID, Quantity: qty}
}

type recordedEvent struct {
	Topic string
	Key   string
	Event any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Topic: topic, Key: key, Event: event})
	return f.err
}

func (f *fakePublisher) orderEventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		if oe, ok := e.Event.(OrderEvent); ok {
			out = append(out, oe.Type)
		}
	}
	return out
}

type fakePusher struct {
	mu     sync.Mutex
	pushed []models.Notification
	err    error
}

func (f *fakePusher) Push(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, *n)
	return f.err
}

func (f *fakePusher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushed)
}

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[uuid.UUID]models.OrderStatus
	hits    []uuid.UUID
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: make(map[uuid.UUID]models.OrderStatus)}
}

func (f *fakeIndex) IndexOrder(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[o.ID] = o.Status
	return f.err
}

func (f *fakeIndex) SearchOrderIDs(_ context.Context, _ string, _ int) ([]uuid.UUID, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

var errBoom = errors.New("boom")

func actorOf(acc models.Account) Actor {
	return Actor{ID: acc.ID, Role: acc.Role}
}

func newOrderService(rp *repo.GormRepo) (*OrderService, *fakePublisher, *fakePusher) {
	pub := &fakePublisher{}
	push := &fakePusher{}
	notifier := &NotificationService{Repo: rp, Pusher: push}
	return &OrderService{
		Repo:       rp,
		Notifier:   notifier,
		Events:     pub,
		EventTopic: "order_events",
	}, pub, push
}
