package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appdotbuilder/pc-part-shop/internal/cache"
	"github.com/appdotbuilder/pc-part-shop/internal/db/dbtest"
	"github.com/appdotbuilder/pc-part-shop/internal/models"
	"github.com/appdotbuilder/pc-part-shop/internal/repo"
	"github.com/appdotbuilder/pc-part-shop/internal/transport"
)

type published struct {
	topic string
	key   string
	event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic: topic, key: key, event: event})
	return nil
}

func (p *recordingPublisher) ofTopic(topic string) []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []published
	for _, e := range p.events {
		if e.topic == topic {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	repo   *repo.GormRepo
	events *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		t:      t,
		ctx:    context.Background(),
		repo:   repo.New(dbtest.New(t)),
		events: &recordingPublisher{},
	}
}

func (f *fixture) category(name, slug string) *models.Category {
	f.t.Helper()
	c := &models.Category{Name: name, Slug: slug, IsActive: true}
	require.NoError(f.t, f.repo.CreateCategory(f.ctx, c))
	return c
}

func (f *fixture) product(cat *models.Category, name, sku, price string, stock int, mutate ...func(*models.Product)) *models.Product {
	f.t.Helper()
	p := &models.Product{
		Name:          name,
		Slug:          sku,
		SKU:           sku,
		Brand:         "Acme",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		ManageStock:   true,
		IsActive:      true,
		CategoryID:    cat.ID,
	}
	for _, m := range mutate {
		m(p)
	}
	require.NoError(f.t, f.repo.CreateProduct(f.ctx, p))
	return p
}

func (f *fixture) user(name, email string) *models.User {
	f.t.Helper()
	u := &models.User{Name: name, Email: email, PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(f.t, f.repo.CreateUser(f.ctx, u))
	return u
}

func (f *fixture) stock(id uint) int {
	f.t.Helper()
	p, err := f.repo.GetProduct(f.ctx, id)
	require.NoError(f.t, err)
	return p.StockQuantity
}

func (f *fixture) orderCount() int64 {
	f.t.Helper()
	n, err := f.repo.CountOrders(f.ctx)
	require.NoError(f.t, err)
	return n
}

func (f *fixture) carts() *CartService {
	return &CartService{Repo: f.repo, Events: f.events}
}

func (f *fixture) orders() *OrderService {
	return &OrderService{
		Repo:         f.repo,
		Events:       f.events,
		Pricing:      DefaultPricing(),
		StockGuard:   true,
		RetryBackoff: time.Millisecond,
	}
}

func (f *fixture) add(c Caller, productID uint, qty int) *CartView {
	f.t.Helper()
	v, err := f.carts().AddItem(f.ctx, c, transport.AddToCartRequest{ProductID: productID, Quantity: qty})
	require.NoError(f.t, err)
	return v
}

func userCaller(u *models.User) Caller {
	id := u.ID
	return Caller{UserID: &id, Role: u.Role}
}

func guest(session string) Caller { return Caller{SessionID: session} }

func newRedisCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.New(cache.NewClient(mr.Addr(), "", 0), time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func checkoutRequest() transport.CheckoutRequest {
	return transport.CheckoutRequest{
		BillingAddress: transport.BillingAddress{
			Name: "Ada Lovelace", Email: "ada@example.com", Phone: "555-0100",
			Address: "1 Analytical Way", City: "London", State: "LDN", Zip: "10001",
		},
		ShippingAddress: transport.ShippingAddress{
			Name: "Ada Lovelace", Address: "1 Analytical Way", City: "London", State: "LDN", Zip: "10001",
		},
	}
}
