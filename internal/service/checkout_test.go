package service

import (
	"errors"
	"regexp"
	"testing"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/appdotbuilder/pc-part-shop/internal/models"
	"github.com/appdotbuilder/pc-part-shop/internal/mykafka"
	"github.com/appdotbuilder/pc-part-shop/internal/repo"
)

func TestCheckoutRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, checkoutRetryable(errors.New("constraint failed: UNIQUE constraint failed: orders.order_number (2067)")))
	assert.True(t, checkoutRetryable(gorm.ErrDuplicatedKey))
	assert.False(t, checkoutRetryable(errors.New("database is locked")))
	assert.False(t, checkoutRetryable(&pq.Error{Code: "40P01"}))
	assert.False(t, checkoutRetryable(&pq.Error{Code: "40001"}))
	assert.False(t, checkoutRetryable(ErrInsufficientStock))
}

func TestGenerateOrderNumber(t *testing.T) {
	re := regexp.MustCompile(`^ORD-[A-Z0-9]{8}$`)
	seen := map[string]bool{}
	for range 50 {
		n, err := GenerateOrderNumber()
		require.NoError(t, err)
		assert.Regexp(t, re, n)
		seen[n] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestPricingQuote(t *testing.T) {
	t.Parallel()
	cases := []struct {
		subtotal, tax, total string
	}{
		{"1000", "80", "1090"},
		{"0", "0", "10"},
		{"19.99", "1.60", "31.59"},
		{"123.45", "9.88", "143.33"},
	}
	for _, tc := range cases {
		q := DefaultPricing().Quote(decimal.RequireFromString(tc.subtotal))
		assertDec(t, tc.subtotal, q.Subtotal)
		assertDec(t, tc.tax, q.TaxAmount)
		assertDec(t, "10", q.ShippingAmount)
		assertDec(t, tc.total, q.TotalAmount)
	}
}

func TestPlaceOrder_Example(t *testing.T) {
	f := newFixture(t)
	cat := f.category("GPUs", "gpus")
	p := f.product(cat, "RTX 4070", "GPU-4070", "500.00", 10)
	u := f.user("Ada", "ada@example.com")
	c := userCaller(u)
	f.add(c, p.ID, 2)

	o, err := f.orders().PlaceOrder(f.ctx, c, checkoutRequest())
	require.NoError(t, err)

	assertDec(t, "1000", o.Subtotal)
	assertDec(t, "80", o.TaxAmount)
	assertDec(t, "10", o.ShippingAmount)
	assertDec(t, "1090", o.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.Regexp(t, `^ORD-[A-Z0-9]{8}$`, o.OrderNumber)
	assert.Equal(t, "ada@example.com", o.BillingAddress.Email)
	assert.Equal(t, "London", o.ShippingAddress.City)

	require.Len(t, o.Items, 1)
	assert.Equal(t, "RTX 4070", o.Items[0].ProductName)
	assert.Equal(t, "GPU-4070", o.Items[0].ProductSKU)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assertDec(t, "500", o.Items[0].UnitPrice)
	assertDec(t, "1000", o.Items[0].TotalPrice)

	assert.Equal(t, 8, f.stock(p.ID))
	assert.EqualValues(t, 1, f.orderCount())

	_, err = f.repo.FindCart(f.ctx, repo.CartOwner{UserID: c.UserID})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	evs := f.events.ofTopic(mykafka.TopicOrderEvents)
	require.Len(t, evs, 1)
	assert.Equal(t, o.OrderNumber, evs[0].key)
	assert.Equal(t, "order_created", evs[0].event.(orderEvent).Type)
}

func TestPlaceOrder_ItemCountMatchesCart(t *testing.T) {
	f := newFixture(t)
	cat := f.category("Parts", "parts")
	u := f.user("Ada", "ada@example.com")
	c := userCaller(u)
	for i, sku := range []string{"P-1", "P-2", "P-3"} {
		p := f.product(cat, sku, sku, "10", 5)
		f.add(c, p.ID, i+1)
	}
	unmanaged := f.product(cat, "Gift card", "GIFT", "25", 0, func(p *models.Product) { p.ManageStock = false })
	f.add(c, unmanaged.ID, 2)

	o, err := f.orders().PlaceOrder(f.ctx, c, checkoutRequest())
	require.NoError(t, err)
	assert.Len(t, o.Items, 4)
	assertDec(t, "110", o.Subtotal)
	assertDec(t, "8.80", o.TaxAmount)
	assertDec(t, "128.80", o.TotalAmount)
	assert.Equal(t, 0, f.stock(unmanaged.ID))
}

func TestPlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	f := newFixture(t)
	cat := f.category("CPUs", "cpus")
	plenty := f.product(cat, "Ryzen 5", "CPU-R5", "200", 10)
	scarce := f.product(cat, "Ryzen 9", "CPU-R9", "600", 1)
	u := f.user("Ada", "ada@example.com")
	c := userCaller(u)
	f.add(c, plenty.ID, 2)
	f.add(c, scarce.ID, 3)

	_, err := f.orders().PlaceOrder(f.ctx, c, checkoutRequest())
	rej, ok := AsRejection(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "Insufficient stock for Ryzen 9.", rej.Message)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	assert.EqualValues(t, 0, f.orderCount())
	assert.Equal(t, 10, f.stock(plenty.ID))
	assert.Equal(t, 1, f.stock(scarce.ID))

	cart, err := f.repo.FindCart(f.ctx, repo.CartOwner{UserID: c.UserID})
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
	assert.Empty(t, f.events.ofTopic(mykafka.TopicOrderEvents))
}

func TestPlaceOrder_UnguardedAllowsOversell(t *testing.T) {
	f := newFixture(t)
	cat := f.category("CPUs", "cpus")
	p := f.product(cat, "Ryzen 9", "CPU-R9", "600", 1)
	u := f.user("Ada", "ada@example.com")
	c := userCaller(u)
	f.add(c, p.ID, 3)

	svc := f.orders()
	svc.StockGuard = false
	_, err := svc.PlaceOrder(f.ctx, c, checkoutRequest())
	require.NoError(t, err)
	assert.Equal(t, -2, f.stock(p.ID))
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newFixture(t)
	u := f.user("Ada", "ada@example.com")
	c := userCaller(u)

	_, err := f.orders().PlaceOrder(f.ctx, c, checkoutRequest())
	rej, ok := AsRejection(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, MsgCartEmpty, rej.Message)
	assert.Equal(t, "/cart", rej.Redirect)

	_, err = f.carts().GetCart(f.ctx, c)
	require.NoError(t, err)
	_, err = f.orders().PlaceOrder(f.ctx, c, checkoutRequest())
	_, ok = AsRejection(err)
	assert.True(t, ok)
	assert.EqualValues(t, 0, f.orderCount())
}

func TestPlaceOrder_ValidatesAddresses(t *testing.T) {
	f := newFixture(t)
	cat := f.category("CPUs", "cpus")
	p := f.product(cat, "Ryzen 5", "CPU-R5", "200", 10)
	u := f.user("Ada", "ada@example.com")
	c := userCaller(u)
	f.add(c, p.ID, 1)

	req := checkoutRequest()
	req.BillingAddress.Email = "not-an-email"
	req.ShippingAddress.Zip = ""

	_, err := f.orders().PlaceOrder(f.ctx, c, req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "billing_address.email")
	assert.Contains(t, verr.Fields, "shipping_address.zip")
	assert.Equal(t, 10, f.stock(p.ID))
}

func TestPlaceOrder_RequiresUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders().PlaceOrder(f.ctx, guest("sess"), checkoutRequest())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPlaceOrder_RetriesOrderNumberCollision(t *testing.T) {
	f := newFixture(t)
	cat := f.category("CPUs", "cpus")
	p := f.product(cat, "Ryzen 5", "CPU-R5", "200", 10)
	other := f.user("Eve", "eve@example.com")
	require.NoError(t, f.repo.CreateOrder(f.ctx, &models.Order{
		OrderNumber: "ORD-TAKEN001", UserID: other.ID, Status: models.OrderStatusPending,
	}))

	u := f.user("Ada", "ada@example.com")
	c := userCaller(u)
	f.add(c, p.ID, 1)

	numbers := []string{"ORD-TAKEN001", "ORD-TAKEN001", "ORD-FRESH002"}
	calls := 0
	svc := f.orders()
	svc.NewOrderNumber = func() (string, error) {
		n := numbers[calls]
		calls++
		return n, nil
	}

	o, err := svc.PlaceOrder(f.ctx, c, checkoutRequest())
	require.NoError(t, err)
	assert.Equal(t, "ORD-FRESH002", o.OrderNumber)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 9, f.stock(p.ID))
	assert.EqualValues(t, 2, f.orderCount())
}

func TestPlaceOrder_GivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newFixture(t)
	cat := f.category("CPUs", "cpus")
	p := f.product(cat, "Ryzen 5", "CPU-R5", "200", 10)
	other := f.user("Eve", "eve@example.com")
	require.NoError(t, f.repo.CreateOrder(f.ctx, &models.Order{
		OrderNumber: "ORD-STUCK000", UserID: other.ID, Status: models.OrderStatusPending,
	}))
	u := f.user("Ada", "ada@example.com")
	c := userCaller(u)
	f.add(c, p.ID, 1)

	svc := f.orders()
	svc.NewOrderNumber = func() (string, error) { return "ORD-STUCK000", nil }

	_, err := svc.PlaceOrder(f.ctx, c, checkoutRequest())
	require.Error(t, err)
	_, isRejection := AsRejection(err)
	assert.False(t, isRejection)
	assert.Equal(t, 10, f.stock(p.ID))

	cart, err := f.repo.FindCart(f.ctx, repo.CartOwner{UserID: c.UserID})
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	cat := f.category("GPUs", "gpus")
	p := f.product(cat, "RTX", "GPU-1", "250", 10)
	u := f.user("Ada", "ada@example.com")
	c := userCaller(u)

	_, err := f.orders().Preview(f.ctx, c)
	_, ok := AsRejection(err)
	assert.True(t, ok)

	f.add(c, p.ID, 2)
	pv, err := f.orders().Preview(f.ctx, c)
	require.NoError(t, err)
	assertDec(t, "500", pv.Quote.Subtotal)
	assertDec(t, "40", pv.Quote.TaxAmount)
	assertDec(t, "550", pv.Quote.TotalAmount)
	assert.Len(t, pv.Cart.Items, 1)
}

func TestOrders_HistoryAndOwnership(t *testing.T) {
	f := newFixture(t)
	cat := f.category("GPUs", "gpus")
	p := f.product(cat, "RTX", "GPU-1", "250", 10)
	ada := f.user("Ada", "ada@example.com")
	eve := f.user("Eve", "eve@example.com")

	var placed []*models.Order
	for range 2 {
		f.add(userCaller(ada), p.ID, 1)
		o, err := f.orders().PlaceOrder(f.ctx, userCaller(ada), checkoutRequest())
		require.NoError(t, err)
		placed = append(placed, o)
	}

	page, err := f.orders().ListOrders(f.ctx, userCaller(ada), 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Meta.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, placed[1].ID, page.Data[0].ID)

	empty, err := f.orders().ListOrders(f.ctx, userCaller(eve), 1)
	require.NoError(t, err)
	assert.Empty(t, empty.Data)

	got, err := f.orders().GetOrder(f.ctx, userCaller(ada), placed[0].ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	_, err = f.orders().GetOrder(f.ctx, userCaller(eve), placed[0].ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.orders().GetOrder(f.ctx, userCaller(ada), 4242)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = f.orders().ListOrders(f.ctx, guest("s"), 1)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPlaceOrder_InvalidatesProductCache(t *testing.T) {
	f := newFixture(t)
	rc, mr := newRedisCache(t)
	cat := f.category("GPUs", "gpus")
	p := f.product(cat, "RTX", "GPU-1", "250", 10)
	u := f.user("Ada", "ada@example.com")
	c := userCaller(u)

	catalog := &CatalogService{Repo: f.repo, Cache: rc}
	_, err := catalog.GetProduct(f.ctx, p.Slug)
	require.NoError(t, err)
	_, err = catalog.Home(f.ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists("catalog:product:"+p.Slug))

	f.add(c, p.ID, 1)
	svc := f.orders()
	svc.Cache = rc
	_, err = svc.PlaceOrder(f.ctx, c, checkoutRequest())
	require.NoError(t, err)

	assert.False(t, mr.Exists("catalog:product:"+p.Slug))
	assert.False(t, mr.Exists("catalog:home"))

	d, err := catalog.GetProduct(f.ctx, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, 9, d.Product.StockQuantity)
}
