//go:build integration

package test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopcore/eshop/internal/categories"
	"github.com/shopcore/eshop/internal/domain"
	"github.com/shopcore/eshop/internal/messaging"
	"github.com/shopcore/eshop/internal/orders"
	"github.com/shopcore/eshop/internal/products"
	"github.com/shopcore/eshop/internal/users"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	orderRepo   *orders.Repository
	productRepo *products.Repository
	userRepo    *users.Repository
	svc         *orders.Service
	user        *domain.User
	cheap       *domain.Product
	pricey      *domain.Product
}

func setupFixture(ctx context.Context, t *testing.T, connStr string) *fixture {
	t.Helper()

	db := OpenDB(t, connStr)

	categoryRepo := categories.NewRepository(db)
	productRepo := products.NewRepository(db)
	userRepo := users.NewRepository(db)
	orderRepo := orders.NewRepository(db)

	category := &domain.Category{Name: "Gadgets"}
	if err := categoryRepo.Create(ctx, category); err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	cheap := &domain.Product{Name: "Cable", Price: 499, CategoryID: category.ID}
	pricey := &domain.Product{Name: "Headphones", Price: 12999, CategoryID: category.ID}
	for _, p := range []*domain.Product{cheap, pricey} {
		if err := productRepo.Create(ctx, p); err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	user := &domain.User{Name: "Ada", Email: "ada@example.com", PasswordHash: string(hash)}
	if err := userRepo.Create(ctx, user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	return &fixture{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		svc:         orders.NewService(orderRepo, productRepo, userRepo),
		user:        user,
		cheap:       cheap,
		pricey:      pricey,
	}
}

func TestOrderAggregateLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	f := setupFixture(ctx, t, pg.ConnStr)

	count, err := f.orderRepo.Count(ctx)
	if err != nil {
		t.Fatalf("count on empty collection: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected count 0, got %d", count)
	}

	total, err := f.orderRepo.TotalSales(ctx)
	if err != nil {
		t.Fatalf("total sales on empty collection: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected total sales 0, got %d", total)
	}

	order, err := f.svc.CreateOrder(ctx, orders.CreateOrderRequest{
		UserID: f.user.ID,
		Items: []orders.ItemRequest{
			{ProductID: f.pricey.ID, Quantity: 1},
			{ProductID: f.cheap.ID, Quantity: 3},
		},
		ShippingAddress1: "1 Infinite Loop",
		City:             "Cupertino",
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	wantTotal := f.pricey.Price + 3*f.cheap.Price
	if order.Total != wantTotal {
		t.Errorf("expected total %d, got %d", wantTotal, order.Total)
	}

	fetched, err := f.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to fetch order: %v", err)
	}
	if fetched.UserName != f.user.Name {
		t.Errorf("expected user name %q, got %q", f.user.Name, fetched.UserName)
	}
	if len(fetched.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(fetched.Items))
	}
	if fetched.Items[0].ProductID != f.pricey.ID {
		t.Error("expected items in submission order")
	}
	if fetched.Items[0].Product == nil || fetched.Items[0].Product.Category == nil {
		t.Fatal("expected item product and category expanded")
	}
	if fetched.Items[0].Product.Category.Name != "Gadgets" {
		t.Errorf("unexpected category: %+v", fetched.Items[0].Product.Category)
	}

	// A later price change must not alter the persisted total.
	f.pricey.Price = 1
	if err := f.productRepo.Update(ctx, f.pricey); err != nil {
		t.Fatalf("failed to update product price: %v", err)
	}
	fetched, err = f.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to refetch order: %v", err)
	}
	if fetched.Total != wantTotal {
		t.Errorf("total changed after price update: %d", fetched.Total)
	}

	total, err = f.orderRepo.TotalSales(ctx)
	if err != nil {
		t.Fatalf("total sales: %v", err)
	}
	if total != wantTotal {
		t.Errorf("expected total sales %d, got %d", wantTotal, total)
	}

	if err := f.svc.DeleteOrder(ctx, order.ID); err != nil {
		t.Fatalf("failed to delete order: %v", err)
	}

	remaining, err := f.orderRepo.CountItemsForOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to count remaining items: %v", err)
	}
	if remaining != 0 {
		t.Errorf("expected 0 line items after teardown, got %d", remaining)
	}

	if err := f.svc.DeleteOrder(ctx, order.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on repeat delete, got %v", err)
	}
}

func TestOrderCreationWithUnknownProduct(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	f := setupFixture(ctx, t, pg.ConnStr)

	_, err := f.svc.CreateOrder(ctx, orders.CreateOrderRequest{
		UserID: f.user.ID,
		Items: []orders.ItemRequest{
			{ProductID: f.cheap.ID, Quantity: 1},
			{ProductID: "11111111-2222-3333-4444-555555555555", Quantity: 1},
		},
	})

	var refErr *domain.ReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected ReferenceError, got %v", err)
	}

	count, err := f.orderRepo.Count(ctx)
	if err != nil {
		t.Fatalf("failed to count orders: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no persisted order header, got %d", count)
	}
}

func TestPerUserOrderListing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	f := setupFixture(ctx, t, pg.ConnStr)

	other := &domain.User{Name: "Grace", Email: "grace@example.com", PasswordHash: "x"}
	if err := f.userRepo.Create(ctx, other); err != nil {
		t.Fatalf("failed to seed second user: %v", err)
	}

	for _, userID := range []string{f.user.ID, other.ID, f.user.ID} {
		_, err := f.svc.CreateOrder(ctx, orders.CreateOrderRequest{
			UserID: userID,
			Items:  []orders.ItemRequest{{ProductID: f.cheap.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("failed to create order: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	list, err := f.orderRepo.ListByUser(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("failed to list user orders: %v", err)
	}

	if len(list) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(list))
	}
	for _, o := range list {
		if o.UserID != f.user.ID {
			t.Errorf("foreign order in listing: %s", o.ID)
		}
	}
	if list[0].CreatedAt.Before(list[1].CreatedAt) {
		t.Error("expected newest-first ordering")
	}
}

func TestOrderCreatedEventRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	brokers, cleanup := SetupKafka(ctx, t)
	defer cleanup()

	producer := messaging.NewProducer(brokers, "order.created")
	defer func() { _ = producer.Close() }()

	event := domain.OrderCreatedEvent{
		OrderID:   "order-1",
		UserID:    "user-1",
		Items:     []domain.OrderItem{{ID: "item-1", ProductID: "prod-1", Quantity: 2}},
		Total:     998,
		Timestamp: time.Now().UTC(),
	}
	if err := producer.Publish(ctx, event.OrderID, event); err != nil {
		t.Fatalf("failed to publish event: %v", err)
	}

	consumer := messaging.NewConsumer(brokers, "order.created", "integration-test", messaging.WithStartOffset(-2))
	defer func() { _ = consumer.Close() }()

	received := make(chan domain.OrderCreatedEvent, 1)
	consumeCtx, stop := context.WithCancel(ctx)
	defer stop()

	go func() {
		_ = consumer.Consume(consumeCtx, func(_ context.Context, payload []byte) error {
			var got domain.OrderCreatedEvent
			if err := json.Unmarshal(payload, &got); err != nil {
				return err
			}
			received <- got
			return nil
		})
	}()

	select {
	case got := <-received:
		if got.OrderID != event.OrderID || got.Total != event.Total {
			t.Errorf("unexpected event: %+v", got)
		}
	case <-time.After(60 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
