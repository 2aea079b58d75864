package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/shopcore/eshop/internal/domain"
)

type fakeStore struct {
	created *domain.Order
	deleted []string
	failErr error
}

func (s *fakeStore) Create(_ context.Context, order *domain.Order) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.created = order
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type fakePrices map[string]int64

func (p fakePrices) Price(_ context.Context, productID string) (int64, error) {
	price, ok := p[productID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return price, nil
}

type fakeUsers map[string]bool

func (u fakeUsers) Exists(_ context.Context, userID string) (bool, error) {
	return u[userID], nil
}

func newTestService(store *fakeStore, prices fakePrices) *Service {
	return NewService(store, prices, fakeUsers{"user-1": true})
}

func TestService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("computes total as sum of price times quantity", func(t *testing.T) {
		store := &fakeStore{}
		svc := newTestService(store, fakePrices{"prod-a": 1000, "prod-b": 250})

		order, err := svc.CreateOrder(ctx, CreateOrderRequest{
			UserID: "user-1",
			Items: []ItemRequest{
				{ProductID: "prod-a", Quantity: 2},
				{ProductID: "prod-b", Quantity: 3},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if order.Total != 2750 {
			t.Errorf("expected total 2750, got %d", order.Total)
		}
		if order.Status != domain.OrderStatusPending {
			t.Errorf("expected status pending, got %s", order.Status)
		}
		if store.created == nil {
			t.Fatal("expected order to be persisted")
		}
	})

	t.Run("total is independent of submission order", func(t *testing.T) {
		prices := fakePrices{"prod-a": 199, "prod-b": 1050, "prod-c": 37}
		forward := []ItemRequest{
			{ProductID: "prod-a", Quantity: 1},
			{ProductID: "prod-b", Quantity: 4},
			{ProductID: "prod-c", Quantity: 9},
		}
		reversed := []ItemRequest{forward[2], forward[1], forward[0]}

		first, err := newTestService(&fakeStore{}, prices).CreateOrder(ctx, CreateOrderRequest{UserID: "user-1", Items: forward})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := newTestService(&fakeStore{}, prices).CreateOrder(ctx, CreateOrderRequest{UserID: "user-1", Items: reversed})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if first.Total != second.Total {
			t.Errorf("totals differ across submission orders: %d vs %d", first.Total, second.Total)
		}
	})

	t.Run("preserves submission order of items", func(t *testing.T) {
		store := &fakeStore{}
		svc := newTestService(store, fakePrices{"prod-a": 1, "prod-b": 2, "prod-c": 3})

		order, err := svc.CreateOrder(ctx, CreateOrderRequest{
			UserID: "user-1",
			Items: []ItemRequest{
				{ProductID: "prod-c", Quantity: 1},
				{ProductID: "prod-a", Quantity: 1},
				{ProductID: "prod-b", Quantity: 1},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"prod-c", "prod-a", "prod-b"}
		for i, item := range order.Items {
			if item.ProductID != want[i] {
				t.Errorf("item %d: expected %s, got %s", i, want[i], item.ProductID)
			}
			if item.ID == "" {
				t.Errorf("item %d: expected generated id", i)
			}
		}
	})

	t.Run("unresolvable product fails with ReferenceError and persists nothing", func(t *testing.T) {
		store := &fakeStore{}
		svc := newTestService(store, fakePrices{"prod-a": 1000})

		_, err := svc.CreateOrder(ctx, CreateOrderRequest{
			UserID: "user-1",
			Items: []ItemRequest{
				{ProductID: "prod-a", Quantity: 1},
				{ProductID: "prod-missing", Quantity: 1},
			},
		})

		var refErr *domain.ReferenceError
		if !errors.As(err, &refErr) {
			t.Fatalf("expected ReferenceError, got %v", err)
		}
		if refErr.Entity != "product" || refErr.ID != "prod-missing" {
			t.Errorf("unexpected reference: %s %s", refErr.Entity, refErr.ID)
		}
		if store.created != nil {
			t.Error("expected nothing to be persisted")
		}
	})

	t.Run("unknown user fails with ReferenceError", func(t *testing.T) {
		svc := newTestService(&fakeStore{}, fakePrices{"prod-a": 1000})

		_, err := svc.CreateOrder(ctx, CreateOrderRequest{
			UserID: "user-unknown",
			Items:  []ItemRequest{{ProductID: "prod-a", Quantity: 1}},
		})

		var refErr *domain.ReferenceError
		if !errors.As(err, &refErr) {
			t.Fatalf("expected ReferenceError, got %v", err)
		}
		if refErr.Entity != "user" {
			t.Errorf("expected user reference, got %s", refErr.Entity)
		}
	})

	t.Run("rejects empty item list", func(t *testing.T) {
		svc := newTestService(&fakeStore{}, fakePrices{})

		_, err := svc.CreateOrder(ctx, CreateOrderRequest{UserID: "user-1"})

		var validationErr *domain.ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		svc := newTestService(&fakeStore{}, fakePrices{"prod-a": 1000})

		for _, quantity := range []int{0, -2} {
			_, err := svc.CreateOrder(ctx, CreateOrderRequest{
				UserID: "user-1",
				Items:  []ItemRequest{{ProductID: "prod-a", Quantity: quantity}},
			})

			var validationErr *domain.ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("quantity %d: expected ValidationError, got %v", quantity, err)
			}
		}
	})

	t.Run("wraps persistence failure in CreationError", func(t *testing.T) {
		store := &fakeStore{failErr: errors.New("connection reset")}
		svc := newTestService(store, fakePrices{"prod-a": 1000})

		_, err := svc.CreateOrder(ctx, CreateOrderRequest{
			UserID: "user-1",
			Items:  []ItemRequest{{ProductID: "prod-a", Quantity: 1}},
		})

		var creationErr *domain.CreationError
		if !errors.As(err, &creationErr) {
			t.Fatalf("expected CreationError, got %v", err)
		}
		if !errors.Is(err, store.failErr) {
			t.Error("expected wrapped cause to be preserved")
		}
	})
}

func TestService_DeleteOrder(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, fakePrices{})

	if err := svc.DeleteOrder(context.Background(), "order-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.deleted) != 1 || store.deleted[0] != "order-1" {
		t.Errorf("expected delete of order-1, got %v", store.deleted)
	}
}
