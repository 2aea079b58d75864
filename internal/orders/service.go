package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shopcore/eshop/internal/domain"
)

// Store is the slice of the order repository the aggregate workflow writes
// through.
type Store interface {
	Create(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, id string) error
}

// PriceLookup resolves a product reference to its current unit price.
// domain.ErrNotFound marks an unresolvable product.
type PriceLookup interface {
	Price(ctx context.Context, productID string) (int64, error)
}

// UserLookup reports whether a referenced user exists.
type UserLookup interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// Service builds and tears down order aggregates. Creation runs in two
// phases: a concurrent fan-out resolving every unit price, joined before
// any arithmetic, then a single transactional write of items and header.
// Nothing is persisted until every reference has resolved.
type Service struct {
	store  Store
	prices PriceLookup
	users  UserLookup
}

func NewService(store Store, prices PriceLookup, users UserLookup) *Service {
	return &Service{store: store, prices: prices, users: users}
}

type ItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	UserID           string        `json:"user_id"`
	Items            []ItemRequest `json:"items"`
	ShippingAddress1 string        `json:"shipping_address1"`
	ShippingAddress2 string        `json:"shipping_address2"`
	City             string        `json:"city"`
	Zip              string        `json:"zip"`
	Country          string        `json:"country"`
	Phone            string        `json:"phone"`
}

func (req *CreateOrderRequest) validate() error {
	if req.UserID == "" {
		return &domain.ValidationError{Msg: "user reference is required"}
	}
	if len(req.Items) == 0 {
		return &domain.ValidationError{Msg: "order must contain at least one item"}
	}
	for _, item := range req.Items {
		if item.ProductID == "" {
			return &domain.ValidationError{Msg: "item product reference is required"}
		}
		if item.Quantity <= 0 {
			return &domain.ValidationError{Msg: "item quantity must be a positive integer"}
		}
	}
	return nil
}

func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	exists, err := s.users.Exists(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &domain.ReferenceError{Entity: "user", ID: req.UserID}
	}

	// Phase one: resolve every unit price concurrently and join. Prices are
	// collected by submission index so the total is order-independent, and
	// nothing is charged until all items have resolved.
	prices := make([]int64, len(req.Items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range req.Items {
		g.Go(func() error {
			price, err := s.prices.Price(gctx, item.ProductID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return &domain.ReferenceError{Entity: "product", ID: item.ProductID}
				}
				return err
			}
			prices[i] = price
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Phase two: compute the total from the collected prices.
	var total int64
	for i, item := range req.Items {
		total += prices[i] * int64(item.Quantity)
	}

	items := make([]domain.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.OrderItem{
			ID:        uuid.New().String(),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	order := &domain.Order{
		ID:               uuid.New().String(),
		UserID:           req.UserID,
		Items:            items,
		Total:            total,
		Status:           domain.OrderStatusPending,
		ShippingAddress1: req.ShippingAddress1,
		ShippingAddress2: req.ShippingAddress2,
		City:             req.City,
		Zip:              req.Zip,
		Country:          req.Country,
		Phone:            req.Phone,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.store.Create(ctx, order); err != nil {
		return nil, &domain.CreationError{Err: err}
	}

	return order, nil
}

// DeleteOrder removes the aggregate. The store guarantees items and header
// go together; a repeat delete reports domain.ErrNotFound like any other
// missing order.
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
