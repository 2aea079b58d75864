package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the client-settable statuses.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is one product-and-quantity entry within an order. Items exist
// only as part of their order: created with it, removed with it, never
// mutated in between. Product is populated on detail reads, nil elsewhere.
type OrderItem struct {
	ID        string   `json:"id"`
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

// Order is the aggregate header. Total is in minor currency units, computed
// once at creation from the unit prices in effect at that moment; later
// price changes on products never touch it. Items keep submission order.
type Order struct {
	ID               string      `json:"id"`
	UserID           string      `json:"user_id"`
	UserName         string      `json:"user_name,omitempty"`
	Items            []OrderItem `json:"items"`
	Total            int64       `json:"total"`
	Status           OrderStatus `json:"status"`
	ShippingAddress1 string      `json:"shipping_address1"`
	ShippingAddress2 string      `json:"shipping_address2,omitempty"`
	City             string      `json:"city,omitempty"`
	Zip              string      `json:"zip,omitempty"`
	Country          string      `json:"country,omitempty"`
	Phone            string      `json:"phone,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}
