package domain

import "time"

// Product belongs to the catalog. Price is in minor currency units and is
// read by value during order creation; orders never hold a live reference
// to it. Category is populated when the read expands the relation.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Image        string    `json:"image,omitempty"`
	Brand        string    `json:"brand,omitempty"`
	Price        int64     `json:"price"`
	CategoryID   string    `json:"category_id"`
	Category     *Category `json:"category,omitempty"`
	CountInStock int       `json:"count_in_stock"`
	IsFeatured   bool      `json:"is_featured"`
	CreatedAt    time.Time `json:"created_at"`
}
