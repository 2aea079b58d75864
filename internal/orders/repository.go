package orders

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/shopcore/eshop/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create persists the order header and all of its line items in one
// transaction. Either the whole aggregate commits or nothing does; there
// is no state in which line items exist without their header. The position
// column records submission order.
func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, status, total, shipping_address1,
			shipping_address2, city, zip, country, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, order.ID, order.UserID, order.Status, order.Total, order.ShippingAddress1,
		order.ShippingAddress2, order.City, order.Zip, order.Country, order.Phone,
		order.CreatedAt)
	if err != nil {
		return err
	}

	for i, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, position)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, order.ID, item.ProductID, item.Quantity, i)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes the order's line items and then its header, again in one
// transaction. A missing order reports domain.ErrNotFound; after success no
// line item references the order id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM order_items
		WHERE order_id = $1
	`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM orders
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit()
}

const headerColumns = `
	o.id, o.user_id, u.name, o.status, o.total, o.shipping_address1,
	o.shipping_address2, o.city, o.zip, o.country, o.phone, o.created_at
`

func scanHeader(scanner interface{ Scan(...any) error }) (*domain.Order, error) {
	o := &domain.Order{}
	err := scanner.Scan(
		&o.ID, &o.UserID, &o.UserName, &o.Status, &o.Total, &o.ShippingAddress1,
		&o.ShippingAddress2, &o.City, &o.Zip, &o.Country, &o.Phone, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// List returns every order header, newest first, with the user name
// expanded. Line items are not loaded here.
func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+headerColumns+`
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanHeader(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// GetByID returns the full aggregate: header, line items in submission
// order, each item's product and the product's category.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+headerColumns+`
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`, id)

	order, err := scanHeader(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	items, err := r.loadItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	if order.Items == nil {
		order.Items = []domain.OrderItem{}
	}

	return order, nil
}

// ListByUser returns the given user's aggregates, newest first, expanded
// like GetByID. An unknown user simply yields an empty list.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+headerColumns+`
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		o, err := scanHeader(rows)
		if err != nil {
			return nil, err
		}
		o.Items = []domain.OrderItem{}
		orderMap[o.ID] = o
		orderIDs = append(orderIDs, o.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	items, err := r.loadItems(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	for orderID, orderItems := range items {
		orderMap[orderID].Items = orderItems
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}

func (r *Repository) loadItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.order_id, i.id, i.product_id, i.quantity,
			p.id, p.name, p.description, p.image, p.brand, p.price, p.category_id,
			p.count_in_stock, p.is_featured, p.created_at,
			c.id, c.name, c.icon, c.color
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		JOIN categories c ON c.id = p.category_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.order_id, i.position
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := make(map[string][]domain.OrderItem)
	for rows.Next() {
		var orderID string
		item := domain.OrderItem{Product: &domain.Product{Category: &domain.Category{}}}
		p := item.Product
		err := rows.Scan(
			&orderID, &item.ID, &item.ProductID, &item.Quantity,
			&p.ID, &p.Name, &p.Description, &p.Image, &p.Brand, &p.Price, &p.CategoryID,
			&p.CountInStock, &p.IsFeatured, &p.CreatedAt,
			&p.Category.ID, &p.Category.Name, &p.Category.Icon, &p.Category.Color,
		)
		if err != nil {
			return nil, err
		}
		items[orderID] = append(items[orderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1
		WHERE id = $2
	`, status, id)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, domain.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// TotalSales sums order totals across the whole collection. An empty
// collection is a real answer of zero, never an error.
func (r *Repository) TotalSales(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total), 0) FROM orders
	`).Scan(&total)
	return total, err
}

// Count reports the number of orders; zero is a valid result.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count)
	return count, err
}

// CountItemsForOrder reports how many line items still reference an order.
func (r *Repository) CountItemsForOrder(ctx context.Context, orderID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM order_items WHERE order_id = $1
	`, orderID).Scan(&count)
	return count, err
}
