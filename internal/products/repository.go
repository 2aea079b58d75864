package products

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/shopcore/eshop/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const productColumns = `
	p.id, p.name, p.description, p.image, p.brand, p.price, p.category_id,
	p.count_in_stock, p.is_featured, p.created_at,
	c.id, c.name, c.icon, c.color
`

func scanProduct(scanner interface{ Scan(...any) error }) (*domain.Product, error) {
	p := &domain.Product{Category: &domain.Category{}}
	err := scanner.Scan(
		&p.ID, &p.Name, &p.Description, &p.Image, &p.Brand, &p.Price, &p.CategoryID,
		&p.CountInStock, &p.IsFeatured, &p.CreatedAt,
		&p.Category.ID, &p.Category.Name, &p.Category.Icon, &p.Category.Color,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns all products with their category expanded. A non-empty
// categoryIDs narrows the result to those categories.
func (r *Repository) List(ctx context.Context, categoryIDs []string) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
	`
	args := []any{}
	if len(categoryIDs) > 0 {
		query += ` WHERE p.category_id = ANY($1)`
		args = append(args, pq.Array(categoryIDs))
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

// Price resolves a product reference to its current unit price. Order
// creation copies the value into the order total; the product is not read
// again afterwards.
func (r *Repository) Price(ctx context.Context, id string) (int64, error) {
	var price int64

	err := r.db.QueryRowContext(ctx, `
		SELECT price
		FROM products
		WHERE id = $1
	`, id).Scan(&price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}

	return price, nil
}

func (r *Repository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.categoryExists(ctx, product.CategoryID); err != nil {
		return err
	}

	product.ID = uuid.New().String()
	product.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, image, brand, price, category_id,
			count_in_stock, is_featured, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, product.ID, product.Name, product.Description, product.Image, product.Brand,
		product.Price, product.CategoryID, product.CountInStock, product.IsFeatured,
		product.CreatedAt)

	return err
}

func (r *Repository) Update(ctx context.Context, product *domain.Product) error {
	if err := r.categoryExists(ctx, product.CategoryID); err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, image = $3, brand = $4, price = $5,
			category_id = $6, count_in_stock = $7, is_featured = $8
		WHERE id = $9
	`, product.Name, product.Description, product.Image, product.Brand, product.Price,
		product.CategoryID, product.CountInStock, product.IsFeatured, product.ID)
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

	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM products
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

	return nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

func (r *Repository) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.is_featured
		ORDER BY p.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *Repository) categoryExists(ctx context.Context, id string) error {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return err
	}

	if !exists {
		return &domain.ReferenceError{Entity: "category", ID: id}
	}

	return nil
}
