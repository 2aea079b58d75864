package categories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/shopcore/eshop/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, icon, color
		FROM categories
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	c := &domain.Category{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, icon, color
		FROM categories
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Icon, &c.Color)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return c, nil
}

func (r *Repository) Create(ctx context.Context, category *domain.Category) error {
	category.ID = uuid.New().String()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, icon, color)
		VALUES ($1, $2, $3, $4)
	`, category.ID, category.Name, category.Icon, category.Color)

	return err
}

func (r *Repository) Update(ctx context.Context, category *domain.Category) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = $1, icon = $2, color = $3
		WHERE id = $4
	`, category.Name, category.Icon, category.Color, category.ID)
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
		DELETE FROM categories
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
