package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	query := `SELECT id, parent_id, name, slug, description, image_url, sort_order, is_active, created_at, updated_at
        FROM categories WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &category, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find category %s: %w", id, err)
	}
	return &category, nil
}

// FindAllByIDs returns the categories that exist; unknown ids are simply absent.
func (r *PGRepository) FindAllByIDs(ctx context.Context, ids []string) ([]model.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, parent_id, name, slug, description, image_url, sort_order, is_active, created_at, updated_at
        FROM categories WHERE id IN (?) ORDER BY sort_order ASC, name ASC`, ids)
	if err != nil {
		return nil, err
	}
	var categories []model.Category
	if err := r.DB.SelectContext(ctx, &categories, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	return categories, nil
}
