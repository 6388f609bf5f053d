package repository

import (
	"context"
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

func (r *PGRepository) FindAllByIDs(ctx context.Context, ids []string) ([]model.ProductOption, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, name, created_at, updated_at FROM product_options WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var options []model.ProductOption
	if err := r.DB.SelectContext(ctx, &options, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("find product options: %w", err)
	}
	return options, nil
}
