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

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Brand, error) {
	var brand model.Brand
	query := `SELECT id, name, slug, is_published, created_at, updated_at FROM brands WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &brand, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find brand %s: %w", id, err)
	}
	return &brand, nil
}
