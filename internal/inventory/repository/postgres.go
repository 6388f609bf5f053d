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

func (r *PGRepository) FindAllByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query, args, err := sqlx.In(`
        SELECT id, name, parent_id, stock_tracking_enabled, stock_quantity, created_at, updated_at
        FROM products
        WHERE id IN (?)
    `, ids)
	if err != nil {
		return nil, err
	}

	// Rebind for Postgres ($1, $2...)
	query = r.DB.Rebind(query)

	var products []model.Product
	err = r.DB.SelectContext(ctx, &products, query, args...)
	return products, err
}

func (r *PGRepository) SaveStock(ctx context.Context, products []model.Product, movements []model.StockMovement) error {
	if len(products) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	updateQuery := `
        UPDATE products
        SET stock_quantity = :stock_quantity,
            updated_at = :updated_at
        WHERE id = :id
    `
	for i := range products {
		if _, err := tx.NamedExecContext(ctx, updateQuery, &products[i]); err != nil {
			return fmt.Errorf("failed to update stock of %s: %w", products[i].ID, err)
		}
	}

	if len(movements) > 0 {
		insertLogQuery := `
            INSERT INTO stock_movements (
                id, product_id, movement_type, quantity_change,
                quantity_before, quantity_after, reference_id, notes, created_at
            )
            VALUES (
                :id, :product_id, :movement_type, :quantity_change,
                :quantity_before, :quantity_after, :reference_id, :notes, :created_at
            )
        `
		if _, err := tx.NamedExecContext(ctx, insertLogQuery, movements); err != nil {
			return fmt.Errorf("failed to log stock movements: %w", err)
		}
	}

	return tx.Commit()
}
