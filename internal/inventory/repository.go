package inventory

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	// FindAllByIDs loads the stock fields of the products that exist; unknown ids are absent.
	FindAllByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	// SaveStock writes the new quantities and their movements in one transaction.
	SaveStock(ctx context.Context, products []model.Product, movements []model.StockMovement) error
}
