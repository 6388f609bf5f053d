package category

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// Repository is read-only here; categories are maintained elsewhere and only linked to products.
type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindAllByIDs(ctx context.Context, ids []string) ([]model.Category, error)
}
