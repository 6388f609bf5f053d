package brand

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	// FindByID returns nil, nil when the brand does not exist.
	FindByID(ctx context.Context, id string) (*model.Brand, error)
}
