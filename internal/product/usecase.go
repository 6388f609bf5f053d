package product

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	SetProductImages(ctx context.Context, id string, imageIDs []string) error

	GetProduct(ctx context.Context, id string) (*dto.ProductDetail, error)
	GetProductVariations(ctx context.Context, parentID string) ([]dto.ProductVariation, error)
	GetProductSlug(ctx context.Context, id string) (*dto.ProductSlug, error)
}

// CacheKey is the Redis key holding the cached detail of a product.
func CacheKey(id string) string {
	return "catalog:product:" + id
}
