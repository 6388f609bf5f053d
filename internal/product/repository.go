package product

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	// WithTx runs fn against a repository bound to one transaction. An error from fn rolls it back.
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	// Finders return nil, nil when nothing matches.
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindAllByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	FindPublishedBySlug(ctx context.Context, slug string) (*model.Product, error)
	FindPublishedBySKU(ctx context.Context, sku string) (*model.Product, error)
	FindPublishedByGTIN(ctx context.Context, gtin string) (*model.Product, error)
	FindAllByParent(ctx context.Context, parentID string) ([]model.Product, error)

	// Save inserts or updates the product by id.
	Save(ctx context.Context, product *model.Product) error
	// SaveAll returns one saved row per input; the order is not guaranteed.
	SaveAll(ctx context.Context, products []model.Product) ([]model.Product, error)

	DeleteOptionValuesByProduct(ctx context.Context, productID string) error
	SaveOptionValues(ctx context.Context, values []model.ProductOptionValue) ([]model.ProductOptionValue, error)
	FindOptionValuesByProduct(ctx context.Context, productID string) ([]model.ProductOptionValue, error)

	DeleteOptionCombinationsByProducts(ctx context.Context, productIDs []string) error
	SaveOptionCombinations(ctx context.Context, combinations []model.ProductOptionCombination) error
	FindOptionCombinationsByProducts(ctx context.Context, productIDs []string) ([]model.ProductOptionCombination, error)

	ReplaceImages(ctx context.Context, productID string, imageIDs []string) error
	FindImagesByProduct(ctx context.Context, productID string) ([]model.ProductImage, error)

	ReplaceCategories(ctx context.Context, productID string, categoryIDs []string) error
	FindCategoriesByProduct(ctx context.Context, productID string) ([]model.ProductCategory, error)

	ReplaceRelated(ctx context.Context, productID string, relatedIDs []string) error
	FindRelatedByProduct(ctx context.Context, productID string) ([]model.ProductRelated, error)
}
