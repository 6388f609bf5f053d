package usecase

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func seedProduct(f *fixture, id, slug string, parentID *string) model.Product {
	thumb := "thumb-1"
	brandID := "brand-1"
	p := model.Product{
		BaseModel:        model.BaseModel{ID: id},
		Name:             slug,
		Slug:             slug,
		Price:            decimal.NewFromInt(10),
		IsPublished:      true,
		BrandID:          &brandID,
		ParentID:         parentID,
		ThumbnailMediaID: &thumb,
	}
	f.repo.put(p)
	return p
}

func TestGetProduct(t *testing.T) {
	f := newFixture()
	seedProduct(f, "p-1", "mug", nil)
	f.repo.categories["p-1"] = []string{"cat-1"}
	f.repo.images["p-1"] = []string{"img-1"}
	f.repo.related["p-1"] = []string{"p-2"}

	detail, err := f.uc.GetProduct(context.Background(), "p-1")
	require.NoError(t, err)
	require.Equal(t, "mug", detail.Slug)
	require.Equal(t, "brand-1", detail.BrandID)
	require.Equal(t, []string{"cat-1"}, detail.CategoryIDs)
	require.Equal(t, []string{"p-2"}, detail.RelatedIDs)
	require.Equal(t, "http://cdn/thumb-1.jpg", detail.Thumbnail.URL)
	require.Len(t, detail.Images, 1)
	require.Equal(t, "http://cdn/img-1.jpg", detail.Images[0].URL)

	require.Contains(t, f.cache.data, product.CacheKey("p-1"))
	calls := f.repo.findByIDCalls

	cached, err := f.uc.GetProduct(context.Background(), "p-1")
	require.NoError(t, err)
	require.Equal(t, calls, f.repo.findByIDCalls)
	require.Equal(t, detail.Slug, cached.Slug)
	require.True(t, detail.Price.Equal(cached.Price))
}

func TestGetProductNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.uc.GetProduct(context.Background(), "nope")
	requireKind(t, err, apperror.KindNotFound)
	require.Equal(t, "Product nope is not found", err.(*apperror.Error).Message)
}

func TestGetProductVariationsWithoutOptions(t *testing.T) {
	f := newFixture()
	parent := seedProduct(f, "p-1", "mug", nil)
	seedProduct(f, "v-1", "mug-red", &parent.ID)

	variations, err := f.uc.GetProductVariations(context.Background(), parent.ID)
	require.NoError(t, err)
	require.Empty(t, variations)

	_, err = f.uc.GetProductVariations(context.Background(), "nope")
	requireKind(t, err, apperror.KindNotFound)
}

func TestGetProductSlug(t *testing.T) {
	f := newFixture()
	parent := seedProduct(f, "p-1", "t-shirt", nil)
	seedProduct(f, "v-1", "t-shirt-red", &parent.ID)

	slug, err := f.uc.GetProductSlug(context.Background(), "p-1")
	require.NoError(t, err)
	require.Equal(t, "t-shirt", slug.Slug)
	require.Empty(t, slug.ProductVariantID)

	slug, err = f.uc.GetProductSlug(context.Background(), "v-1")
	require.NoError(t, err)
	require.Equal(t, "t-shirt", slug.Slug)
	require.Equal(t, "v-1", slug.ProductVariantID)

	_, err = f.uc.GetProductSlug(context.Background(), "nope")
	requireKind(t, err, apperror.KindNotFound)
}
