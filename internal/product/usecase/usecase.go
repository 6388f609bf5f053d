package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/brand"
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/media"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/option"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/util"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Cache is the subset of the Redis client used for product details.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Indexer is the subset of the Elasticsearch client used to mirror products.
type Indexer interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc any) error
	Delete(ctx context.Context, index, id string) error
}

// Deps groups the collaborators of the product use case. Cache and Search are optional.
type Deps struct {
	Repo       product.Repository
	Brands     brand.Repository
	Categories category.Repository
	Options    option.Repository
	Media      media.Client
	Cache      Cache
	CacheTTL   time.Duration
	Search     Indexer
	IndexName  string
	Logger     logger.ZapLogger
}

type productUseCase struct {
	repo       product.Repository
	brands     brand.Repository
	categories category.Repository
	options    option.Repository
	media      media.Client
	cache      Cache
	cacheTTL   time.Duration
	es         Indexer
	indexName  string
	logger     logger.ZapLogger
}

func NewProductUseCase(d Deps) product.UseCase {
	if d.IndexName == "" {
		d.IndexName = "products"
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = 5 * time.Minute
	}
	return &productUseCase{
		repo:       d.Repo,
		brands:     d.Brands,
		categories: d.Categories,
		options:    d.Options,
		media:      d.Media,
		cache:      d.Cache,
		cacheTTL:   d.CacheTTL,
		es:         d.Search,
		indexName:  d.IndexName,
		logger:     d.Logger,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	in := input.ProductInput
	if err := validateDimensions(in); err != nil {
		return nil, err
	}
	slug := slugFor(in.Slug, in.Name)
	if slug == "" {
		return nil, apperror.BadRequest("Product name is required")
	}

	if _, err := uc.resolveParent(ctx, in.ParentID, ""); err != nil {
		return nil, err
	}
	if in.ParentID != "" && carriesVariations(in) {
		return nil, apperror.BadRequest("A variation cannot have variations")
	}
	if err := uc.checkProductUnique(ctx, uc.repo, slug, in.SKU, in.GTIN); err != nil {
		return nil, err
	}
	if err := uc.resolveBrand(ctx, in.BrandID); err != nil {
		return nil, err
	}
	categoryIDs, err := uc.resolveCategories(ctx, in.CategoryIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &model.Product{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	applyInput(p, in, slug)
	p.HasOptions = len(in.Variations) > 0

	err = uc.repo.WithTx(ctx, func(repo product.Repository) error {
		if err := repo.Save(ctx, p); err != nil {
			return err
		}
		return uc.saveRelations(ctx, repo, p, in, categoryIDs)
	})
	if err != nil {
		return nil, err
	}

	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	in := input.ProductInput
	p, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("Product %s is not found", input.ID)
	}

	if err := validateDimensions(in); err != nil {
		return nil, err
	}
	slug := slugFor(in.Slug, in.Name)
	if slug == "" {
		return nil, apperror.BadRequest("Product name is required")
	}

	// A variant keeps its parent unless the request names another one.
	previousParent := deref(p.ParentID)
	if in.ParentID == "" {
		in.ParentID = previousParent
	}
	if _, err := uc.resolveParent(ctx, in.ParentID, p.ID); err != nil {
		return nil, err
	}
	if in.ParentID != "" && p.HasOptions {
		return nil, apperror.BadRequest("Product %s has variations and cannot become a variation", p.ID)
	}
	if in.ParentID != "" && carriesVariations(in) {
		return nil, apperror.BadRequest("A variation cannot have variations")
	}
	if err := uc.checkProductUnique(ctx, uc.repo, slug, in.SKU, in.GTIN, p.ID); err != nil {
		return nil, err
	}
	if err := uc.resolveBrand(ctx, in.BrandID); err != nil {
		return nil, err
	}
	categoryIDs, err := uc.resolveCategories(ctx, in.CategoryIDs)
	if err != nil {
		return nil, err
	}

	applyInput(p, in, slug)
	if len(in.Variations) > 0 {
		p.HasOptions = true
	}
	p.UpdatedAt = time.Now()
	moved := previousParent != "" && previousParent != in.ParentID

	err = uc.repo.WithTx(ctx, func(repo product.Repository) error {
		if err := repo.Save(ctx, p); err != nil {
			return err
		}
		if moved {
			// Its option picks belonged to the old parent.
			if err := repo.DeleteOptionCombinationsByProducts(ctx, []string{p.ID}); err != nil {
				return err
			}
		}
		return uc.saveRelations(ctx, repo, p, in, categoryIDs)
	})
	if err != nil {
		return nil, err
	}

	keys := []string{p.ID}
	if p.IsVariant() {
		keys = append(keys, *p.ParentID)
	}
	if moved {
		keys = append(keys, previousParent)
	}
	for _, v := range p.Variants {
		keys = append(keys, v.ID)
	}
	uc.invalidateProductCache(ctx, keys...)
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

// saveRelations writes everything hanging off a saved product, in dependency order.
func (uc *productUseCase) saveRelations(ctx context.Context, repo product.Repository, p *model.Product, in dto.ProductInput, categoryIDs []string) error {
	if err := repo.ReplaceCategories(ctx, p.ID, categoryIDs); err != nil {
		return err
	}
	if err := repo.ReplaceImages(ctx, p.ID, in.ImageMediaIDs); err != nil {
		return err
	}
	if carriesVariations(in) {
		variants, err := uc.reconcileVariations(ctx, repo, p, in.OptionValues, in.Variations)
		if err != nil {
			return err
		}
		p.Variants = variants
	}

	relatedIDs, err := uc.resolveRelated(ctx, repo, p.ID, in.RelatedProductIDs)
	if err != nil {
		return err
	}
	return repo.ReplaceRelated(ctx, p.ID, relatedIDs)
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return apperror.NotFound("Product %s is not found", id)
	}

	p.IsPublished = false
	p.UpdatedAt = time.Now()
	err = uc.repo.WithTx(ctx, func(repo product.Repository) error {
		if err := repo.Save(ctx, p); err != nil {
			return err
		}
		if p.IsVariant() {
			return repo.DeleteOptionCombinationsByProducts(ctx, []string{p.ID})
		}
		return nil
	})
	if err != nil {
		return err
	}

	keys := []string{p.ID}
	if p.IsVariant() {
		keys = append(keys, *p.ParentID)
	}
	uc.invalidateProductCache(ctx, keys...)
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), uc.indexName, id); err != nil {
				uc.logger.Error("failed to delete product from index", zap.String("product_id", id), zap.Error(err))
			}
		}()
	}
	return nil
}

func (uc *productUseCase) SetProductImages(ctx context.Context, id string, imageIDs []string) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return apperror.NotFound("Product %s is not found", id)
	}
	if err := uc.repo.ReplaceImages(ctx, id, imageIDs); err != nil {
		return err
	}
	uc.invalidateProductCache(ctx, id)
	return nil
}

func validateDimensions(in dto.ProductInput) error {
	if in.Length <= in.Width {
		return apperror.BadRequest("length must be greater than width")
	}
	return nil
}

func slugFor(slug, name string) string {
	if strings.TrimSpace(slug) != "" {
		return util.Slugify(slug)
	}
	return util.Slugify(name)
}

func carriesVariations(in dto.ProductInput) bool {
	return len(in.OptionValues) > 0 || len(in.Variations) > 0
}

func applyInput(p *model.Product, in dto.ProductInput, slug string) {
	p.Name = in.Name
	p.Slug = slug
	p.SKU = in.SKU
	p.GTIN = in.GTIN
	p.Price = in.Price
	p.ShortDescription = in.ShortDescription
	p.Description = in.Description
	p.Specification = in.Specification
	p.MetaTitle = in.MetaTitle
	p.MetaKeyword = in.MetaKeyword
	p.MetaDescription = in.MetaDescription
	p.Length = in.Length
	p.Width = in.Width
	p.Height = in.Height
	p.Weight = in.Weight
	p.DimensionUnit = model.DimensionUnit(in.DimensionUnit)
	if p.DimensionUnit == "" {
		p.DimensionUnit = model.DimensionUnitCM
	}
	p.IsPublished = in.IsPublished
	p.IsFeatured = in.IsFeatured
	p.IsAllowedToOrder = in.IsAllowedToOrder
	p.IsVisibleIndividually = in.IsVisibleIndividually
	p.StockTrackingEnabled = in.StockTrackingEnabled
	p.BrandID = optional(in.BrandID)
	p.ParentID = optional(in.ParentID)
	p.ThumbnailMediaID = optional(in.ThumbnailMediaID)
	p.TaxClassID = optional(in.TaxClassID)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// resolveParent loads the requested parent. A parent must exist, must not be the product itself
// and must not be a variant, which keeps the hierarchy one level deep and free of cycles.
func (uc *productUseCase) resolveParent(ctx context.Context, parentID, productID string) (*model.Product, error) {
	if parentID == "" {
		return nil, nil
	}
	if parentID == productID {
		return nil, apperror.BadRequest("Product %s cannot be its own parent", productID)
	}
	parent, err := uc.repo.FindByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, apperror.BadRequest("Parent product %s is not found", parentID)
	}
	if parent.IsVariant() {
		return nil, apperror.BadRequest("Parent product %s is itself a variation", parentID)
	}
	return parent, nil
}

func (uc *productUseCase) resolveBrand(ctx context.Context, brandID string) error {
	if brandID == "" {
		return nil
	}
	b, err := uc.brands.FindByID(ctx, brandID)
	if err != nil {
		return err
	}
	if b == nil {
		return apperror.NotFound("Brand %s is not found", brandID)
	}
	return nil
}

// resolveCategories returns the requested ids in request order without repeats. Every id must exist.
func (uc *productUseCase) resolveCategories(ctx context.Context, ids []string) ([]string, error) {
	ids = distinct(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := uc.categories.FindAllByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(found))
	for _, c := range found {
		known[c.ID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, apperror.BadRequest("Category %s is not found", strings.Join(missing, ", "))
	}
	return ids, nil
}

// resolveRelated drops ids that do not resolve and the product itself.
func (uc *productUseCase) resolveRelated(ctx context.Context, repo product.Repository, productID string, ids []string) ([]string, error) {
	ids = distinct(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := repo.FindAllByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(found))
	for _, p := range found {
		known[p.ID] = struct{}{}
	}
	related := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; ok && id != productID {
			related = append(related, id)
		}
	}
	return related, nil
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

const productIndexMapping = `{
	"mappings": {
		"properties": {
			"name": { "type": "text" },
			"slug": { "type": "keyword" },
			"sku": { "type": "keyword" },
			"gtin": { "type": "keyword" },
			"price": { "type": "scaled_float", "scaling_factor": 100 },
			"short_description": { "type": "text" },
			"description": { "type": "text" },
			"is_published": { "type": "boolean" },
			"is_visible_individually": { "type": "boolean" },
			"brand_id": { "type": "keyword" },
			"parent_id": { "type": "keyword" },
			"created_at": { "type": "date" }
		}
	}
}`

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}
	if err := uc.es.CreateIndex(ctx, uc.indexName, productIndexMapping); err != nil {
		uc.logger.Warn("failed to ensure product index", zap.Error(err))
	}

	docs := append([]model.Product{*p}, p.Variants...)
	for i := range docs {
		doc := docs[i]
		doc.Variants = nil
		if err := uc.es.Index(ctx, uc.indexName, doc.ID, doc); err != nil {
			uc.logger.Error("failed to index product", zap.String("product_id", doc.ID), zap.Error(err))
		}
	}
}

func (uc *productUseCase) invalidateProductCache(ctx context.Context, ids ...string) {
	if uc.cache == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = product.CacheKey(id)
	}
	if err := uc.cache.Delete(ctx, keys...); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.Strings("keys", keys), zap.Error(err))
	}
}
