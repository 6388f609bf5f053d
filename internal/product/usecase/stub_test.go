package usecase

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/media"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
)

type memState struct {
	products     map[string]model.Product
	optionValues map[string][]model.ProductOptionValue
	combinations map[string][]model.ProductOptionCombination
	images       map[string][]string
	categories   map[string][]string
	related      map[string][]string
}

func (s memState) clone() memState {
	c := memState{
		products:     make(map[string]model.Product, len(s.products)),
		optionValues: make(map[string][]model.ProductOptionValue, len(s.optionValues)),
		combinations: make(map[string][]model.ProductOptionCombination, len(s.combinations)),
		images:       make(map[string][]string, len(s.images)),
		categories:   make(map[string][]string, len(s.categories)),
		related:      make(map[string][]string, len(s.related)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.optionValues {
		c.optionValues[k] = append([]model.ProductOptionValue(nil), v...)
	}
	for k, v := range s.combinations {
		c.combinations[k] = append([]model.ProductOptionCombination(nil), v...)
	}
	for k, v := range s.images {
		c.images[k] = append([]string(nil), v...)
	}
	for k, v := range s.categories {
		c.categories[k] = append([]string(nil), v...)
	}
	for k, v := range s.related {
		c.related[k] = append([]string(nil), v...)
	}
	return c
}

// stubProductRepository keeps everything in maps. WithTx restores the previous state on error.
type stubProductRepository struct {
	memState
	findByIDCalls int

	// saveAllResult rewrites what SaveAll reports back, after the rows are stored.
	saveAllResult    func(saved []model.Product) []model.Product
	dropOptionValues bool
}

func newStubProductRepository() *stubProductRepository {
	return &stubProductRepository{memState: memState{}.clone()}
}

func (r *stubProductRepository) WithTx(ctx context.Context, fn func(repo product.Repository) error) error {
	snapshot := r.memState.clone()
	if err := fn(r); err != nil {
		r.memState = snapshot
		return err
	}
	return nil
}

func (r *stubProductRepository) put(p model.Product) {
	p.Variants = nil
	p.Categories = nil
	p.Images = nil
	p.Related = nil
	p.OptionValues = nil
	p.Combinations = nil
	r.products[p.ID] = p
}

func (r *stubProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	r.findByIDCalls++
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *stubProductRepository) FindAllByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubProductRepository) findPublished(match func(model.Product) bool) *model.Product {
	for _, p := range r.products {
		if p.IsPublished && match(p) {
			return &p
		}
	}
	return nil
}

func (r *stubProductRepository) FindPublishedBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return r.findPublished(func(p model.Product) bool { return p.Slug == slug }), nil
}

func (r *stubProductRepository) FindPublishedBySKU(ctx context.Context, sku string) (*model.Product, error) {
	return r.findPublished(func(p model.Product) bool { return p.SKU == sku }), nil
}

func (r *stubProductRepository) FindPublishedByGTIN(ctx context.Context, gtin string) (*model.Product, error) {
	return r.findPublished(func(p model.Product) bool { return p.GTIN == gtin }), nil
}

func (r *stubProductRepository) FindAllByParent(ctx context.Context, parentID string) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.ParentID != nil && *p.ParentID == parentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (r *stubProductRepository) Save(ctx context.Context, p *model.Product) error {
	r.put(*p)
	return nil
}

func (r *stubProductRepository) SaveAll(ctx context.Context, products []model.Product) ([]model.Product, error) {
	saved := make([]model.Product, 0, len(products))
	for _, p := range products {
		r.put(p)
		saved = append(saved, p)
	}
	// Report the rows back in reverse to make sure callers match by slug.
	for i, j := 0, len(saved)-1; i < j; i, j = i+1, j-1 {
		saved[i], saved[j] = saved[j], saved[i]
	}
	if r.saveAllResult != nil {
		return r.saveAllResult(saved), nil
	}
	return saved, nil
}

func (r *stubProductRepository) DeleteOptionValuesByProduct(ctx context.Context, productID string) error {
	delete(r.optionValues, productID)
	return nil
}

func (r *stubProductRepository) SaveOptionValues(ctx context.Context, values []model.ProductOptionValue) ([]model.ProductOptionValue, error) {
	if r.dropOptionValues {
		return nil, nil
	}
	for _, v := range values {
		r.optionValues[v.ProductID] = append(r.optionValues[v.ProductID], v)
	}
	return values, nil
}

func (r *stubProductRepository) FindOptionValuesByProduct(ctx context.Context, productID string) ([]model.ProductOptionValue, error) {
	return r.optionValues[productID], nil
}

func (r *stubProductRepository) DeleteOptionCombinationsByProducts(ctx context.Context, productIDs []string) error {
	for _, id := range productIDs {
		delete(r.combinations, id)
	}
	return nil
}

func (r *stubProductRepository) SaveOptionCombinations(ctx context.Context, combinations []model.ProductOptionCombination) error {
	for _, c := range combinations {
		r.combinations[c.ProductID] = append(r.combinations[c.ProductID], c)
	}
	return nil
}

func (r *stubProductRepository) FindOptionCombinationsByProducts(ctx context.Context, productIDs []string) ([]model.ProductOptionCombination, error) {
	var out []model.ProductOptionCombination
	for _, id := range productIDs {
		out = append(out, r.combinations[id]...)
	}
	return out, nil
}

func (r *stubProductRepository) ReplaceImages(ctx context.Context, productID string, imageIDs []string) error {
	r.images[productID] = append([]string(nil), imageIDs...)
	return nil
}

func (r *stubProductRepository) FindImagesByProduct(ctx context.Context, productID string) ([]model.ProductImage, error) {
	var out []model.ProductImage
	for i, id := range r.images[productID] {
		out = append(out, model.ProductImage{ProductID: productID, ImageID: id, DisplayOrder: i})
	}
	return out, nil
}

func (r *stubProductRepository) ReplaceCategories(ctx context.Context, productID string, categoryIDs []string) error {
	r.categories[productID] = append([]string(nil), categoryIDs...)
	return nil
}

func (r *stubProductRepository) FindCategoriesByProduct(ctx context.Context, productID string) ([]model.ProductCategory, error) {
	var out []model.ProductCategory
	for i, id := range r.categories[productID] {
		out = append(out, model.ProductCategory{ProductID: productID, CategoryID: id, DisplayOrder: i})
	}
	return out, nil
}

func (r *stubProductRepository) ReplaceRelated(ctx context.Context, productID string, relatedIDs []string) error {
	r.related[productID] = append([]string(nil), relatedIDs...)
	return nil
}

func (r *stubProductRepository) FindRelatedByProduct(ctx context.Context, productID string) ([]model.ProductRelated, error) {
	var out []model.ProductRelated
	for _, id := range r.related[productID] {
		out = append(out, model.ProductRelated{ProductID: productID, RelatedProductID: id})
	}
	return out, nil
}

type stubBrandRepository map[string]model.Brand

func (r stubBrandRepository) FindByID(ctx context.Context, id string) (*model.Brand, error) {
	b, ok := r[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

type stubCategoryRepository map[string]model.Category

func (r stubCategoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	c, ok := r[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r stubCategoryRepository) FindAllByIDs(ctx context.Context, ids []string) ([]model.Category, error) {
	var out []model.Category
	for _, id := range ids {
		if c, ok := r[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

type stubOptionRepository map[string]model.ProductOption

func (r stubOptionRepository) FindAllByIDs(ctx context.Context, ids []string) ([]model.ProductOption, error) {
	var out []model.ProductOption
	for _, id := range ids {
		if o, ok := r[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

type stubMediaClient map[string]media.MediaInfo

func (c stubMediaClient) GetMedia(ctx context.Context, id string) (media.MediaInfo, error) {
	return c[id], nil
}

func (c stubMediaClient) SaveFile(ctx context.Context, file io.Reader, fileName, caption, fileNameOverride string) (media.MediaInfo, error) {
	return media.MediaInfo{}, nil
}

func (c stubMediaClient) RemoveMedia(ctx context.Context, id string) error {
	return nil
}

type stubCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *stubCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *stubCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *stubCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

const (
	optColor = "opt-color"
	optSize  = "opt-size"
)

type fixture struct {
	uc    product.UseCase
	repo  *stubProductRepository
	cache *stubCache
}

func newFixture() *fixture {
	repo := newStubProductRepository()
	cache := &stubCache{data: map[string][]byte{}}
	uc := NewProductUseCase(Deps{
		Repo:       repo,
		Brands:     stubBrandRepository{"brand-1": {BaseModel: model.BaseModel{ID: "brand-1"}, Name: "Acme"}},
		Categories: stubCategoryRepository{"cat-1": {BaseModel: model.BaseModel{ID: "cat-1"}, Name: "Shirts"}, "cat-2": {BaseModel: model.BaseModel{ID: "cat-2"}, Name: "Summer"}},
		Options: stubOptionRepository{
			optColor: {BaseModel: model.BaseModel{ID: optColor}, Name: "Color"},
			optSize:  {BaseModel: model.BaseModel{ID: optSize}, Name: "Size"},
		},
		Media:  stubMediaClient{"img-1": {ID: "img-1", URL: "http://cdn/img-1.jpg"}, "thumb-1": {ID: "thumb-1", URL: "http://cdn/thumb-1.jpg"}},
		Cache:  cache,
		Logger: logger.NewNop(),
	})
	return &fixture{uc: uc, repo: repo, cache: cache}
}
