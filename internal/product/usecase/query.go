package usecase

import (
	"context"
	"encoding/json"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/media"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
	"go.uber.org/zap"
)

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*dto.ProductDetail, error) {
	cacheKey := product.CacheKey(id)
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, cacheKey)
		if err != nil {
			uc.logger.Warn("failed to read product cache", zap.String("key", cacheKey), zap.Error(err))
		}
		if cached != nil {
			var detail dto.ProductDetail
			if err := json.Unmarshal(cached, &detail); err == nil {
				return &detail, nil
			}
		}
	}

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("Product %s is not found", id)
	}

	categories, err := uc.repo.FindCategoriesByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	related, err := uc.repo.FindRelatedByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	images, err := uc.repo.FindImagesByProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := toDetail(p)
	for _, c := range categories {
		detail.CategoryIDs = append(detail.CategoryIDs, c.CategoryID)
	}
	for _, r := range related {
		detail.RelatedIDs = append(detail.RelatedIDs, r.RelatedProductID)
	}
	detail.Thumbnail = uc.lookupMedia(ctx, deref(p.ThumbnailMediaID))
	detail.Images = uc.lookupImages(ctx, images)

	if uc.cache != nil {
		if data, err := json.Marshal(detail); err == nil {
			if err := uc.cache.Set(ctx, cacheKey, data, uc.cacheTTL); err != nil {
				uc.logger.Warn("failed to write product cache", zap.String("key", cacheKey), zap.Error(err))
			}
		}
	}
	return detail, nil
}

// GetProductVariations lists the published variants of parentID with their option picks.
func (uc *productUseCase) GetProductVariations(ctx context.Context, parentID string) ([]dto.ProductVariation, error) {
	parent, err := uc.repo.FindByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, apperror.NotFound("Product %s is not found", parentID)
	}
	if !parent.HasOptions {
		return []dto.ProductVariation{}, nil
	}

	children, err := uc.repo.FindAllByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	var variants []model.Product
	for _, c := range children {
		if c.IsPublished {
			variants = append(variants, c)
		}
	}
	if len(variants) == 0 {
		return []dto.ProductVariation{}, nil
	}

	ids := make([]string, len(variants))
	for i, v := range variants {
		ids[i] = v.ID
	}
	combinations, err := uc.repo.FindOptionCombinationsByProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	options := make(map[string]map[string]string, len(variants))
	for _, c := range combinations {
		if options[c.ProductID] == nil {
			options[c.ProductID] = map[string]string{}
		}
		options[c.ProductID][c.ProductOptionID] = c.Value
	}

	result := make([]dto.ProductVariation, 0, len(variants))
	for _, v := range variants {
		images, err := uc.repo.FindImagesByProduct(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		picks := options[v.ID]
		if picks == nil {
			picks = map[string]string{}
		}
		result = append(result, dto.ProductVariation{
			ID:            v.ID,
			Name:          v.Name,
			Slug:          v.Slug,
			SKU:           v.SKU,
			GTIN:          v.GTIN,
			Price:         v.Price,
			StockQuantity: v.StockQuantity,
			Options:       picks,
			Thumbnail:     uc.lookupMedia(ctx, deref(v.ThumbnailMediaID)),
			Images:        uc.lookupImages(ctx, images),
		})
	}
	return result, nil
}

// GetProductSlug resolves the page slug of a product. A variant points at its parent's page.
func (uc *productUseCase) GetProductSlug(ctx context.Context, id string) (*dto.ProductSlug, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("Product %s is not found", id)
	}
	if !p.IsVariant() {
		return &dto.ProductSlug{Slug: p.Slug}, nil
	}

	parent, err := uc.repo.FindByID(ctx, *p.ParentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, apperror.NotFound("Product %s is not found", *p.ParentID)
	}
	return &dto.ProductSlug{Slug: parent.Slug, ProductVariantID: p.ID}, nil
}

// lookupMedia degrades to an empty MediaInfo when the media service fails.
func (uc *productUseCase) lookupMedia(ctx context.Context, id string) media.MediaInfo {
	if id == "" || uc.media == nil {
		return media.MediaInfo{}
	}
	info, err := uc.media.GetMedia(ctx, id)
	if err != nil {
		uc.logger.Warn("failed to load media", zap.String("media_id", id), zap.Error(err))
		return media.MediaInfo{}
	}
	return info
}

func (uc *productUseCase) lookupImages(ctx context.Context, images []model.ProductImage) []media.MediaInfo {
	infos := make([]media.MediaInfo, 0, len(images))
	for _, img := range images {
		infos = append(infos, uc.lookupMedia(ctx, img.ImageID))
	}
	return infos
}

func toDetail(p *model.Product) *dto.ProductDetail {
	return &dto.ProductDetail{
		ID:               p.ID,
		Name:             p.Name,
		Slug:             p.Slug,
		SKU:              p.SKU,
		GTIN:             p.GTIN,
		Price:            p.Price,
		ShortDescription: p.ShortDescription,
		Description:      p.Description,
		Specification:    p.Specification,
		MetaTitle:        p.MetaTitle,
		MetaKeyword:      p.MetaKeyword,
		MetaDescription:  p.MetaDescription,
		Length:           p.Length,
		Width:            p.Width,
		Height:           p.Height,
		Weight:           p.Weight,
		DimensionUnit:    string(p.DimensionUnit),
		IsPublished:      p.IsPublished,
		IsFeatured:       p.IsFeatured,
		IsAllowedToOrder: p.IsAllowedToOrder,
		IsVisible:        p.IsVisibleIndividually,
		StockTracking:    p.StockTrackingEnabled,
		HasOptions:       p.HasOptions,
		StockQuantity:    p.StockQuantity,
		BrandID:          deref(p.BrandID),
		ParentID:         deref(p.ParentID),
		TaxClassID:       deref(p.TaxClassID),
		CategoryIDs:      []string{},
		RelatedIDs:       []string{},
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
