package handler

import (
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
	"github.com/shopspring/decimal"
)

type idRequest struct {
	ID string `json:"id"`
}

type productImagesRequest struct {
	ID       string   `json:"id"`
	ImageIDs []string `json:"imageIds"`
}

type productRequest struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	SKU              string          `json:"sku"`
	GTIN             string          `json:"gtin"`
	Price            decimal.Decimal `json:"price"`
	ShortDescription string          `json:"shortDescription"`
	Description      string          `json:"description"`
	Specification    string          `json:"specification"`
	MetaTitle        string          `json:"metaTitle"`
	MetaKeyword      string          `json:"metaKeyword"`
	MetaDescription  string          `json:"metaDescription"`

	Length        float64 `json:"length"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Weight        float64 `json:"weight"`
	DimensionUnit string  `json:"dimensionUnit"`

	IsPublished           bool `json:"isPublished"`
	IsFeatured            bool `json:"isFeatured"`
	IsAllowedToOrder      bool `json:"isAllowedToOrder"`
	IsVisibleIndividually bool `json:"isVisibleIndividually"`
	StockTrackingEnabled  bool `json:"stockTrackingEnabled"`

	BrandID          string `json:"brandId"`
	ParentID         string `json:"parentId"`
	ThumbnailMediaID string `json:"thumbnailMediaId"`
	TaxClassID       string `json:"taxClassId"`

	CategoryIDs       []string `json:"categoryIds"`
	ImageMediaIDs     []string `json:"productImageIds"`
	RelatedProductIDs []string `json:"relatedProductIds"`

	OptionValues []optionValueRequest `json:"productOptionValues"`
	Variations   []variationRequest   `json:"variations"`
}

type optionValueRequest struct {
	OptionID     string   `json:"productOptionId"`
	DisplayType  string   `json:"displayType"`
	DisplayOrder int      `json:"displayOrder"`
	Values       []string `json:"value"`
}

type optionSelectionRequest struct {
	OptionID string `json:"optionId"`
	Value    string `json:"value"`
}

type variationRequest struct {
	ID                   string                   `json:"id"`
	Name                 string                   `json:"name"`
	Slug                 string                   `json:"slug"`
	SKU                  string                   `json:"sku"`
	GTIN                 string                   `json:"gtin"`
	Price                decimal.Decimal          `json:"price"`
	TaxClassID           string                   `json:"taxClassId"`
	ThumbnailMediaID     string                   `json:"thumbnailMediaId"`
	ImageMediaIDs        []string                 `json:"productImageIds"`
	IsPublished          *bool                    `json:"isPublished"`
	IsFeatured           *bool                    `json:"isFeatured"`
	IsAllowedToOrder     *bool                    `json:"isAllowedToOrder"`
	StockTrackingEnabled *bool                    `json:"stockTrackingEnabled"`
	Options              []optionSelectionRequest `json:"options"`
}

func (r *productRequest) toInput() dto.ProductInput {
	in := dto.ProductInput{
		Name:                  r.Name,
		Slug:                  r.Slug,
		SKU:                   r.SKU,
		GTIN:                  r.GTIN,
		Price:                 r.Price,
		ShortDescription:      r.ShortDescription,
		Description:           r.Description,
		Specification:         r.Specification,
		MetaTitle:             r.MetaTitle,
		MetaKeyword:           r.MetaKeyword,
		MetaDescription:       r.MetaDescription,
		Length:                r.Length,
		Width:                 r.Width,
		Height:                r.Height,
		Weight:                r.Weight,
		DimensionUnit:         r.DimensionUnit,
		IsPublished:           r.IsPublished,
		IsFeatured:            r.IsFeatured,
		IsAllowedToOrder:      r.IsAllowedToOrder,
		IsVisibleIndividually: r.IsVisibleIndividually,
		StockTrackingEnabled:  r.StockTrackingEnabled,
		BrandID:               r.BrandID,
		ParentID:              r.ParentID,
		ThumbnailMediaID:      r.ThumbnailMediaID,
		TaxClassID:            r.TaxClassID,
		CategoryIDs:           r.CategoryIDs,
		ImageMediaIDs:         r.ImageMediaIDs,
		RelatedProductIDs:     r.RelatedProductIDs,
	}
	for _, v := range r.OptionValues {
		in.OptionValues = append(in.OptionValues, dto.OptionValueInput{
			OptionID:     v.OptionID,
			DisplayType:  v.DisplayType,
			DisplayOrder: v.DisplayOrder,
			Values:       v.Values,
		})
	}
	for _, v := range r.Variations {
		variation := dto.VariationInput{
			ID:                   v.ID,
			Name:                 v.Name,
			Slug:                 v.Slug,
			SKU:                  v.SKU,
			GTIN:                 v.GTIN,
			Price:                v.Price,
			TaxClassID:           v.TaxClassID,
			ThumbnailMediaID:     v.ThumbnailMediaID,
			ImageMediaIDs:        v.ImageMediaIDs,
			IsPublished:          v.IsPublished,
			IsFeatured:           v.IsFeatured,
			IsAllowedToOrder:     v.IsAllowedToOrder,
			StockTrackingEnabled: v.StockTrackingEnabled,
		}
		for _, o := range v.Options {
			variation.Options = append(variation.Options, dto.OptionSelection{OptionID: o.OptionID, Value: o.Value})
		}
		in.Variations = append(in.Variations, variation)
	}
	return in
}

type productResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Slug       string              `json:"slug"`
	SKU        string              `json:"sku"`
	GTIN       string              `json:"gtin"`
	Price      decimal.Decimal     `json:"price"`
	HasOptions bool                `json:"hasOptions"`
	ParentID   string              `json:"parentId,omitempty"`
	Variations []variationResponse `json:"variations,omitempty"`
}

type variationResponse struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Slug    string            `json:"slug"`
	SKU     string            `json:"sku"`
	Options map[string]string `json:"options"`
}

func mapProduct(p *model.Product) productResponse {
	res := productResponse{
		ID:         p.ID,
		Name:       p.Name,
		Slug:       p.Slug,
		SKU:        p.SKU,
		GTIN:       p.GTIN,
		Price:      p.Price,
		HasOptions: p.HasOptions,
	}
	if p.ParentID != nil {
		res.ParentID = *p.ParentID
	}
	for _, v := range p.Variants {
		options := make(map[string]string, len(v.Combinations))
		for _, c := range v.Combinations {
			options[c.ProductOptionID] = c.Value
		}
		res.Variations = append(res.Variations, variationResponse{
			ID:      v.ID,
			Name:    v.Name,
			Slug:    v.Slug,
			SKU:     v.SKU,
			Options: options,
		})
	}
	return res
}

type variationsResponse struct {
	Variations []dto.ProductVariation `json:"variations"`
}
