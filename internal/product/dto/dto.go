package dto

import (
	"github.com/fekuna/omnipos-catalog-service/internal/media"
	"github.com/shopspring/decimal"
)

// ProductDetail is the read model returned by GetProduct.
type ProductDetail struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Slug             string            `json:"slug"`
	SKU              string            `json:"sku"`
	GTIN             string            `json:"gtin"`
	Price            decimal.Decimal   `json:"price"`
	ShortDescription string            `json:"short_description"`
	Description      string            `json:"description"`
	Specification    string            `json:"specification"`
	MetaTitle        string            `json:"meta_title"`
	MetaKeyword      string            `json:"meta_keyword"`
	MetaDescription  string            `json:"meta_description"`
	Length           float64           `json:"length"`
	Width            float64           `json:"width"`
	Height           float64           `json:"height"`
	Weight           float64           `json:"weight"`
	DimensionUnit    string            `json:"dimension_unit"`
	IsPublished      bool              `json:"is_published"`
	IsFeatured       bool              `json:"is_featured"`
	IsAllowedToOrder bool              `json:"is_allowed_to_order"`
	IsVisible        bool              `json:"is_visible_individually"`
	StockTracking    bool              `json:"stock_tracking_enabled"`
	HasOptions       bool              `json:"has_options"`
	StockQuantity    int64             `json:"stock_quantity"`
	BrandID          string            `json:"brand_id,omitempty"`
	ParentID         string            `json:"parent_id,omitempty"`
	TaxClassID       string            `json:"tax_class_id,omitempty"`
	CategoryIDs      []string          `json:"category_ids"`
	RelatedIDs       []string          `json:"related_product_ids"`
	Thumbnail        media.MediaInfo   `json:"thumbnail"`
	Images           []media.MediaInfo `json:"images"`
}

// ProductVariation is one published variant of a parent, with its option picks.
type ProductVariation struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	SKU           string            `json:"sku"`
	GTIN          string            `json:"gtin"`
	Price         decimal.Decimal   `json:"price"`
	StockQuantity int64             `json:"stock_quantity"`
	Options       map[string]string `json:"options"`
	Thumbnail     media.MediaInfo   `json:"thumbnail"`
	Images        []media.MediaInfo `json:"images"`
}

// ProductSlug addresses a product page. Variants resolve to their parent's page.
type ProductSlug struct {
	Slug             string `json:"slug"`
	ProductVariantID string `json:"product_variant_id,omitempty"`
}
