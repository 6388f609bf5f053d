package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type DimensionUnit string

const (
	DimensionUnitCM   DimensionUnit = "cm"
	DimensionUnitInch DimensionUnit = "inch"
)

type Product struct {
	BaseModel
	Name             string          `db:"name" json:"name"`
	Slug             string          `db:"slug" json:"slug"`
	SKU              string          `db:"sku" json:"sku"`
	GTIN             string          `db:"gtin" json:"gtin"`
	Price            decimal.Decimal `db:"price" json:"price"`
	ShortDescription string          `db:"short_description" json:"short_description"`
	Description      string          `db:"description" json:"description"`
	Specification    string          `db:"specification" json:"specification"`
	MetaTitle        string          `db:"meta_title" json:"meta_title"`
	MetaKeyword      string          `db:"meta_keyword" json:"meta_keyword"`
	MetaDescription  string          `db:"meta_description" json:"meta_description"`

	Length        float64       `db:"length" json:"length"`
	Width         float64       `db:"width" json:"width"`
	Height        float64       `db:"height" json:"height"`
	Weight        float64       `db:"weight" json:"weight"`
	DimensionUnit DimensionUnit `db:"dimension_unit" json:"dimension_unit"`

	IsPublished           bool  `db:"is_published" json:"is_published"`
	IsFeatured            bool  `db:"is_featured" json:"is_featured"`
	IsAllowedToOrder      bool  `db:"is_allowed_to_order" json:"is_allowed_to_order"`
	IsVisibleIndividually bool  `db:"is_visible_individually" json:"is_visible_individually"`
	StockTrackingEnabled  bool  `db:"stock_tracking_enabled" json:"stock_tracking_enabled"`
	HasOptions            bool  `db:"has_options" json:"has_options"`
	StockQuantity         int64 `db:"stock_quantity" json:"stock_quantity"`

	BrandID          *string `db:"brand_id" json:"brand_id"`   // Nullable
	ParentID         *string `db:"parent_id" json:"parent_id"` // Non-nil means this product is a variant
	ThumbnailMediaID *string `db:"thumbnail_media_id" json:"thumbnail_media_id"`
	TaxClassID       *string `db:"tax_class_id" json:"tax_class_id"`

	// Loaded or assembled by the use case, not columns of the products table.
	Variants     []Product                  `db:"-" json:"variants,omitempty"`
	Categories   []ProductCategory          `db:"-" json:"categories,omitempty"`
	Images       []ProductImage             `db:"-" json:"images,omitempty"`
	Related      []ProductRelated           `db:"-" json:"related,omitempty"`
	OptionValues []ProductOptionValue       `db:"-" json:"option_values,omitempty"`
	Combinations []ProductOptionCombination `db:"-" json:"combinations,omitempty"`
}

// IsVariant reports whether the product hangs under a parent.
func (p *Product) IsVariant() bool {
	return p.ParentID != nil && *p.ParentID != ""
}

type ProductImage struct {
	ID           string    `db:"id" json:"id"`
	ProductID    string    `db:"product_id" json:"product_id"`
	ImageID      string    `db:"image_id" json:"image_id"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type ProductCategory struct {
	ID           string `db:"id" json:"id"`
	ProductID    string `db:"product_id" json:"product_id"`
	CategoryID   string `db:"category_id" json:"category_id"`
	DisplayOrder int    `db:"display_order" json:"display_order"`
}

type ProductRelated struct {
	ID               string `db:"id" json:"id"`
	ProductID        string `db:"product_id" json:"product_id"`
	RelatedProductID string `db:"related_product_id" json:"related_product_id"`
}

// ProductOption is a catalog-wide axis of variation, e.g. "Color".
type ProductOption struct {
	BaseModel
	Name string `db:"name" json:"name"`
}

// ProductOptionValue lists the choices a parent product offers for one option.
type ProductOptionValue struct {
	ID              string         `db:"id" json:"id"`
	ProductID       string         `db:"product_id" json:"product_id"`
	ProductOptionID string         `db:"product_option_id" json:"product_option_id"`
	DisplayType     string         `db:"display_type" json:"display_type"`
	DisplayOrder    int            `db:"display_order" json:"display_order"`
	Values          pq.StringArray `db:"option_values" json:"values"`
}

// Offers reports whether value is one of the selectable values.
func (v ProductOptionValue) Offers(value string) bool {
	for _, candidate := range v.Values {
		if candidate == value {
			return true
		}
	}
	return false
}

// ProductOptionCombination is the concrete value a variant carries for one option.
type ProductOptionCombination struct {
	ID              string `db:"id" json:"id"`
	ProductID       string `db:"product_id" json:"product_id"`
	ProductOptionID string `db:"product_option_id" json:"product_option_id"`
	Value           string `db:"value" json:"value"`
	DisplayOrder    int    `db:"display_order" json:"display_order"`
}
