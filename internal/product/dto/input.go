package dto

import "github.com/shopspring/decimal"

// ProductInput carries the writable fields shared by create and update.
type ProductInput struct {
	Name             string
	Slug             string // derived from Name when empty
	SKU              string
	GTIN             string
	Price            decimal.Decimal
	ShortDescription string
	Description      string
	Specification    string
	MetaTitle        string
	MetaKeyword      string
	MetaDescription  string

	Length        float64
	Width         float64
	Height        float64
	Weight        float64
	DimensionUnit string

	IsPublished           bool
	IsFeatured            bool
	IsAllowedToOrder      bool
	IsVisibleIndividually bool
	StockTrackingEnabled  bool

	BrandID          string
	ParentID         string
	ThumbnailMediaID string
	TaxClassID       string

	CategoryIDs       []string
	ImageMediaIDs     []string
	RelatedProductIDs []string

	OptionValues []OptionValueInput
	Variations   []VariationInput
}

type CreateProductInput struct {
	ProductInput
}

type UpdateProductInput struct {
	ID string
	ProductInput
}

// OptionValueInput lists the values the parent offers for one option.
type OptionValueInput struct {
	OptionID     string
	DisplayType  string
	DisplayOrder int
	Values       []string
}

// OptionSelection is the value one variation picks for one option.
type OptionSelection struct {
	OptionID string
	Value    string
}

// VariationInput describes one desired variant. An empty ID creates a new variant.
// Nil flags fall back to the parent's value for new variants and are left alone for existing ones.
type VariationInput struct {
	ID               string
	Name             string
	Slug             string
	SKU              string
	GTIN             string
	Price            decimal.Decimal
	TaxClassID       string
	ThumbnailMediaID string
	ImageMediaIDs    []string

	IsPublished          *bool
	IsFeatured           *bool
	IsAllowedToOrder     *bool
	StockTrackingEnabled *bool

	Options []OptionSelection
}
