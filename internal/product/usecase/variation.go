package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// variationPlan tracks one requested variation through the reconcile steps.
type variationPlan struct {
	input    dto.VariationInput
	slug     string
	existing *model.Product
	saved    model.Product
}

// reconcileVariations makes the parent's option values and the listed variants match the request.
// Variants that exist under the parent but are not listed are left as they are.
// It must run inside the caller's transaction: any error leaves partial writes behind.
func (uc *productUseCase) reconcileVariations(ctx context.Context, repo product.Repository, parent *model.Product, optionValues []dto.OptionValueInput, variations []dto.VariationInput) ([]model.Product, error) {
	offered, optionIDs, err := offeredOptions(optionValues)
	if err != nil {
		return nil, err
	}

	plans := make([]*variationPlan, len(variations))
	for i, v := range variations {
		if err := validateSelections(v, offered); err != nil {
			return nil, err
		}
		plans[i] = &variationPlan{input: v, slug: slugFor(v.Slug, v.Name)}
		if plans[i].slug == "" {
			return nil, apperror.BadRequest("Variation name is required")
		}
	}

	if err := detectDuplicates(parent, plans); err != nil {
		return nil, err
	}
	if err := uc.loadExisting(ctx, repo, parent, plans); err != nil {
		return nil, err
	}
	if err := checkUnlistedSiblings(ctx, repo, parent, plans, offered); err != nil {
		return nil, err
	}

	exclude := []string{parent.ID}
	for _, plan := range plans {
		if plan.existing != nil {
			exclude = append(exclude, plan.existing.ID)
		}
	}
	for _, plan := range plans {
		if err := uc.checkProductUnique(ctx, repo, plan.slug, plan.input.SKU, plan.input.GTIN, exclude...); err != nil {
			return nil, err
		}
	}

	savedValues, err := uc.materializeOptionValues(ctx, repo, parent.ID, optionIDs, optionValues)
	if err != nil {
		return nil, err
	}

	if err := saveVariants(ctx, repo, parent, plans); err != nil {
		return nil, err
	}

	combinations, err := buildCombinations(plans, savedValues)
	if err != nil {
		return nil, err
	}
	variantIDs := make([]string, len(plans))
	for i, plan := range plans {
		variantIDs[i] = plan.saved.ID
	}
	if err := repo.DeleteOptionCombinationsByProducts(ctx, variantIDs); err != nil {
		return nil, err
	}
	if err := repo.SaveOptionCombinations(ctx, combinations); err != nil {
		return nil, err
	}

	byProduct := make(map[string][]model.ProductOptionCombination, len(plans))
	for _, c := range combinations {
		byProduct[c.ProductID] = append(byProduct[c.ProductID], c)
	}
	variants := make([]model.Product, len(plans))
	for i, plan := range plans {
		variants[i] = plan.saved
		variants[i].Combinations = byProduct[plan.saved.ID]
	}
	parent.OptionValues = make([]model.ProductOptionValue, 0, len(optionIDs))
	for _, id := range optionIDs {
		parent.OptionValues = append(parent.OptionValues, savedValues[id])
	}
	return variants, nil
}

// validateSelections checks a variation only picks offered options, once each, with offered values.
func validateSelections(v dto.VariationInput, offered map[string]dto.OptionValueInput) error {
	picked := make(map[string]struct{}, len(v.Options))
	for _, sel := range v.Options {
		values, ok := offered[sel.OptionID]
		if !ok {
			return apperror.BadRequest("Product option %s is not offered by the product", sel.OptionID)
		}
		if _, dup := picked[sel.OptionID]; dup {
			return apperror.BadRequest("Product option %s is selected more than once", sel.OptionID)
		}
		picked[sel.OptionID] = struct{}{}
		if !offers(values, sel.Value) {
			return apperror.BadRequest("Value %s is not offered for product option %s", sel.Value, sel.OptionID)
		}
	}
	return nil
}

func detectDuplicates(parent *model.Product, plans []*variationPlan) error {
	slugs := map[string]struct{}{parent.Slug: {}}
	skus := map[string]struct{}{}
	gtins := map[string]struct{}{}
	ids := map[string]struct{}{}
	tuples := map[string]struct{}{}
	if parent.SKU != "" {
		skus[parent.SKU] = struct{}{}
	}
	if parent.GTIN != "" {
		gtins[parent.GTIN] = struct{}{}
	}

	for _, plan := range plans {
		if _, ok := slugs[plan.slug]; ok {
			return duplicated(fieldSlug, plan.slug)
		}
		slugs[plan.slug] = struct{}{}

		if sku := plan.input.SKU; sku != "" {
			if _, ok := skus[sku]; ok {
				return duplicated(fieldSKU, sku)
			}
			skus[sku] = struct{}{}
		}
		if gtin := plan.input.GTIN; gtin != "" {
			if _, ok := gtins[gtin]; ok {
				return duplicated(fieldGTIN, gtin)
			}
			gtins[gtin] = struct{}{}
		}
		if id := plan.input.ID; id != "" {
			if _, ok := ids[id]; ok {
				return apperror.Duplicated("Variation %s is already existed or is duplicated", id)
			}
			ids[id] = struct{}{}
		}

		key := tupleKey(plan.input.Options)
		if _, ok := tuples[key]; ok {
			return apperror.Duplicated("Variation with options [%s] is already existed or is duplicated", key)
		}
		tuples[key] = struct{}{}
	}
	return nil
}

// loadExisting attaches stored variants to plans that name one. They must belong to parent.
func (uc *productUseCase) loadExisting(ctx context.Context, repo product.Repository, parent *model.Product, plans []*variationPlan) error {
	var ids []string
	for _, plan := range plans {
		if plan.input.ID == "" {
			continue
		}
		if plan.input.ID == parent.ID {
			return apperror.BadRequest("Product %s cannot be a variation of itself", parent.ID)
		}
		ids = append(ids, plan.input.ID)
	}
	if len(ids) == 0 {
		return nil
	}

	found, err := repo.FindAllByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[string]model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	for _, plan := range plans {
		if plan.input.ID == "" {
			continue
		}
		existing, ok := byID[plan.input.ID]
		if !ok || existing.ParentID == nil || *existing.ParentID != parent.ID {
			return apperror.NotFound("Product %s is not found", plan.input.ID)
		}
		plan.existing = &existing
	}
	return nil
}

// checkUnlistedSiblings guards the stored variants the request leaves alone. Their picks must
// still be offered, and no requested variation may repeat their option tuple.
func checkUnlistedSiblings(ctx context.Context, repo product.Repository, parent *model.Product, plans []*variationPlan, offered map[string]dto.OptionValueInput) error {
	children, err := repo.FindAllByParent(ctx, parent.ID)
	if err != nil {
		return err
	}
	listed := make(map[string]struct{}, len(plans))
	for _, plan := range plans {
		if plan.existing != nil {
			listed[plan.existing.ID] = struct{}{}
		}
	}
	var ids []string
	for _, c := range children {
		if _, ok := listed[c.ID]; !ok {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	combinations, err := repo.FindOptionCombinationsByProducts(ctx, ids)
	if err != nil {
		return err
	}
	picks := make(map[string][]dto.OptionSelection, len(ids))
	for _, c := range combinations {
		values, ok := offered[c.ProductOptionID]
		if !ok || !offers(values, c.Value) {
			return apperror.BadRequest("Variation %s still uses value %s of product option %s", c.ProductID, c.Value, c.ProductOptionID)
		}
		picks[c.ProductID] = append(picks[c.ProductID], dto.OptionSelection{OptionID: c.ProductOptionID, Value: c.Value})
	}

	taken := make(map[string]struct{}, len(picks))
	for _, selections := range picks {
		taken[tupleKey(selections)] = struct{}{}
	}
	for _, plan := range plans {
		key := tupleKey(plan.input.Options)
		if _, ok := taken[key]; ok {
			return apperror.Duplicated("Variation with options [%s] is already existed or is duplicated", key)
		}
	}
	return nil
}

// materializeOptionValues replaces the parent's option-value rows with the offered set.
func (uc *productUseCase) materializeOptionValues(ctx context.Context, repo product.Repository, parentID string, optionIDs []string, optionValues []dto.OptionValueInput) (map[string]model.ProductOptionValue, error) {
	if len(optionIDs) > 0 {
		if _, err := uc.resolveOptions(ctx, optionIDs); err != nil {
			return nil, err
		}
	}
	if err := repo.DeleteOptionValuesByProduct(ctx, parentID); err != nil {
		return nil, err
	}
	if len(optionValues) == 0 {
		return map[string]model.ProductOptionValue{}, nil
	}

	rows := make([]model.ProductOptionValue, len(optionValues))
	for i, v := range optionValues {
		rows[i] = model.ProductOptionValue{
			ID:              uuid.New().String(),
			ProductID:       parentID,
			ProductOptionID: v.OptionID,
			DisplayType:     v.DisplayType,
			DisplayOrder:    v.DisplayOrder,
			Values:          pq.StringArray(append([]string(nil), v.Values...)),
		}
	}
	saved, err := repo.SaveOptionValues(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(saved) == 0 {
		return nil, apperror.BadRequest("Product option values of %s could not be saved", parentID)
	}

	byOption := make(map[string]model.ProductOptionValue, len(saved))
	for _, v := range saved {
		byOption[v.ProductOptionID] = v
	}
	return byOption, nil
}

// saveVariants upserts every planned variant in one call and matches the results back by slug.
func saveVariants(ctx context.Context, repo product.Repository, parent *model.Product, plans []*variationPlan) error {
	now := time.Now()
	products := make([]model.Product, len(plans))
	for i, plan := range plans {
		var p model.Product
		if plan.existing != nil {
			p = *plan.existing
		} else {
			p = newVariant(parent, now)
		}
		applyVariation(&p, plan, parent, now)
		products[i] = p
	}

	saved, err := repo.SaveAll(ctx, products)
	if err != nil {
		return err
	}
	if len(saved) != len(products) {
		return apperror.Internal("Saved %d variations of product %s, expected %d", len(saved), parent.ID, len(products))
	}
	bySlug := make(map[string]model.Product, len(saved))
	for _, p := range saved {
		bySlug[p.Slug] = p
	}
	for _, plan := range plans {
		p, ok := bySlug[plan.slug]
		if !ok {
			return apperror.Internal("Variation %s of product %s was not saved", plan.slug, parent.ID)
		}
		plan.saved = p
	}

	for _, plan := range plans {
		if err := repo.ReplaceImages(ctx, plan.saved.ID, plan.input.ImageMediaIDs); err != nil {
			return err
		}
	}
	return nil
}

// newVariant starts a variant from the parent's defaults. Variants are not listed on their own.
func newVariant(parent *model.Product, now time.Time) model.Product {
	parentID := parent.ID
	return model.Product{
		BaseModel:             model.BaseModel{ID: uuid.New().String(), CreatedAt: now},
		ParentID:              &parentID,
		BrandID:               parent.BrandID,
		TaxClassID:            parent.TaxClassID,
		Length:                parent.Length,
		Width:                 parent.Width,
		Height:                parent.Height,
		Weight:                parent.Weight,
		DimensionUnit:         parent.DimensionUnit,
		IsPublished:           parent.IsPublished,
		IsFeatured:            parent.IsFeatured,
		IsAllowedToOrder:      parent.IsAllowedToOrder,
		StockTrackingEnabled:  parent.StockTrackingEnabled,
		IsVisibleIndividually: false,
	}
}

func applyVariation(p *model.Product, plan *variationPlan, parent *model.Product, now time.Time) {
	v := plan.input
	p.Name = v.Name
	p.Slug = plan.slug
	p.SKU = v.SKU
	p.GTIN = v.GTIN
	p.Price = v.Price
	if v.TaxClassID != "" {
		p.TaxClassID = optional(v.TaxClassID)
	} else if p.TaxClassID == nil {
		p.TaxClassID = parent.TaxClassID
	}
	p.ThumbnailMediaID = optional(v.ThumbnailMediaID)
	if v.IsPublished != nil {
		p.IsPublished = *v.IsPublished
	}
	if v.IsFeatured != nil {
		p.IsFeatured = *v.IsFeatured
	}
	if v.IsAllowedToOrder != nil {
		p.IsAllowedToOrder = *v.IsAllowedToOrder
	}
	if v.StockTrackingEnabled != nil {
		p.StockTrackingEnabled = *v.StockTrackingEnabled
	}
	p.UpdatedAt = now
}

// buildCombinations validates every pick of every variant against the saved option values
// before any combination row is produced.
func buildCombinations(plans []*variationPlan, savedValues map[string]model.ProductOptionValue) ([]model.ProductOptionCombination, error) {
	var combinations []model.ProductOptionCombination
	for _, plan := range plans {
		for _, sel := range plan.input.Options {
			row, ok := savedValues[sel.OptionID]
			if !ok {
				return nil, apperror.BadRequest("Product option value for option %s is not found", sel.OptionID)
			}
			if !row.Offers(sel.Value) {
				return nil, apperror.BadRequest("Value %s is not offered for product option %s", sel.Value, sel.OptionID)
			}
			combinations = append(combinations, model.ProductOptionCombination{
				ID:              uuid.New().String(),
				ProductID:       plan.saved.ID,
				ProductOptionID: sel.OptionID,
				Value:           sel.Value,
				DisplayOrder:    row.DisplayOrder,
			})
		}
	}
	return combinations, nil
}
