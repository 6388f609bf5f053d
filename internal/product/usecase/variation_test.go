package usecase

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func colorValues(values ...string) dto.OptionValueInput {
	return dto.OptionValueInput{OptionID: optColor, DisplayType: "color", DisplayOrder: 0, Values: values}
}

func sizeValues(values ...string) dto.OptionValueInput {
	return dto.OptionValueInput{OptionID: optSize, DisplayType: "text", DisplayOrder: 1, Values: values}
}

func variation(name, sku string, picks ...dto.OptionSelection) dto.VariationInput {
	return dto.VariationInput{Name: name, SKU: sku, Price: decimal.NewFromInt(20), Options: picks}
}

func pick(optionID, value string) dto.OptionSelection {
	return dto.OptionSelection{OptionID: optionID, Value: value}
}

func createTShirt(t *testing.T, f *fixture) *model.Product {
	t.Helper()
	in := productInput("T-Shirt")
	in.SKU = "TS"
	p, err := f.uc.CreateProduct(context.Background(), &dto.CreateProductInput{ProductInput: in})
	require.NoError(t, err)
	return p
}

func updateVariations(f *fixture, parent *model.Product, values []dto.OptionValueInput, variations ...dto.VariationInput) (*model.Product, error) {
	in := productInput(parent.Name)
	in.SKU = parent.SKU
	in.OptionValues = values
	in.Variations = variations
	return f.uc.UpdateProduct(context.Background(), &dto.UpdateProductInput{ID: parent.ID, ProductInput: in})
}

func variantsOf(f *fixture, parentID string) []model.Product {
	variants, _ := f.repo.FindAllByParent(context.Background(), parentID)
	return variants
}

func TestReconcileAddsFirstVariation(t *testing.T) {
	f := newFixture()
	parent := createTShirt(t, f)

	updated, err := updateVariations(f, parent,
		[]dto.OptionValueInput{colorValues("Red", "Blue")},
		variation("T-Shirt Red", "TS-RED", pick(optColor, "Red")),
	)
	require.NoError(t, err)
	require.True(t, updated.HasOptions)
	require.True(t, f.repo.products[parent.ID].HasOptions)

	variants := variantsOf(f, parent.ID)
	require.Len(t, variants, 1)
	v := variants[0]
	require.Equal(t, "t-shirt-red", v.Slug)
	require.Equal(t, "TS-RED", v.SKU)
	require.Equal(t, parent.ID, *v.ParentID)
	require.True(t, v.IsPublished)
	require.True(t, v.IsAllowedToOrder)
	require.False(t, v.IsVisibleIndividually)

	combos := f.repo.combinations[v.ID]
	require.Len(t, combos, 1)
	require.Equal(t, optColor, combos[0].ProductOptionID)
	require.Equal(t, "Red", combos[0].Value)

	values := f.repo.optionValues[parent.ID]
	require.Len(t, values, 1)
	require.Equal(t, []string{"Red", "Blue"}, []string(values[0].Values))

	require.Len(t, updated.Variants, 1)
	require.Len(t, updated.Variants[0].Combinations, 1)
}

func TestCreateProductWithVariations(t *testing.T) {
	f := newFixture()
	in := productInput("Hoodie")
	in.OptionValues = []dto.OptionValueInput{colorValues("Red", "Blue"), sizeValues("M", "L")}
	in.Variations = []dto.VariationInput{
		variation("Hoodie Red M", "H-RM", pick(optColor, "Red"), pick(optSize, "M")),
		variation("Hoodie Red L", "H-RL", pick(optSize, "L"), pick(optColor, "Red")),
		variation("Hoodie Blue M", "H-BM", pick(optColor, "Blue"), pick(optSize, "M")),
	}

	p, err := f.uc.CreateProduct(context.Background(), &dto.CreateProductInput{ProductInput: in})
	require.NoError(t, err)
	require.True(t, p.HasOptions)
	require.Len(t, p.Variants, 3)

	for _, v := range p.Variants {
		combos := f.repo.combinations[v.ID]
		require.Len(t, combos, 2, v.Slug)
	}
	require.Len(t, f.repo.optionValues[p.ID], 2)
}

func TestReconcileRejectsDuplicateTuples(t *testing.T) {
	f := newFixture()
	parent := createTShirt(t, f)

	_, err := updateVariations(f, parent,
		[]dto.OptionValueInput{colorValues("Red", "Blue"), sizeValues("M")},
		variation("Red M", "TS-1", pick(optColor, "Red"), pick(optSize, "M")),
		variation("Also Red M", "TS-2", pick(optSize, "M"), pick(optColor, "Red")),
	)
	requireKind(t, err, apperror.KindDuplicated)

	require.Empty(t, variantsOf(f, parent.ID))
	require.Empty(t, f.repo.optionValues[parent.ID])
	require.False(t, f.repo.products[parent.ID].HasOptions)
}

func TestReconcileRejectsDuplicateSlugs(t *testing.T) {
	f := newFixture()
	parent := createTShirt(t, f)

	_, err := updateVariations(f, parent, nil,
		dto.VariationInput{Name: "Variant", Slug: "same"},
		dto.VariationInput{Name: "Other", Slug: "same"},
	)
	requireKind(t, err, apperror.KindDuplicated)
	require.Contains(t, err.Error(), "Slug same")
}

func TestReconcileRejectsRequestDuplicates(t *testing.T) {
	tests := []struct {
		name       string
		variations []dto.VariationInput
		contains   string
	}{
		{
			name: "sku",
			variations: []dto.VariationInput{
				variation("Red", "DUP", pick(optColor, "Red")),
				variation("Blue", "DUP", pick(optColor, "Blue")),
			},
			contains: "SKU DUP",
		},
		{
			name: "gtin",
			variations: []dto.VariationInput{
				{Name: "Red", GTIN: "42", Options: []dto.OptionSelection{pick(optColor, "Red")}},
				{Name: "Blue", GTIN: "42", Options: []dto.OptionSelection{pick(optColor, "Blue")}},
			},
			contains: "GTIN 42",
		},
		{
			name:       "parent slug",
			variations: []dto.VariationInput{variation("T-Shirt", "TS-X", pick(optColor, "Red"))},
			contains:   "Slug t-shirt",
		},
		{
			name:       "parent sku",
			variations: []dto.VariationInput{variation("Red", "TS", pick(optColor, "Red"))},
			contains:   "SKU TS",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			parent := createTShirt(t, f)

			_, err := updateVariations(f, parent, []dto.OptionValueInput{colorValues("Red", "Blue")}, tc.variations...)
			requireKind(t, err, apperror.KindDuplicated)
			require.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestReconcileRejectsStoredDuplicates(t *testing.T) {
	f := newFixture()
	parent := createTShirt(t, f)
	f.repo.put(model.Product{BaseModel: model.BaseModel{ID: "other"}, Name: "Other", Slug: "other", SKU: "TAKEN", IsPublished: true})

	_, err := updateVariations(f, parent,
		[]dto.OptionValueInput{colorValues("Red")},
		variation("Red", "TAKEN", pick(optColor, "Red")),
	)
	requireKind(t, err, apperror.KindDuplicated)
	require.Contains(t, err.Error(), "SKU TAKEN")
}

func TestReconcileRejectsBadSelections(t *testing.T) {
	tests := []struct {
		name   string
		values []dto.OptionValueInput
		pick   []dto.OptionSelection
	}{
		{
			name:   "option not offered",
			values: []dto.OptionValueInput{colorValues("Red")},
			pick:   []dto.OptionSelection{pick(optSize, "M")},
		},
		{
			name:   "value not offered",
			values: []dto.OptionValueInput{colorValues("Red", "Blue")},
			pick:   []dto.OptionSelection{pick(optColor, "Green")},
		},
		{
			name:   "option picked twice",
			values: []dto.OptionValueInput{colorValues("Red", "Blue")},
			pick:   []dto.OptionSelection{pick(optColor, "Red"), pick(optColor, "Blue")},
		},
		{
			name:   "unknown option",
			values: []dto.OptionValueInput{{OptionID: "opt-material", Values: []string{"Cotton"}}},
			pick:   []dto.OptionSelection{pick("opt-material", "Cotton")},
		},
		{
			name:   "option offered twice",
			values: []dto.OptionValueInput{colorValues("Red"), colorValues("Blue")},
			pick:   []dto.OptionSelection{pick(optColor, "Red")},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			parent := createTShirt(t, f)

			_, err := updateVariations(f, parent, tc.values, dto.VariationInput{Name: "Variant", Options: tc.pick})
			requireKind(t, err, apperror.KindBadRequest)
			require.Empty(t, variantsOf(f, parent.ID))
		})
	}
}

func TestReconcileRemovedOptionValueFails(t *testing.T) {
	f := newFixture()
	parent := createTShirt(t, f)
	_, err := updateVariations(f, parent,
		[]dto.OptionValueInput{colorValues("Red", "Blue")},
		variation("Red", "TS-RED", pick(optColor, "Red")),
	)
	require.NoError(t, err)
	red := variantsOf(f, parent.ID)[0]

	_, err = updateVariations(f, parent,
		[]dto.OptionValueInput{colorValues("Blue")},
		dto.VariationInput{ID: red.ID, Name: "Red", SKU: "TS-RED", Options: []dto.OptionSelection{pick(optColor, "Red")}},
	)
	requireKind(t, err, apperror.KindBadRequest)

	require.Equal(t, []string{"Red", "Blue"}, []string(f.repo.optionValues[parent.ID][0].Values))
	require.Len(t, f.repo.combinations[red.ID], 1)
}

func TestReconcileUpdatesExistingVariants(t *testing.T) {
	f := newFixture()
	parent := createTShirt(t, f)
	values := []dto.OptionValueInput{colorValues("Red", "Blue", "Green")}
	_, err := updateVariations(f, parent, values,
		variation("Red", "TS-RED", pick(optColor, "Red")),
		variation("Blue", "TS-BLUE", pick(optColor, "Blue")),
	)
	require.NoError(t, err)

	var red, blue model.Product
	for _, v := range variantsOf(f, parent.ID) {
		switch v.SKU {
		case "TS-RED":
			red = v
		case "TS-BLUE":
			blue = v
		}
	}

	hidden := false
	renamed := dto.VariationInput{
		ID:          red.ID,
		Name:        "Crimson",
		SKU:         "TS-CRIMSON",
		Price:       decimal.NewFromInt(25),
		IsPublished: &hidden,
		Options:     []dto.OptionSelection{pick(optColor, "Red")},
	}
	_, err = updateVariations(f, parent, values,
		renamed,
		variation("Green", "TS-GREEN", pick(optColor, "Green")),
	)
	require.NoError(t, err)

	variants := variantsOf(f, parent.ID)
	require.Len(t, variants, 3)

	stored := f.repo.products[red.ID]
	require.Equal(t, "crimson", stored.Slug)
	require.Equal(t, "TS-CRIMSON", stored.SKU)
	require.False(t, stored.IsPublished)
	require.True(t, stored.Price.Equal(decimal.NewFromInt(25)))
	require.Equal(t, red.CreatedAt, stored.CreatedAt)
	require.Len(t, f.repo.combinations[red.ID], 1)

	require.Equal(t, blue, f.repo.products[blue.ID])
	require.Len(t, f.repo.combinations[blue.ID], 1)
}

func TestReconcileRejectsForeignVariant(t *testing.T) {
	f := newFixture()
	parent := createTShirt(t, f)
	otherParent := "other-parent"
	f.repo.put(model.Product{BaseModel: model.BaseModel{ID: "foreign"}, Name: "Foreign", Slug: "foreign", ParentID: &otherParent, IsPublished: true})

	_, err := updateVariations(f, parent,
		[]dto.OptionValueInput{colorValues("Red")},
		dto.VariationInput{ID: "foreign", Name: "Red", Options: []dto.OptionSelection{pick(optColor, "Red")}},
	)
	requireKind(t, err, apperror.KindNotFound)

	_, err = updateVariations(f, parent,
		[]dto.OptionValueInput{colorValues("Red")},
		dto.VariationInput{ID: parent.ID, Name: "Red", Options: []dto.OptionSelection{pick(optColor, "Red")}},
	)
	requireKind(t, err, apperror.KindBadRequest)
}

func TestReconcileSaveAllMismatch(t *testing.T) {
	tests := []struct {
		name   string
		result func(saved []model.Product) []model.Product
	}{
		{
			name:   "missing row",
			result: func(saved []model.Product) []model.Product { return saved[:len(saved)-1] },
		},
		{
			name: "unexpected slug",
			result: func(saved []model.Product) []model.Product {
				saved[0].Slug = "something-else"
				return saved
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			parent := createTShirt(t, f)
			f.repo.saveAllResult = tc.result

			_, err := updateVariations(f, parent,
				[]dto.OptionValueInput{colorValues("Red", "Blue")},
				variation("Red", "TS-RED", pick(optColor, "Red")),
				variation("Blue", "TS-BLUE", pick(optColor, "Blue")),
			)
			requireKind(t, err, apperror.KindInternal)
			require.Empty(t, variantsOf(f, parent.ID))
			require.Empty(t, f.repo.combinations)
		})
	}
}

func TestReconcileOptionValuesNotSaved(t *testing.T) {
	f := newFixture()
	parent := createTShirt(t, f)
	f.repo.dropOptionValues = true

	_, err := updateVariations(f, parent,
		[]dto.OptionValueInput{colorValues("Red")},
		variation("Red", "TS-RED", pick(optColor, "Red")),
	)
	requireKind(t, err, apperror.KindBadRequest)
}

func TestDeleteVariantRemovesCombinations(t *testing.T) {
	f := newFixture()
	parent := createTShirt(t, f)
	_, err := updateVariations(f, parent,
		[]dto.OptionValueInput{colorValues("Red", "Blue")},
		variation("Red", "TS-RED", pick(optColor, "Red")),
		variation("Blue", "TS-BLUE", pick(optColor, "Blue")),
	)
	require.NoError(t, err)

	variations, err := f.uc.GetProductVariations(context.Background(), parent.ID)
	require.NoError(t, err)
	require.Len(t, variations, 2)

	var red string
	for _, v := range variations {
		if v.Options[optColor] == "Red" {
			red = v.ID
		}
	}
	require.NotEmpty(t, red)

	require.NoError(t, f.uc.DeleteProduct(context.Background(), red))
	require.False(t, f.repo.products[red].IsPublished)
	require.Empty(t, f.repo.combinations[red])

	variations, err = f.uc.GetProductVariations(context.Background(), parent.ID)
	require.NoError(t, err)
	require.Len(t, variations, 1)
	require.Equal(t, "Blue", variations[0].Options[optColor])
}

func TestVariationCannotHaveVariations(t *testing.T) {
	f := newFixture()
	parent := createTShirt(t, f)

	in := productInput("Nested")
	in.ParentID = parent.ID
	in.OptionValues = []dto.OptionValueInput{colorValues("Red")}
	_, err := f.uc.CreateProduct(context.Background(), &dto.CreateProductInput{ProductInput: in})
	requireKind(t, err, apperror.KindBadRequest)
}

func TestTupleKeyIgnoresOrder(t *testing.T) {
	a := tupleKey([]dto.OptionSelection{pick(optColor, "Red"), pick(optSize, "M")})
	b := tupleKey([]dto.OptionSelection{pick(optSize, "M"), pick(optColor, "Red")})
	require.Equal(t, a, b)
	require.NotEqual(t, a, tupleKey([]dto.OptionSelection{pick(optColor, "Red")}))
}

func TestReconcileRejectsTupleOfUnlistedSibling(t *testing.T) {
	f := newFixture()
	parent := createTShirt(t, f)
	values := []dto.OptionValueInput{colorValues("Red", "Blue")}
	_, err := updateVariations(f, parent, values, variation("T-Shirt Red", "TS-RED", pick(optColor, "Red")))
	require.NoError(t, err)

	_, err = updateVariations(f, parent, values, variation("Red Again", "TS-RED-2", pick(optColor, "Red")))
	requireKind(t, err, apperror.KindDuplicated)
	require.Contains(t, err.Error(), optColor+"=Red")

	variants := variantsOf(f, parent.ID)
	require.Len(t, variants, 1)
	require.Equal(t, "TS-RED", variants[0].SKU)
}

func TestReconcileRejectsValueStillUsedByUnlistedSibling(t *testing.T) {
	f := newFixture()
	parent := createTShirt(t, f)
	_, err := updateVariations(f, parent,
		[]dto.OptionValueInput{colorValues("Red", "Blue")},
		variation("T-Shirt Red", "TS-RED", pick(optColor, "Red")),
	)
	require.NoError(t, err)
	red := variantsOf(f, parent.ID)[0]

	_, err = updateVariations(f, parent,
		[]dto.OptionValueInput{sizeValues("M")},
		variation("T-Shirt M", "TS-M", pick(optSize, "M")),
	)
	requireKind(t, err, apperror.KindBadRequest)

	values := f.repo.optionValues[parent.ID]
	require.Len(t, values, 1)
	require.Equal(t, optColor, values[0].ProductOptionID)
	require.Len(t, f.repo.combinations[red.ID], 1)
	require.Len(t, variantsOf(f, parent.ID), 1)
}

func TestReconcileOptionValuesOnlyKeepsVariations(t *testing.T) {
	f := newFixture()
	parent := createTShirt(t, f)
	values := []dto.OptionValueInput{colorValues("Red", "Blue"), sizeValues("M")}
	_, err := updateVariations(f, parent, values,
		variation("Red", "TS-RED", pick(optColor, "Red")),
		variation("Blue", "TS-BLUE", pick(optColor, "Blue")),
	)
	require.NoError(t, err)

	updated, err := updateVariations(f, parent, values)
	require.NoError(t, err)
	require.True(t, updated.HasOptions)
	require.True(t, f.repo.products[parent.ID].HasOptions)

	require.Len(t, updated.OptionValues, 2)
	require.Equal(t, optColor, updated.OptionValues[0].ProductOptionID)
	require.Equal(t, optSize, updated.OptionValues[1].ProductOptionID)

	variations, err := f.uc.GetProductVariations(context.Background(), parent.ID)
	require.NoError(t, err)
	require.Len(t, variations, 2)
}
