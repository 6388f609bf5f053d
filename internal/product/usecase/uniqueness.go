package usecase

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
)

type uniqueField string

const (
	fieldSlug uniqueField = "Slug"
	fieldSKU  uniqueField = "SKU"
	fieldGTIN uniqueField = "GTIN"
)

func duplicated(field uniqueField, value string) error {
	return apperror.Duplicated("%s %s is already existed or is duplicated", field, value)
}

// checkUnique fails when a published product other than the excluded ones already claims value.
// Empty values are never checked.
func (uc *productUseCase) checkUnique(ctx context.Context, repo product.Repository, field uniqueField, value string, exclude ...string) error {
	if value == "" {
		return nil
	}

	var (
		existing *model.Product
		err      error
	)
	switch field {
	case fieldSlug:
		existing, err = repo.FindPublishedBySlug(ctx, value)
	case fieldSKU:
		existing, err = repo.FindPublishedBySKU(ctx, value)
	case fieldGTIN:
		existing, err = repo.FindPublishedByGTIN(ctx, value)
	default:
		return fmt.Errorf("unknown unique field %q", field)
	}
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	for _, id := range exclude {
		if existing.ID == id {
			return nil
		}
	}
	return duplicated(field, value)
}

func (uc *productUseCase) checkProductUnique(ctx context.Context, repo product.Repository, slug, sku, gtin string, exclude ...string) error {
	if err := uc.checkUnique(ctx, repo, fieldSlug, slug, exclude...); err != nil {
		return err
	}
	if err := uc.checkUnique(ctx, repo, fieldSKU, sku, exclude...); err != nil {
		return err
	}
	return uc.checkUnique(ctx, repo, fieldGTIN, gtin, exclude...)
}
