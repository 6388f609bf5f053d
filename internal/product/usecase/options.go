package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/option"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
)

// resolveOptions loads the options behind ids. Any id that does not resolve fails the request.
func (uc *productUseCase) resolveOptions(ctx context.Context, ids []string) (map[string]model.ProductOption, error) {
	found, err := uc.options.FindAllByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID, missing := option.Resolve(found, ids)
	if len(missing) > 0 {
		return nil, apperror.BadRequest("Product option %s is not found", strings.Join(missing, ", "))
	}
	return byID, nil
}

// offeredOptions indexes the option values a parent offers by option id.
func offeredOptions(values []dto.OptionValueInput) (map[string]dto.OptionValueInput, []string, error) {
	offered := make(map[string]dto.OptionValueInput, len(values))
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if v.OptionID == "" {
			return nil, nil, apperror.BadRequest("Product option id is required")
		}
		if _, ok := offered[v.OptionID]; ok {
			return nil, nil, apperror.BadRequest("Product option %s is offered more than once", v.OptionID)
		}
		offered[v.OptionID] = v
		ids = append(ids, v.OptionID)
	}
	return offered, ids, nil
}

func offers(v dto.OptionValueInput, value string) bool {
	for _, candidate := range v.Values {
		if candidate == value {
			return true
		}
	}
	return false
}

// tupleKey identifies a variation by its option picks, independent of their order.
func tupleKey(selections []dto.OptionSelection) string {
	pairs := make([]string, len(selections))
	for i, s := range selections {
		pairs[i] = s.OptionID + "=" + s.Value
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ", ")
}
