package inventory

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
)

type UseCase interface {
	UpdateProductQuantity(ctx context.Context, input *dto.AdjustStockInput) error
	SubtractStockQuantity(ctx context.Context, input *dto.AdjustStockInput) error
	RestoreStockQuantity(ctx context.Context, input *dto.AdjustStockInput) error
}

// ErrBusy is returned when a product stays locked by another stock change.
var ErrBusy = errors.New("system busy, please try again later (lock)")
