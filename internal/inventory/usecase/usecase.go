package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Locker guards a product's stock while a batch is applied. The Redis client satisfies it.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

const (
	lockTTL      = 5 * time.Second
	lockAttempts = 3
	lockBackoff  = 100 * time.Millisecond
)

type inventoryUseCase struct {
	repo   inventory.Repository
	cache  Locker
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, cache Locker, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

// UpdateProductQuantity sets the quantity of every listed product. Stock tracking does not matter here.
func (uc *inventoryUseCase) UpdateProductQuantity(ctx context.Context, input *dto.AdjustStockInput) error {
	return uc.adjust(ctx, model.MovementSet, input)
}

// SubtractStockQuantity lowers stock of tracked products, never below zero.
func (uc *inventoryUseCase) SubtractStockQuantity(ctx context.Context, input *dto.AdjustStockInput) error {
	return uc.adjust(ctx, model.MovementSubtract, input)
}

// RestoreStockQuantity raises stock of tracked products.
func (uc *inventoryUseCase) RestoreStockQuantity(ctx context.Context, input *dto.AdjustStockInput) error {
	return uc.adjust(ctx, model.MovementRestore, input)
}

func (uc *inventoryUseCase) adjust(ctx context.Context, kind model.MovementType, input *dto.AdjustStockInput) error {
	ids, quantities, err := mergeItems(kind, input.Items)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	release, err := uc.lock(ctx, ids)
	if err != nil {
		return err
	}
	defer release()

	products, err := uc.repo.FindAllByIDs(ctx, ids)
	if err != nil {
		return err
	}

	now := time.Now()
	var (
		changed   []model.Product
		movements []model.StockMovement
	)
	for _, p := range products {
		if kind != model.MovementSet && !p.StockTrackingEnabled {
			continue
		}
		before := p.StockQuantity
		after := nextQuantity(kind, before, quantities[p.ID])
		if after == before {
			continue
		}

		p.StockQuantity = after
		p.UpdatedAt = now
		changed = append(changed, p)
		movements = append(movements, model.StockMovement{
			ID:             uuid.New().String(),
			ProductID:      p.ID,
			MovementType:   kind,
			QuantityChange: after - before,
			QuantityBefore: before,
			QuantityAfter:  after,
			ReferenceID:    optional(input.ReferenceID),
			Notes:          optional(input.Reason),
			CreatedAt:      now,
		})
	}
	if len(changed) == 0 {
		return nil
	}

	if err := uc.repo.SaveStock(ctx, changed, movements); err != nil {
		return err
	}

	keys := make([]string, 0, len(changed)*2)
	for _, p := range changed {
		keys = append(keys, product.CacheKey(p.ID))
		if p.ParentID != nil {
			keys = append(keys, product.CacheKey(*p.ParentID))
		}
	}
	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, keys...); err != nil {
			uc.logger.Warn("failed to invalidate product cache", zap.Strings("keys", keys), zap.Error(err))
		}
	}
	return nil
}

// mergeItems folds repeated product ids: quantities add up, except for a set where the last one wins.
// The returned ids are sorted so concurrent batches lock in the same order.
func mergeItems(kind model.MovementType, items []dto.StockQuantityInput) ([]string, map[string]int64, error) {
	quantities := make(map[string]int64, len(items))
	for _, item := range items {
		if item.ProductID == "" {
			return nil, nil, apperror.BadRequest("Product id is required")
		}
		if item.Quantity < 0 {
			return nil, nil, apperror.BadRequest("Quantity of product %s must not be negative", item.ProductID)
		}
		if kind == model.MovementSet {
			quantities[item.ProductID] = item.Quantity
		} else {
			quantities[item.ProductID] += item.Quantity
		}
	}
	ids := make([]string, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, quantities, nil
}

func nextQuantity(kind model.MovementType, current, quantity int64) int64 {
	switch kind {
	case model.MovementSet:
		return quantity
	case model.MovementSubtract:
		if quantity > current {
			return 0
		}
		return current - quantity
	default:
		return current + quantity
	}
}

// lock takes a Redis lock per product, retrying a few times like a single adjustment would.
func (uc *inventoryUseCase) lock(ctx context.Context, ids []string) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	value := uuid.New().String()
	var held []string
	release := func() {
		for _, key := range held {
			if err := uc.cache.ReleaseLock(context.Background(), key, value); err != nil {
				uc.logger.Warn("failed to release stock lock", zap.String("key", key), zap.Error(err))
			}
		}
	}

	for _, id := range ids {
		key := "lock:stock:" + id
		acquired := false
		for i := 0; i < lockAttempts; i++ {
			ok, err := uc.cache.AcquireLock(ctx, key, value, lockTTL)
			if err != nil {
				uc.logger.Error("failed to acquire lock redis error", zap.String("key", key), zap.Error(err))
			}
			if ok {
				acquired = true
				break
			}
			time.Sleep(lockBackoff)
		}
		if !acquired {
			release()
			return nil, inventory.ErrBusy
		}
		held = append(held, key)
	}
	return release, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
