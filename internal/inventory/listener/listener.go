package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the consumer side of the broker. *broker.KafkaConsumer satisfies it.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type InventoryListener struct {
	consumer MessageReader
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewInventoryListener(consumer MessageReader, uc inventory.UseCase, logger logger.ZapLogger) *InventoryListener {
	return &InventoryListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *InventoryListener) Start(ctx context.Context) {
	l.logger.Info("Starting Inventory Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Inventory Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				// Don't log context canceled error as error
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

const (
	EventOrderCreated   = "OrderCreated"
	EventOrderCancelled = "OrderCancelled"
)

type OrderEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID    string             `json:"id"`
	Items []OrderItemPayload `json:"items"`
}

// OrderItemPayload names the ordered product. VariantID wins over ProductID when set.
type OrderItemPayload struct {
	ProductID string  `json:"product_id"`
	VariantID *string `json:"variant_id"`
	Quantity  int64   `json:"quantity"`
}

func (l *InventoryListener) processMessage(ctx context.Context, value []byte) {
	var event OrderEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	var apply func(context.Context, *dto.AdjustStockInput) error
	var reason string
	switch event.EventType {
	case EventOrderCreated:
		apply, reason = l.uc.SubtractStockQuantity, "Order Sale"
	case EventOrderCancelled:
		apply, reason = l.uc.RestoreStockQuantity, "Order Cancelled"
	default:
		return
	}

	l.logger.Info("Processing order event", zap.String("event_type", event.EventType), zap.String("order_id", event.Payload.ID))

	input := &dto.AdjustStockInput{
		ReferenceID: event.Payload.ID,
		Reason:      reason,
	}
	for _, item := range event.Payload.Items {
		productID := item.ProductID
		if item.VariantID != nil && *item.VariantID != "" {
			productID = *item.VariantID
		}
		input.Items = append(input.Items, dto.StockQuantityInput{ProductID: productID, Quantity: item.Quantity})
	}

	if err := apply(ctx, input); err != nil {
		l.logger.Error("Failed to adjust stock for order",
			zap.String("order_id", event.Payload.ID),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
	}
}
