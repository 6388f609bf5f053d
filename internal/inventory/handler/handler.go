package handler

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/platform/rpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const InventoryServiceName = "catalog.v1.InventoryService"

type InventoryServiceServer interface {
	UpdateProductQuantity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	SubtractStockQuantity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RestoreStockQuantity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var InventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: InventoryServiceName,
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary[InventoryServiceServer](InventoryServiceName, "UpdateProductQuantity", InventoryServiceServer.UpdateProductQuantity),
		rpc.Unary[InventoryServiceServer](InventoryServiceName, "SubtractStockQuantity", InventoryServiceServer.SubtractStockQuantity),
		rpc.Unary[InventoryServiceServer](InventoryServiceName, "RestoreStockQuantity", InventoryServiceServer.RestoreStockQuantity),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/inventory.proto",
}

func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&InventoryServiceDesc, srv)
}

type stockItem struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

type stockRequest struct {
	Items       []stockItem `json:"items"`
	ReferenceID string      `json:"referenceId"`
	Reason      string      `json:"reason"`
}

func (r *stockRequest) toInput() *dto.AdjustStockInput {
	input := &dto.AdjustStockInput{ReferenceID: r.ReferenceID, Reason: r.Reason}
	for _, item := range r.Items {
		input.Items = append(input.Items, dto.StockQuantityInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return input
}

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) UpdateProductQuantity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.apply(ctx, req, "update", h.uc.UpdateProductQuantity)
}

func (h *InventoryHandler) SubtractStockQuantity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.apply(ctx, req, "subtract", h.uc.SubtractStockQuantity)
}

func (h *InventoryHandler) RestoreStockQuantity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.apply(ctx, req, "restore", h.uc.RestoreStockQuantity)
}

func (h *InventoryHandler) apply(ctx context.Context, req *structpb.Struct, op string, call func(context.Context, *dto.AdjustStockInput) error) (*structpb.Struct, error) {
	var in stockRequest
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	for _, item := range in.Items {
		if item.ProductID == "" {
			return nil, status.Error(codes.InvalidArgument, "productId is required")
		}
	}

	if err := call(ctx, in.toInput()); err != nil {
		if apperror.KindOf(err) != "" {
			h.logger.Warn("stock adjustment rejected", zap.String("op", op), zap.Error(err))
			return nil, err
		}
		h.logger.Error("failed to adjust stock", zap.String("op", op), zap.Error(err))
		if errors.Is(err, inventory.ErrBusy) {
			return nil, status.Error(codes.Unavailable, err.Error())
		}
		return nil, status.Error(codes.Internal, "internal error")
	}
	return &structpb.Struct{}, nil
}
