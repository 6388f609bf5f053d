package handler

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/platform/rpc"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ProductServiceName = "catalog.v1.ProductService"

type ProductServiceServer interface {
	CreateProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	SetProductImages(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetProductVariations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetProductSlug(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var ProductServiceDesc = grpc.ServiceDesc{
	ServiceName: ProductServiceName,
	HandlerType: (*ProductServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary[ProductServiceServer](ProductServiceName, "CreateProduct", ProductServiceServer.CreateProduct),
		rpc.Unary[ProductServiceServer](ProductServiceName, "UpdateProduct", ProductServiceServer.UpdateProduct),
		rpc.Unary[ProductServiceServer](ProductServiceName, "DeleteProduct", ProductServiceServer.DeleteProduct),
		rpc.Unary[ProductServiceServer](ProductServiceName, "SetProductImages", ProductServiceServer.SetProductImages),
		rpc.Unary[ProductServiceServer](ProductServiceName, "GetProduct", ProductServiceServer.GetProduct),
		rpc.Unary[ProductServiceServer](ProductServiceName, "GetProductVariations", ProductServiceServer.GetProductVariations),
		rpc.Unary[ProductServiceServer](ProductServiceName, "GetProductSlug", ProductServiceServer.GetProductSlug),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/product.proto",
}

func RegisterProductServiceServer(s grpc.ServiceRegistrar, srv ProductServiceServer) {
	s.RegisterService(&ProductServiceDesc, srv)
}

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ProductHandler) CreateProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in productRequest
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}

	p, err := h.uc.CreateProduct(ctx, &dto.CreateProductInput{ProductInput: in.toInput()})
	if err != nil {
		return nil, h.fail("failed to create product", err)
	}
	return rpc.Encode(mapProduct(p))
}

func (h *ProductHandler) UpdateProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in productRequest
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	if in.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	p, err := h.uc.UpdateProduct(ctx, &dto.UpdateProductInput{ID: in.ID, ProductInput: in.toInput()})
	if err != nil {
		return nil, h.fail("failed to update product", err, zap.String("product_id", in.ID))
	}
	return rpc.Encode(mapProduct(p))
}

func (h *ProductHandler) DeleteProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := decodeID(req)
	if err != nil {
		return nil, err
	}
	if err := h.uc.DeleteProduct(ctx, id); err != nil {
		return nil, h.fail("failed to delete product", err, zap.String("product_id", id))
	}
	return &structpb.Struct{}, nil
}

func (h *ProductHandler) SetProductImages(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in productImagesRequest
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	if in.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	if err := h.uc.SetProductImages(ctx, in.ID, in.ImageIDs); err != nil {
		return nil, h.fail("failed to set product images", err, zap.String("product_id", in.ID))
	}
	return &structpb.Struct{}, nil
}

func (h *ProductHandler) GetProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := decodeID(req)
	if err != nil {
		return nil, err
	}
	detail, err := h.uc.GetProduct(ctx, id)
	if err != nil {
		return nil, h.fail("failed to get product", err, zap.String("product_id", id))
	}
	return rpc.Encode(detail)
}

func (h *ProductHandler) GetProductVariations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := decodeID(req)
	if err != nil {
		return nil, err
	}
	variations, err := h.uc.GetProductVariations(ctx, id)
	if err != nil {
		return nil, h.fail("failed to get product variations", err, zap.String("product_id", id))
	}
	return rpc.Encode(variationsResponse{Variations: variations})
}

func (h *ProductHandler) GetProductSlug(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := decodeID(req)
	if err != nil {
		return nil, err
	}
	slug, err := h.uc.GetProductSlug(ctx, id)
	if err != nil {
		return nil, h.fail("failed to get product slug", err, zap.String("product_id", id))
	}
	return rpc.Encode(slug)
}

func decodeID(req *structpb.Struct) (string, error) {
	var in idRequest
	if err := rpc.Decode(req, &in); err != nil {
		return "", err
	}
	if in.ID == "" {
		return "", status.Error(codes.InvalidArgument, "id is required")
	}
	return in.ID, nil
}

// fail keeps catalog errors as they are and hides anything else behind codes.Internal.
func (h *ProductHandler) fail(msg string, err error, fields ...zap.Field) error {
	fields = append(fields, zap.Error(err))
	switch apperror.KindOf(err) {
	case "":
		h.logger.Error(msg, fields...)
		return status.Error(codes.Internal, "internal error")
	case apperror.KindInternal:
		h.logger.Error(msg, fields...)
		return err
	default:
		h.logger.Warn(msg, fields...)
		return err
	}
}
