package service

import (
	"context"
	"mime/multipart"

	"github.com/mercastore/product-catalog/internal/domain"
	"github.com/mercastore/product-catalog/internal/dto"
	pkgdto "github.com/mercastore/product-catalog/pkg/dto"
)

type ProductService interface {
	AddProduct(ctx context.Context, req dto.ProductRequest) (product domain.Product, err error)
	GetProducts(ctx context.Context, filter pkgdto.Filter) (data []domain.Product, pagination pkgdto.Pagination, err error)
	UpdateProduct(ctx context.Context, id string, req dto.ProductUpdateRequest) (product domain.Product, err error)
	DeleteProduct(ctx context.Context, id string) (err error)
	UploadProductImage(ctx context.Context, file *multipart.FileHeader) (image string, err error)
}
