package repository

import (
	"context"

	"github.com/mercastore/product-catalog/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductFilter is the resolved listing query: the service layer has already
// defaulted the page/limit and decided whether the search term doubles as a
// price equality match.
type ProductFilter struct {
	Name  string
	Price *float64
	Skip  int64
	Limit int64
}

type ProductRepository interface {
	AddProduct(ctx context.Context, data domain.Product) (id primitive.ObjectID, err error)
	GetProducts(ctx context.Context, filter ProductFilter) (data []domain.Product, total int64, err error)
	UpdateProduct(ctx context.Context, id primitive.ObjectID, update domain.ProductUpdate) (product domain.Product, err error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) (err error)
}
