package repository

import (
	"context"
	"regexp"
	"time"

	"github.com/mercastore/product-catalog/internal/domain"
	"github.com/mercastore/product-catalog/pkg/errs"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDBProductRepositoryImpl struct {
	db *mongo.Database
}

func CreateNewMongoDBRepository(db *mongo.Database) ProductRepository {
	return &MongoDBProductRepositoryImpl{db: db}
}

func (r *MongoDBProductRepositoryImpl) AddProduct(ctx context.Context, data domain.Product) (id primitive.ObjectID, err error) {
	result, err := r.db.Collection("products").InsertOne(ctx, data)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "AddProduct").Msg("")
		return
	}

	return result.InsertedID.(primitive.ObjectID), err
}

// buildListFilter matches a name substring case-insensitively, or the exact
// price when the service resolved the term to a number. Text is substring,
// price is equality; the two are intentionally asymmetric.
func buildListFilter(filter ProductFilter) bson.D {
	if filter.Name == "" {
		return bson.D{}
	}

	or := bson.A{
		bson.D{{Key: "name", Value: primitive.Regex{Pattern: regexp.QuoteMeta(filter.Name), Options: "i"}}},
	}
	if filter.Price != nil {
		or = append(or, bson.D{{Key: "price", Value: *filter.Price}})
	}

	return bson.D{{Key: "$or", Value: or}}
}

func (r *MongoDBProductRepositoryImpl) GetProducts(ctx context.Context, filter ProductFilter) (data []domain.Product, total int64, err error) {
	listFilter := buildListFilter(filter)

	total, err = r.db.Collection("products").CountDocuments(ctx, listFilter)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetProducts").Msg("")
		return
	}

	// Newest first. No secondary sort key: records created within the same
	// timestamp granularity come back in store order.
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(filter.Skip).
		SetLimit(filter.Limit)

	cursor, err := r.db.Collection("products").Find(ctx, listFilter, opts)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetProducts").Msg("")
		return
	}

	if err = cursor.All(ctx, &data); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetProducts").Msg("")
		return
	}

	return data, total, nil
}

func (r *MongoDBProductRepositoryImpl) UpdateProduct(ctx context.Context, id primitive.ObjectID, update domain.ProductUpdate) (product domain.Product, err error) {
	set := bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}
	if update.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *update.Name})
	}
	if update.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *update.Price})
	}
	if update.Image != nil {
		set = append(set, bson.E{Key: "image", Value: *update.Image})
	}

	filter := bson.D{{Key: "_id", Value: id}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	err = r.db.Collection("products").FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}}, opts).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return product, errs.ErrNotFound
		}
		log.Ctx(ctx).Error().Err(err).Str("component", "UpdateProduct").Msg("Failed to update product")
		return
	}

	return product, nil
}

func (r *MongoDBProductRepositoryImpl) DeleteProduct(ctx context.Context, id primitive.ObjectID) (err error) {
	filter := bson.D{{Key: "_id", Value: id}}

	result, err := r.db.Collection("products").DeleteOne(ctx, filter)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "DeleteProduct").Msg("")
		return
	}

	if result.DeletedCount == 0 {
		return errs.ErrNotFound
	}

	return
}
