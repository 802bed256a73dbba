package service

import (
	"context"
	"mime/multipart"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mercastore/product-catalog/internal/domain"
	"github.com/mercastore/product-catalog/internal/dto"
	"github.com/mercastore/product-catalog/internal/infrastructure/storage"
	"github.com/mercastore/product-catalog/internal/repository"
	pkgdto "github.com/mercastore/product-catalog/pkg/dto"
	"github.com/mercastore/product-catalog/pkg/errs"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPageSize = 6
	MaxUploadSize   = 5000000 // 5MB
)

var allowedImageExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var allowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type ProductServiceImpl struct {
	repo    repository.ProductRepository
	storage storage.ArtifactStorage
}

func CreateProductService(repo repository.ProductRepository, storage storage.ArtifactStorage) ProductService {
	return &ProductServiceImpl{repo: repo, storage: storage}
}

func (s *ProductServiceImpl) AddProduct(ctx context.Context, req dto.ProductRequest) (product domain.Product, err error) {
	if req.Name == "" || req.Price <= 0 || req.Image == "" {
		return product, errs.ErrValidation
	}

	now := time.Now().UTC()
	product = domain.Product{
		Name:      req.Name,
		Price:     req.Price,
		Image:     req.Image,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.repo.AddProduct(ctx, product)
	if err != nil {
		return product, err
	}

	product.ID = id
	return product, nil
}

func (s *ProductServiceImpl) GetProducts(ctx context.Context, filter pkgdto.Filter) (data []domain.Product, pagination pkgdto.Pagination, err error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}

	limit := filter.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}

	repoFilter := repository.ProductFilter{
		Name:  filter.Search,
		Skip:  int64(page-1) * int64(limit),
		Limit: int64(limit),
	}

	// A search term only matches on price when the whole term parses as an
	// integer, and then only by exact equality. "420" does not match a price
	// of 42 and "42" does not match 420.
	if filter.Search != "" {
		if number, parseErr := strconv.Atoi(filter.Search); parseErr == nil {
			price := float64(number)
			repoFilter.Price = &price
		}
	}

	data, total, err := s.repo.GetProducts(ctx, repoFilter)
	if err != nil {
		return nil, pagination, err
	}

	if data == nil {
		data = []domain.Product{}
	}

	pagination = pkgdto.Pagination{
		TotalProducts: total,
		TotalPages:    (total + int64(limit) - 1) / int64(limit),
		CurrentPage:   page,
		HasMore:       repoFilter.Skip+int64(len(data)) < total,
	}

	return data, pagination, nil
}

func (s *ProductServiceImpl) UpdateProduct(ctx context.Context, id string, req dto.ProductUpdateRequest) (product domain.Product, err error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return product, errs.ErrInvalidID
	}

	if req.Name != nil && *req.Name == "" {
		return product, errs.ErrValidation
	}
	if req.Price != nil && *req.Price <= 0 {
		return product, errs.ErrValidation
	}
	if req.Image != nil && *req.Image == "" {
		return product, errs.ErrValidation
	}

	update := domain.ProductUpdate{
		Name:  req.Name,
		Price: req.Price,
		Image: req.Image,
	}

	return s.repo.UpdateProduct(ctx, objectID, update)
}

func (s *ProductServiceImpl) DeleteProduct(ctx context.Context, id string) (err error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id cannot match any record.
		return errs.ErrNotFound
	}

	return s.repo.DeleteProduct(ctx, objectID)
}

func (s *ProductServiceImpl) UploadProductImage(ctx context.Context, file *multipart.FileHeader) (image string, err error) {
	if file == nil {
		return "", errs.ErrNoFile
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExtensions[ext] {
		return "", errs.ErrInvalidFileType
	}

	contentType := file.Header.Get("Content-Type")
	if !allowedImageContentTypes[contentType] {
		return "", errs.ErrInvalidFileType
	}

	if file.Size > MaxUploadSize {
		return "", errs.ErrFileTooLarge
	}

	src, err := file.Open()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UploadProductImage").Msg("")
		return "", err
	}
	defer src.Close()

	name, err := s.storage.SaveArtifact(ctx, file.Filename, src)
	if err != nil {
		return "", err
	}

	return path.Join("/uploads", name), nil
}
