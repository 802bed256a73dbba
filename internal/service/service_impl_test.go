package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/mercastore/product-catalog/internal/domain"
	"github.com/mercastore/product-catalog/internal/dto"
	"github.com/mercastore/product-catalog/internal/repository"
	pkgdto "github.com/mercastore/product-catalog/pkg/dto"
	"github.com/mercastore/product-catalog/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeProductRepository is an in-memory stand-in for the mongo repository.
// Its listing behavior mirrors the filter the mongo impl builds: newest
// first, case-insensitive name substring or exact price, then skip/limit.
type fakeProductRepository struct {
	products []domain.Product
	calls    int
}

func (r *fakeProductRepository) AddProduct(ctx context.Context, data domain.Product) (primitive.ObjectID, error) {
	r.calls++
	data.ID = primitive.NewObjectID()
	r.products = append(r.products, data)
	return data.ID, nil
}

func (r *fakeProductRepository) GetProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int64, error) {
	r.calls++

	var matched []domain.Product
	for _, product := range r.products {
		if filter.Name != "" {
			nameMatch := strings.Contains(strings.ToLower(product.Name), strings.ToLower(filter.Name))
			priceMatch := filter.Price != nil && product.Price == *filter.Price
			if !nameMatch && !priceMatch {
				continue
			}
		}
		matched = append(matched, product)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filter.Skip >= total {
		return nil, total, nil
	}

	matched = matched[filter.Skip:]
	if int64(len(matched)) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	return matched, total, nil
}

func (r *fakeProductRepository) UpdateProduct(ctx context.Context, id primitive.ObjectID, update domain.ProductUpdate) (domain.Product, error) {
	r.calls++

	for i, product := range r.products {
		if product.ID != id {
			continue
		}
		if update.Name != nil {
			product.Name = *update.Name
		}
		if update.Price != nil {
			product.Price = *update.Price
		}
		if update.Image != nil {
			product.Image = *update.Image
		}
		product.UpdatedAt = time.Now().UTC()
		r.products[i] = product
		return product, nil
	}

	return domain.Product{}, errs.ErrNotFound
}

func (r *fakeProductRepository) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	r.calls++

	for i, product := range r.products {
		if product.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}

	return errs.ErrNotFound
}

type fakeArtifactStorage struct {
	saved []string
}

func (s *fakeArtifactStorage) SaveArtifact(ctx context.Context, originalName string, content io.Reader) (string, error) {
	s.saved = append(s.saved, originalName)
	return "1700000000000-abcd1234-" + originalName, nil
}

func newTestService(repo *fakeProductRepository) ProductService {
	return CreateProductService(repo, &fakeArtifactStorage{})
}

func seedProducts(t *testing.T, svc ProductService, requests []dto.ProductRequest) []domain.Product {
	t.Helper()

	var products []domain.Product
	for _, req := range requests {
		product, err := svc.AddProduct(context.Background(), req)
		require.NoError(t, err)
		products = append(products, product)
	}
	return products
}

func TestAddProduct_Validation(t *testing.T) {
	testCases := []struct {
		Name    string
		Request dto.ProductRequest
	}{
		{Name: "Missing name", Request: dto.ProductRequest{Price: 10, Image: "/uploads/a.png"}},
		{Name: "Missing image", Request: dto.ProductRequest{Name: "Widget", Price: 10}},
		{Name: "Zero price", Request: dto.ProductRequest{Name: "Widget", Image: "/uploads/a.png"}},
		{Name: "Negative price", Request: dto.ProductRequest{Name: "Widget", Price: -1, Image: "/uploads/a.png"}},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			repo := &fakeProductRepository{}
			svc := newTestService(repo)

			_, err := svc.AddProduct(context.Background(), tc.Request)

			assert.ErrorIs(t, err, errs.ErrValidation)
			assert.Empty(t, repo.products, "nothing may persist on a validation failure")
		})
	}
}

func TestAddProduct_AssignsDistinctIDs(t *testing.T) {
	repo := &fakeProductRepository{}
	svc := newTestService(repo)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		product, err := svc.AddProduct(context.Background(), dto.ProductRequest{
			Name:  fmt.Sprintf("Widget %d", i),
			Price: 10,
			Image: "/uploads/a.png",
		})
		require.NoError(t, err)
		require.False(t, product.ID.IsZero())
		require.False(t, seen[product.ID.Hex()], "id must be distinct from all prior ids")
		seen[product.ID.Hex()] = true
		assert.False(t, product.CreatedAt.IsZero())
		assert.Equal(t, product.CreatedAt, product.UpdatedAt)
	}
}

func TestGetProducts_SearchSemantics(t *testing.T) {
	repo := &fakeProductRepository{}
	svc := newTestService(repo)
	seedProducts(t, svc, []dto.ProductRequest{
		{Name: "Item42", Price: 10, Image: "/uploads/a.png"},
		{Name: "Widget", Price: 42, Image: "/uploads/b.png"},
		{Name: "Widget", Price: 420, Image: "/uploads/c.png"},
		{Name: "Gadget", Price: 7, Image: "/uploads/d.png"},
	})

	data, pagination, err := svc.GetProducts(context.Background(), pkgdto.Filter{Search: "42"})
	require.NoError(t, err)

	// Substring match on name, exact match on parsed price. price=420 must
	// NOT match "42".
	require.Len(t, data, 2)
	assert.Equal(t, int64(2), pagination.TotalProducts)
	names := []string{data[0].Name, data[1].Name}
	assert.Contains(t, names, "Item42")

	var prices []float64
	for _, product := range data {
		prices = append(prices, product.Price)
	}
	assert.NotContains(t, prices, float64(420))
}

func TestGetProducts_SearchCaseInsensitive(t *testing.T) {
	repo := &fakeProductRepository{}
	svc := newTestService(repo)
	seedProducts(t, svc, []dto.ProductRequest{
		{Name: "Blue Chair", Price: 30, Image: "/uploads/a.png"},
		{Name: "Red Table", Price: 55, Image: "/uploads/b.png"},
	})

	data, _, err := svc.GetProducts(context.Background(), pkgdto.Filter{Search: "CHAIR"})
	require.NoError(t, err)
	require.Len(t, data, 1)
	assert.Equal(t, "Blue Chair", data[0].Name)
}

func TestGetProducts_NonIntegerTermSkipsPriceBranch(t *testing.T) {
	repo := &fakeProductRepository{}
	svc := newTestService(repo)
	seedProducts(t, svc, []dto.ProductRequest{
		{Name: "Widget", Price: 42.5, Image: "/uploads/a.png"},
	})

	data, _, err := svc.GetProducts(context.Background(), pkgdto.Filter{Search: "42.5"})
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestGetProducts_Pagination(t *testing.T) {
	repo := &fakeProductRepository{}
	svc := newTestService(repo)

	for i := 0; i < 13; i++ {
		// Distinct createdAt values keep the newest-first order deterministic.
		repo.products = append(repo.products, domain.Product{
			ID:        primitive.NewObjectID(),
			Name:      fmt.Sprintf("Widget %d", i),
			Price:     10,
			Image:     "/uploads/a.png",
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		})
	}

	data, pagination, err := svc.GetProducts(context.Background(), pkgdto.Filter{Page: 1, Limit: 6})
	require.NoError(t, err)
	assert.Len(t, data, 6)
	assert.Equal(t, int64(13), pagination.TotalProducts)
	assert.Equal(t, int64(3), pagination.TotalPages)
	assert.Equal(t, 1, pagination.CurrentPage)
	assert.True(t, pagination.HasMore)

	data, pagination, err = svc.GetProducts(context.Background(), pkgdto.Filter{Page: 3, Limit: 6})
	require.NoError(t, err)
	assert.Len(t, data, 1)
	assert.False(t, pagination.HasMore)
}

func TestGetProducts_Defaults(t *testing.T) {
	repo := &fakeProductRepository{}
	svc := newTestService(repo)

	for i := 0; i < 10; i++ {
		repo.products = append(repo.products, domain.Product{
			ID:        primitive.NewObjectID(),
			Name:      fmt.Sprintf("Widget %d", i),
			Price:     10,
			Image:     "/uploads/a.png",
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		})
	}

	// page unset and page<1 both fall back to page 1, limit unset to 6.
	data, pagination, err := svc.GetProducts(context.Background(), pkgdto.Filter{Page: -3})
	require.NoError(t, err)
	assert.Len(t, data, 6)
	assert.Equal(t, 1, pagination.CurrentPage)
}

func TestGetProducts_NewestFirst(t *testing.T) {
	repo := &fakeProductRepository{}
	svc := newTestService(repo)

	oldest := domain.Product{ID: primitive.NewObjectID(), Name: "Old", Price: 1, Image: "/uploads/a.png", CreatedAt: time.Now().UTC().Add(-time.Hour)}
	newest := domain.Product{ID: primitive.NewObjectID(), Name: "New", Price: 1, Image: "/uploads/b.png", CreatedAt: time.Now().UTC()}
	repo.products = append(repo.products, oldest, newest)

	data, _, err := svc.GetProducts(context.Background(), pkgdto.Filter{})
	require.NoError(t, err)
	require.Len(t, data, 2)
	assert.Equal(t, "New", data[0].Name)
}

func TestUpdateProduct_InvalidID(t *testing.T) {
	repo := &fakeProductRepository{}
	svc := newTestService(repo)

	name := "Widget"
	_, err := svc.UpdateProduct(context.Background(), "not-a-hex-id", dto.ProductUpdateRequest{Name: &name})

	assert.ErrorIs(t, err, errs.ErrInvalidID)
	assert.Zero(t, repo.calls, "a malformed id must be rejected before any store access")
}

func TestUpdateProduct_NotFound(t *testing.T) {
	repo := &fakeProductRepository{}
	svc := newTestService(repo)

	name := "Widget"
	_, err := svc.UpdateProduct(context.Background(), primitive.NewObjectID().Hex(), dto.ProductUpdateRequest{Name: &name})

	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateProduct_PartialMerge(t *testing.T) {
	repo := &fakeProductRepository{}
	svc := newTestService(repo)
	seeded := seedProducts(t, svc, []dto.ProductRequest{
		{Name: "Widget", Price: 10, Image: "/uploads/a.png"},
	})

	price := 25.0
	updated, err := svc.UpdateProduct(context.Background(), seeded[0].ID.Hex(), dto.ProductUpdateRequest{Price: &price})
	require.NoError(t, err)

	assert.Equal(t, "Widget", updated.Name)
	assert.Equal(t, 25.0, updated.Price)
	assert.Equal(t, "/uploads/a.png", updated.Image)
}

func TestUpdateProduct_EmptyFieldRejected(t *testing.T) {
	repo := &fakeProductRepository{}
	svc := newTestService(repo)
	seeded := seedProducts(t, svc, []dto.ProductRequest{
		{Name: "Widget", Price: 10, Image: "/uploads/a.png"},
	})

	empty := ""
	_, err := svc.UpdateProduct(context.Background(), seeded[0].ID.Hex(), dto.ProductUpdateRequest{Name: &empty})

	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestDeleteProduct_SecondDeleteNotFound(t *testing.T) {
	repo := &fakeProductRepository{}
	svc := newTestService(repo)
	seeded := seedProducts(t, svc, []dto.ProductRequest{
		{Name: "Widget", Price: 10, Image: "/uploads/a.png"},
	})

	id := seeded[0].ID.Hex()
	require.NoError(t, svc.DeleteProduct(context.Background(), id))

	err := svc.DeleteProduct(context.Background(), id)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDeleteProduct_MalformedID(t *testing.T) {
	repo := &fakeProductRepository{}
	svc := newTestService(repo)

	err := svc.DeleteProduct(context.Background(), "nope")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func buildFileHeader(t *testing.T, filename string, contentType string, size int) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), size))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	_, fileHeader, err := req.FormFile("image")
	require.NoError(t, err)
	return fileHeader
}

func TestUploadProductImage(t *testing.T) {
	testCases := []struct {
		Name        string
		Filename    string
		ContentType string
		Size        int
		WantErr     error
	}{
		{Name: "Valid png", Filename: "cat.png", ContentType: "image/png", Size: 128},
		{Name: "Uppercase extension", Filename: "cat.JPG", ContentType: "image/jpeg", Size: 128},
		{Name: "Disallowed extension", Filename: "notes.txt", ContentType: "text/plain", Size: 128, WantErr: errs.ErrInvalidFileType},
		{Name: "Renamed text file", Filename: "notes.jpg", ContentType: "text/plain", Size: 128, WantErr: errs.ErrInvalidFileType},
		{Name: "Oversized payload", Filename: "big.png", ContentType: "image/png", Size: 6000000, WantErr: errs.ErrFileTooLarge},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			storage := &fakeArtifactStorage{}
			svc := CreateProductService(&fakeProductRepository{}, storage)

			fileHeader := buildFileHeader(t, tc.Filename, tc.ContentType, tc.Size)
			image, err := svc.UploadProductImage(context.Background(), fileHeader)

			if tc.WantErr != nil {
				assert.ErrorIs(t, err, tc.WantErr)
				assert.Empty(t, storage.saved, "a rejected upload must not persist")
				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(image, "/uploads/"))
			assert.Len(t, storage.saved, 1)
		})
	}
}

func TestUploadProductImage_NoFile(t *testing.T) {
	svc := newTestService(&fakeProductRepository{})

	_, err := svc.UploadProductImage(context.Background(), nil)
	assert.ErrorIs(t, err, errs.ErrNoFile)
}
