// Package client is a small API client for the product catalog service that
// keeps a local mirror of the last-fetched page. The mirror is
// non-authoritative: mutating calls patch it optimistically after a
// successful server response, and the next FetchProducts replaces it
// wholesale.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

type Product struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Pagination struct {
	TotalProducts int64 `json:"totalProducts"`
	TotalPages    int64 `json:"totalPages"`
	CurrentPage   int   `json:"currentPage"`
	HasMore       bool  `json:"hasMore"`
}

// ProductInput holds the writable product fields. Zero values are omitted on
// the wire, so a partially filled input acts as a partial update.
type ProductInput struct {
	Name  string  `json:"name,omitempty"`
	Price float64 `json:"price,omitempty"`
	Image string  `json:"image,omitempty"`
}

// Result is the uniform outcome of every call: no transport or decode error
// crosses this boundary as anything but Success=false with a message.
type Result struct {
	Success bool
	Message string
	Image   string
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu         sync.RWMutex
	products   []Product
	pagination Pagination
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		pagination: Pagination{CurrentPage: 1, TotalPages: 1},
	}
}

// Products returns a copy of the cached page.
func (c *Client) Products() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	products := make([]Product, len(c.products))
	copy(products, c.products)
	return products
}

func (c *Client) Pagination() Pagination {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.pagination
}

// GetProduct looks a product up in the cached page only; it never hits the
// server.
func (c *Client) GetProduct(id string) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, product := range c.products {
		if product.ID == id {
			return product, true
		}
	}
	return Product{}, false
}

func (c *Client) FetchProducts(ctx context.Context, page int, limit int, search string) Result {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	if search != "" {
		query.Set("search", search)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/products?"+query.Encode(), nil)
	if err != nil {
		return Result{Success: false, Message: "Failed to fetch products"}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{Success: false, Message: "Failed to fetch products"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Success: false, Message: fmt.Sprintf("Server error: %d", resp.StatusCode)}
	}

	var payload struct {
		Data       []Product  `json:"data"`
		Pagination Pagination `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{Success: false, Message: "Invalid server response"}
	}

	c.mu.Lock()
	c.products = payload.Data
	c.pagination = payload.Pagination
	c.mu.Unlock()

	return Result{Success: true}
}

func (c *Client) CreateProduct(ctx context.Context, input ProductInput) Result {
	if input.Name == "" || input.Image == "" || input.Price == 0 {
		return Result{Success: false, Message: "please fill all fields"}
	}

	product, result := c.sendProduct(ctx, http.MethodPost, c.baseURL+"/api/products", input, http.StatusCreated)
	if !result.Success {
		return result
	}

	// Appended at the end of the local page even though the server orders
	// newest first; the next fetch restores the authoritative order.
	c.mu.Lock()
	c.products = append(c.products, product)
	c.mu.Unlock()

	return Result{Success: true, Message: "product created successfully"}
}

func (c *Client) UpdateProduct(ctx context.Context, id string, input ProductInput) Result {
	product, result := c.sendProduct(ctx, http.MethodPut, c.baseURL+"/api/products/"+id, input, http.StatusOK)
	if !result.Success {
		return result
	}

	c.mu.Lock()
	for i := range c.products {
		if c.products[i].ID == id {
			c.products[i] = product
		}
	}
	c.mu.Unlock()

	return Result{Success: true, Message: "Product updated successfully"}
}

func (c *Client) DeleteProduct(ctx context.Context, id string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/products/"+id, nil)
	if err != nil {
		return Result{Success: false, Message: "Failed to delete product"}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{Success: false, Message: "Failed to delete product"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Success: false, Message: fmt.Sprintf("Server error: %d", resp.StatusCode)}
	}

	c.mu.Lock()
	kept := c.products[:0]
	for _, product := range c.products {
		if product.ID != id {
			kept = append(kept, product)
		}
	}
	c.products = kept
	c.mu.Unlock()

	return Result{Success: true, Message: "Product deleted successfully"}
}

func (c *Client) UploadImage(ctx context.Context, filename string, content io.Reader) Result {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filepath.Base(filename)))
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return Result{Success: false, Message: "Failed to upload image"}
	}
	if _, err := io.Copy(part, content); err != nil {
		return Result{Success: false, Message: "Failed to upload image"}
	}
	if err := writer.Close(); err != nil {
		return Result{Success: false, Message: "Failed to upload image"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/products/upload", &body)
	if err != nil {
		return Result{Success: false, Message: "Failed to upload image"}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{Success: false, Message: "Failed to upload image"}
	}
	defer resp.Body.Close()

	var payload struct {
		Success bool   `json:"success"`
		Image   string `json:"image"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{Success: false, Message: "Invalid server response"}
	}

	if !payload.Success || payload.Image == "" {
		message := payload.Message
		if message == "" {
			message = fmt.Sprintf("Server error: %d", resp.StatusCode)
		}
		return Result{Success: false, Message: message}
	}

	return Result{Success: true, Image: payload.Image}
}

func (c *Client) sendProduct(ctx context.Context, method string, url string, input ProductInput, wantStatus int) (Product, Result) {
	reqBody, err := json.Marshal(input)
	if err != nil {
		return Product{}, Result{Success: false, Message: "Invalid product"}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return Product{}, Result{Success: false, Message: "Failed to send product"}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Product{}, Result{Success: false, Message: "Failed to send product"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return Product{}, Result{Success: false, Message: fmt.Sprintf("Server error: %d", resp.StatusCode)}
	}

	var payload struct {
		Data Product `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Data.ID == "" {
		return Product{}, Result{Success: false, Message: "Invalid server response"}
	}

	return payload.Data, Result{Success: true}
}
