package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mercastore/product-catalog/internal/dto"
	"github.com/mercastore/product-catalog/internal/service"
	pkgdto "github.com/mercastore/product-catalog/pkg/dto"
	"github.com/mercastore/product-catalog/pkg/errs"
	"github.com/mercastore/product-catalog/pkg/response"
	"github.com/rs/zerolog/log"
)

type Controller struct {
	service service.ProductService
}

func CreateProductController(e *echo.Group, service service.ProductService) {
	c := Controller{
		service: service,
	}
	e.POST("/products", c.AddProduct)
	e.GET("/products", c.GetProducts)
	e.PUT("/products/:id", c.UpdateProduct)
	e.DELETE("/products/:id", c.DeleteProduct)
	// The body limit sits above the 5MB artifact ceiling so the size check in
	// the service owns the rejection, while the limit still bounds what a
	// request may stream at all. Requests the limit itself cuts off are
	// translated from echo's 413 to the upload contract's 400.
	e.POST("/products/upload", c.UploadImage, translateBodyLimitError, middleware.BodyLimit("8M"))
}

func translateBodyLimitError(next echo.HandlerFunc) echo.HandlerFunc {
	return func(e echo.Context) error {
		err := next(e)
		if httpErr, ok := err.(*echo.HTTPError); ok && httpErr.Code == http.StatusRequestEntityTooLarge {
			return response.WriteUploadErrorResponse(e, errs.ErrFileTooLarge)
		}
		return err
	}
}

func (c *Controller) AddProduct(e echo.Context) error {
	payload := dto.ProductRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "AddProduct").Msg("")
	}

	if payload.Name == "" || payload.Price <= 0 || payload.Image == "" {
		return response.WriteErrorResponse(e, errs.ErrValidation)
	}

	product, err := c.service.AddProduct(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err)
	}

	return response.WriteDataResponse(e, http.StatusCreated, product)
}

func (c *Controller) GetProducts(e echo.Context) error {
	filter := pkgdto.Filter{}
	err := e.Bind(&filter)
	if err != nil {
		log.Error().Err(err).Str("component", "GetProducts").Msg("")
	}

	data, pagination, err := c.service.GetProducts(e.Request().Context(), filter)
	if err != nil {
		return response.WriteErrorResponse(e, err)
	}

	return response.WriteDataWithPaginationResponse(e, data, pagination)
}

func (c *Controller) UpdateProduct(e echo.Context) error {
	id := e.Param("id")
	payload := dto.ProductUpdateRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "UpdateProduct").Msg("")
	}

	product, err := c.service.UpdateProduct(e.Request().Context(), id, payload)
	if err != nil {
		return response.WriteErrorResponse(e, err)
	}

	return response.WriteDataResponse(e, http.StatusOK, product)
}

func (c *Controller) DeleteProduct(e echo.Context) error {
	id := e.Param("id")
	err := c.service.DeleteProduct(e.Request().Context(), id)
	if err != nil {
		return response.WriteErrorResponse(e, err)
	}

	return response.WriteMessageResponse(e, "Product removed")
}

func (c *Controller) UploadImage(e echo.Context) error {
	file, err := e.FormFile("image")
	if err != nil {
		return response.WriteUploadErrorResponse(e, errs.ErrNoFile)
	}

	image, err := c.service.UploadProductImage(e.Request().Context(), file)
	if err != nil {
		return response.WriteUploadErrorResponse(e, err)
	}

	return response.WriteUploadSuccessResponse(e, image)
}
