package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mercastore/product-catalog/pkg/errs"
)

type DataResponse struct {
	Data interface{} `json:"data"`
}

type DataWithPaginationResponse struct {
	Data       interface{} `json:"data"`
	Pagination interface{} `json:"pagination"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UploadResponse struct {
	Success bool   `json:"success"`
	Image   string `json:"image,omitempty"`
	Message string `json:"message,omitempty"`
}

func WriteDataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, DataResponse{Data: data})
}

func WriteDataWithPaginationResponse(c echo.Context, data interface{}, pagination interface{}) error {
	return c.JSON(http.StatusOK, DataWithPaginationResponse{Data: data, Pagination: pagination})
}

func WriteMessageResponse(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: message})
}

// WriteErrorResponse maps the error through the errs taxonomy. Unknown errors
// come back as a generic 500 so that internal detail never reaches the client.
func WriteErrorResponse(c echo.Context, err error) error {
	statusCode := errs.GetErrorStatusCode(err)
	if statusCode == errs.ErrStatusInternalServer {
		err = errs.ErrInternalServer
	}
	return c.JSON(statusCode, MessageResponse{Message: err.Error()})
}

func WriteUploadSuccessResponse(c echo.Context, image string) error {
	return c.JSON(http.StatusOK, UploadResponse{Success: true, Image: image})
}

func WriteUploadErrorResponse(c echo.Context, err error) error {
	statusCode := errs.GetErrorStatusCode(err)
	if statusCode == errs.ErrStatusInternalServer {
		err = errs.ErrInternalServer
	}
	return c.JSON(statusCode, UploadResponse{Success: false, Message: err.Error()})
}
