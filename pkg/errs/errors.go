package errs

import (
	"errors"
	"net/http"
)

const (
	ErrStatusInternalServer = http.StatusInternalServerError
	ErrStatusClient         = http.StatusBadRequest
	ErrStatusNotFound       = http.StatusNotFound
)

var (
	ErrInternalServer  = errors.New("Server Error")
	ErrValidation      = errors.New("All fields are required")
	ErrInvalidID       = errors.New("Invalid product id")
	ErrNotFound        = errors.New("Product not found")
	ErrNoFile          = errors.New("No file uploaded")
	ErrInvalidFileType = errors.New("Images only (jpeg, jpg, png, gif, webp)")
	ErrFileTooLarge    = errors.New("File too large. Maximum size is 5MB.")
)

var errorMap = map[error]int{
	ErrInternalServer:  ErrStatusInternalServer,
	ErrValidation:      ErrStatusClient,
	ErrInvalidID:       ErrStatusClient,
	ErrNotFound:        ErrStatusNotFound,
	ErrNoFile:          ErrStatusClient,
	ErrInvalidFileType: ErrStatusClient,
	ErrFileTooLarge:    ErrStatusClient,
}

func GetErrorStatusCode(err error) int {
	errStatusCode, ok := errorMap[err]
	if !ok {
		errStatusCode = errorMap[ErrInternalServer]
	}
	return errStatusCode
}
