package handler

import "fmt"

// ErrorResponse is the error body shape for every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func NewErrorResponse(detail string) ErrorResponse {
	return ErrorResponse{Detail: detail}
}

func itemNotFound(id uint64) ErrorResponse {
	return NewErrorResponse(fmt.Sprintf("Item with ID %d not found", id))
}
