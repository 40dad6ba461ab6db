// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by all endpoints. Every
// failure is an ErrorResponse with a stable code; fail() logs 5xx responses
// with the request-scoped logger so they can be correlated by request id.
//
// Example error response:
//
//	HTTP/1.1 400 Bad Request
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "invalid_number",
//	  "message": "number should be greater than 0"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-code-generator/internal/domain"
	"github.com/tbourn/go-code-generator/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"resource not found"`
}

// GenerationFailedResponse is returned when a generation request ended with
// codes that could not be persisted. The request record is included so the
// client can see what did get stored.
type GenerationFailedResponse struct {
	ErrorResponse
	Request       *domain.GenerationRequest `json:"generation_request,omitempty"`
	NotPersisted  int64                     `json:"not_persisted" example:"10000"`
	FailedBatches int                       `json:"failed_batches" example:"1"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	failWith(c, status, ErrorResponse{Code: code, Message: msg})
}

// failWith aborts with a custom envelope. body must embed or be an
// ErrorResponse; its RequestID is filled from the response header.
func failWith(c *gin.Context, status int, body any) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	var code, msg string
	switch b := body.(type) {
	case ErrorResponse:
		b.RequestID = reqID
		code, msg, body = b.Code, b.Message, b
	case GenerationFailedResponse:
		b.RequestID = reqID
		code, msg, body = b.Code, b.Message, b
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, body)
}

// Fail is the exported variant of fail() for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
