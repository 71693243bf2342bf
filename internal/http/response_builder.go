// Package http serves the back-office UI and its JSON endpoints.
//
// This file implements a small builder for JSON responses so every
// endpoint sets content type, status and extra headers the same way.

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(b.statusCode)
	if b.body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// MutationResult is the envelope returned by JSON mutation endpoints.
type MutationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse creates a {"success":true} response.
func SuccessResponse() *JSONResponseBuilder {
	return NewJSONResponse().Body(MutationResult{Success: true})
}

// FailureResponse creates a {"success":false,"message":...} response.
func FailureResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(MutationResult{Success: false, Message: message})
}

// ErrorResponse creates an {"error":...} response for read endpoints.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(map[string]string{"error": message})
}

// DatabaseError is the read-endpoint answer when the store fails.
func DatabaseError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, msgDatabaseError)
}
