package dto

import (
	"errors"
	"strings"
)

// Validation errors
var (
	ErrEmptyContent   = errors.New("content cannot be empty")
	ErrEmptyQuery     = errors.New("query cannot be empty")
	ErrContentTooLong = errors.New("content exceeds maximum length (16MB)")
)

// MaxContentLength caps ingest payloads to prevent abuse.
const MaxContentLength = 16 * 1024 * 1024

// IngestRequest carries one master analysis file.
type IngestRequest struct {
	Content string `json:"content" binding:"required"`
}

// Validate performs validation on IngestRequest.
func (r *IngestRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return ErrEmptyContent
	}
	if len(r.Content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// SearchRequest is a hybrid retrieval query.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit,omitempty"`
}

// Validate performs validation on SearchRequest.
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrEmptyQuery
	}
	return nil
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
