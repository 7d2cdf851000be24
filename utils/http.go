package utils

import (
	"encoding/json"
	"net/http"
)

// Response is the JSON envelope shared by every endpoint
type Response struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message,omitempty"`
	Data        interface{}       `json:"data,omitempty"`
	Pagination  *Pagination       `json:"pagination,omitempty"`
	Filters     interface{}       `json:"filters,omitempty"`
	Count       int               `json:"count,omitempty"`
	SearchQuery string            `json:"searchQuery,omitempty"`
	Errors      map[string]string `json:"errors,omitempty"`
}

// Pagination describes one page of a listing
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// NewPagination computes the pagination block for page (1-based) of size limit
func NewPagination(page, limit int, total int64) *Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 OK response with optional data
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

// WriteMessage writes a 200 OK response carrying a message and optional data
func WriteMessage(w http.ResponseWriter, message string, data interface{}) error {
	return WriteJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// WritePage writes a 200 OK listing with its pagination block
func WritePage(w http.ResponseWriter, data interface{}, pagination *Pagination) error {
	return WriteJSON(w, http.StatusOK, Response{Success: true, Data: data, Pagination: pagination})
}

// WriteCreated writes a 201 Created response with optional data
func WriteCreated(w http.ResponseWriter, message string, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// WriteNoContent writes a 204 No Content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteBadRequest writes a 400 Bad Request response with optional field errors
func WriteBadRequest(w http.ResponseWriter, message string, fields map[string]string) error {
	if message == "" {
		message = "Bad request"
	}
	return WriteJSON(w, http.StatusBadRequest, Response{Message: message, Errors: fields})
}

// WriteUnauthorized writes a 401 Unauthorized response
func WriteUnauthorized(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Authentication required"
	}
	return WriteJSON(w, http.StatusUnauthorized, Response{Message: message})
}

// WriteForbidden writes a 403 Forbidden response
func WriteForbidden(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Access forbidden"
	}
	return WriteJSON(w, http.StatusForbidden, Response{Message: message})
}

// WriteNotFound writes a 404 Not Found response
func WriteNotFound(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return WriteJSON(w, http.StatusNotFound, Response{Message: message})
}

// WriteConflict writes a 409 Conflict response
func WriteConflict(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Resource already exists"
	}
	return WriteJSON(w, http.StatusConflict, Response{Message: message})
}

// WriteTooManyRequests writes a 429 Too Many Requests response
func WriteTooManyRequests(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Rate limit exceeded"
	}
	return WriteJSON(w, http.StatusTooManyRequests, Response{Message: message})
}

// WriteInternalServerError writes a 500 Internal Server Error response
func WriteInternalServerError(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return WriteJSON(w, http.StatusInternalServerError, Response{Message: message})
}

// WriteError writes a failure envelope with an arbitrary status code
func WriteError(w http.ResponseWriter, status int, message string, fields map[string]string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	return WriteJSON(w, status, Response{Message: message, Errors: fields})
}
