package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{"message": "test"}

		err := WriteJSON(w, http.StatusOK, data)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "test", response["message"])
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusNoContent, nil)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteOK(w, map[string]string{"result": "success"}))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "success", resp.Data.(map[string]interface{})["result"])
	assert.Nil(t, resp.Pagination)
}

func TestWritePage(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WritePage(w, []int{1, 2}, NewPagination(2, 2, 5)))

	resp := decode(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasNextPage)
	assert.True(t, resp.Pagination.HasPrevPage)
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name               string
		page, limit        int
		total              int64
		wantPages          int
		wantNext, wantPrev bool
	}{
		{"empty", 1, 20, 0, 0, false, false},
		{"single page", 1, 20, 20, 1, false, false},
		{"first of many", 1, 20, 41, 3, true, false},
		{"last page", 3, 20, 41, 3, false, true},
		{"zero limit", 1, 0, 10, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantNext, p.HasNextPage)
			assert.Equal(t, tt.wantPrev, p.HasPrevPage)
			assert.Equal(t, tt.total, p.TotalItems)
		})
	}
}

func TestWriteCreated(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteCreated(w, "Movie created", map[string]string{"id": "123"}))

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Movie created", resp.Message)
	assert.Equal(t, "123", resp.Data.(map[string]interface{})["id"])
}

func TestWriteNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	WriteNoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestWriteBadRequest(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteBadRequest(w, "Validation failed", map[string]string{"email": "invalid format"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Validation failed", resp.Message)
	assert.Equal(t, "invalid format", resp.Errors["email"])
}

func TestFailureWriters_DefaultMessages(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter) error
		wantStatus int
		wantMsg    string
	}{
		{"unauthorized", func(w http.ResponseWriter) error { return WriteUnauthorized(w, "") }, http.StatusUnauthorized, "Authentication required"},
		{"forbidden", func(w http.ResponseWriter) error { return WriteForbidden(w, "") }, http.StatusForbidden, "Access forbidden"},
		{"not found", func(w http.ResponseWriter) error { return WriteNotFound(w, "") }, http.StatusNotFound, "Resource not found"},
		{"conflict", func(w http.ResponseWriter) error { return WriteConflict(w, "") }, http.StatusConflict, "Resource already exists"},
		{"too many requests", func(w http.ResponseWriter) error { return WriteTooManyRequests(w, "") }, http.StatusTooManyRequests, "Rate limit exceeded"},
		{"internal", func(w http.ResponseWriter) error { return WriteInternalServerError(w, "") }, http.StatusInternalServerError, "Internal server error"},
		{"custom message kept", func(w http.ResponseWriter) error { return WriteForbidden(w, "Admin role required") }, http.StatusForbidden, "Admin role required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, tt.write(w))

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantMsg, resp.Message)
		})
	}
}

func TestFailureEnvelope_Shape(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteForbidden(w, "You do not have permission to delete movies"))

	assert.JSONEq(t, `{"success":false,"message":"You do not have permission to delete movies"}`, w.Body.String())
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		want    string
	}{
		{"explicit message", http.StatusBadRequest, "Invalid input", "Invalid input"},
		{"falls back to status text", http.StatusTeapot, "", "I'm a teapot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			require.NoError(t, WriteError(w, tt.status, tt.message, nil))

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.want, resp.Message)
		})
	}
}
