package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/chillfilm/chillfilm-api/models"
	"github.com/chillfilm/chillfilm-api/utils"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SettingService defines the settings operations used by SettingHandler
type SettingService interface {
	List(ctx context.Context) ([]*models.Setting, error)
	Put(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error)
}

// SettingHandler handles site settings requests
type SettingHandler struct {
	settings SettingService
	logger   *zap.Logger
}

// NewSettingHandler creates a new SettingHandler
func NewSettingHandler(settings SettingService, logger *zap.Logger) *SettingHandler {
	return &SettingHandler{
		settings: settings,
		logger:   logger,
	}
}

// PutSettingRequest is the body of PUT /api/settings/{key}
type PutSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

// HandleList handles GET /api/settings. Settings are returned as a key -> value object.
func (h *SettingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.List(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	out := make(map[string]json.RawMessage, len(settings))
	for _, s := range settings {
		out[s.Key] = s.Value
	}
	writeOrLog(h.logger, utils.WriteOK(w, out))
}

// HandlePut handles PUT /api/settings/{key}
func (h *SettingHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	var req PutSettingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeOrLog(h.logger, utils.WriteBadRequest(w, "Invalid JSON body", nil))
		return
	}

	setting, err := h.settings.Put(r.Context(), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	writeOrLog(h.logger, utils.WriteMessage(w, "Setting updated successfully", setting))
}
