package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/chillfilm/chillfilm-api/services"
	"github.com/chillfilm/chillfilm-api/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	var domainErr *services.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error("unhandled error type", zap.Error(err))
		writeOrLog(logger, utils.WriteInternalServerError(w, "An unexpected error occurred"))
		return
	}

	message := domainErr.Message
	switch domainErr.Type {
	case services.ErrorTypeNotFound:
		writeOrLog(logger, utils.WriteNotFound(w, message))

	case services.ErrorTypeValidation:
		writeOrLog(logger, utils.WriteBadRequest(w, message, stringDetails(domainErr.Details)))

	case services.ErrorTypeUnauthorized:
		writeOrLog(logger, utils.WriteUnauthorized(w, message))

	case services.ErrorTypeForbidden:
		writeOrLog(logger, utils.WriteForbidden(w, message))

	case services.ErrorTypeConflict:
		writeOrLog(logger, utils.WriteConflict(w, message))

	default:
		// internal details stay in the log
		logger.Error("internal server error", zap.Error(err))
		writeOrLog(logger, utils.WriteInternalServerError(w, "An internal error occurred"))
		return
	}

	logger.Debug("handled service error",
		zap.String("type", string(domainErr.Type)),
		zap.String("message", domainErr.Message),
		zap.Any("details", domainErr.Details))
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		writeOrLog(logger, utils.WriteBadRequest(w, "Validation failed", utils.GetValidationFields(err)))
		return
	}
	writeOrLog(logger, utils.WriteBadRequest(w, err.Error(), nil))
}

func writeOrLog(logger *zap.Logger, err error) {
	if err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}

func stringDetails(details map[string]interface{}) map[string]string {
	if len(details) == 0 {
		return nil
	}
	out := make(map[string]string, len(details))
	for k, v := range details {
		out[k] = fmt.Sprint(v)
	}
	return out
}
