package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"linentrack/internal/dto"
	apperrors "linentrack/internal/errors"
)

func (c *OrderController) handleUseCaseError(w http.ResponseWriter, traceID string, orderID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeErrorResponse(w, traceID, orderID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeErrorResponse(w, traceID, orderID, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	if _, ok := apperrors.IsForbiddenError(err); ok {
		c.writeErrorResponse(w, traceID, orderID, http.StatusForbidden, "FORBIDDEN", err.Error())
		return
	}

	if _, ok := apperrors.IsUnauthorizedError(err); ok {
		c.writeErrorResponse(w, traceID, orderID, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	if _, ok := apperrors.IsConnectivityError(err); ok {
		logger.Error("order store unreachable", zap.Error(err))
		c.writeErrorResponse(w, traceID, orderID, http.StatusServiceUnavailable, "STORE_UNREACHABLE", "the order store is unreachable, try again later")
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeErrorResponse(w, traceID, orderID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func batchStatusCode(result *dto.BatchResult) int {
	switch result.Status {
	case dto.BatchPartial:
		return http.StatusPartialContent
	case dto.BatchAllFailed:
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

func toBatchResponse(traceID string, result *dto.BatchResult) dto.BatchResponse {
	failures := make([]dto.ItemFailureDTO, len(result.Failures))
	for i, f := range result.Failures {
		failures[i] = dto.ItemFailureDTO{
			OrderID: f.ID,
			Row:     f.Row,
			Reason:  string(f.Reason),
			Message: f.Message,
		}
	}

	return dto.BatchResponse{
		TraceID:   traceID,
		Status:    string(result.Status),
		Succeeded: result.Succeeded,
		Failures:  failures,
		Timestamp: time.Now().UTC(),
	}
}

func (c *OrderController) writeBatchResponse(w http.ResponseWriter, traceID string, result *dto.BatchResult) {
	c.writeJSON(w, batchStatusCode(result), toBatchResponse(traceID, result))
}

func (c *OrderController) writeErrorResponse(w http.ResponseWriter, traceID string, orderID string, statusCode int, code string, message string) {
	c.writeJSON(w, statusCode, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    statusCode,
		Code:      code,
		Message:   message,
		OrderID:   orderID,
		Timestamp: time.Now().UTC(),
	})
}

type validationErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *OrderController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *OrderController) writeInvalidBody(w http.ResponseWriter, traceID string) {
	c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
		Field:   "body",
		Message: "request body must be valid JSON",
	})
}

func (c *OrderController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
