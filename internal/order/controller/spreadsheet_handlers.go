package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"linentrack/internal/dto"
	apperrors "linentrack/internal/errors"
	"linentrack/internal/spreadsheet"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ImportOrders accepts a multipart upload with the workbook in the "file"
// field.
func (c *OrderController) ImportOrders(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.requestLogger(r)

	r.Body = http.MaxBytesReader(w, r.Body, c.maxUploadBytes)
	if err := r.ParseMultipartForm(c.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		msg := "request must be multipart/form-data with a file field"
		if errors.As(err, &tooLarge) {
			msg = fmt.Sprintf("file exceeds the maximum of %d bytes", c.maxUploadBytes)
		}
		logger.Warn("invalid upload", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid upload", apperrors.ValidationDetail{Field: "file", Message: msg})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		c.writeValidationError(w, traceID, "invalid upload", apperrors.ValidationDetail{
			Field:   "file",
			Message: "file is required",
		})
		return
	}
	defer file.Close()

	logger.Info("order import started", zap.String("filename", header.Filename), zap.Int64("size", header.Size))

	result, err := c.importer.Import(r.Context(), file)
	if err != nil {
		c.handleUseCaseError(w, traceID, "", err, logger)
		return
	}

	warnings := make([]dto.ImportWarningDTO, len(result.Warnings))
	for i, warn := range result.Warnings {
		warnings[i] = dto.ImportWarningDTO{Row: warn.Row, Column: warn.Column, Message: warn.Message}
	}
	ignored := result.IgnoredColumns
	if ignored == nil {
		ignored = []string{}
	}

	c.writeJSON(w, batchStatusCode(result.Batch), dto.ImportResponse{
		BatchResponse:  toBatchResponse(traceID, result.Batch),
		Skipped:        result.Skipped,
		Warnings:       warnings,
		IgnoredColumns: ignored,
	})
}

// ExportOrders writes the filtered listing as an xlsx download.
func (c *OrderController) ExportOrders(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.requestLogger(r)

	filter, err := filterFromQuery(r)
	if err != nil {
		c.handleUseCaseError(w, traceID, "", err, logger)
		return
	}

	orders, err := c.queries.List(r.Context(), filter)
	if err != nil {
		c.handleUseCaseError(w, traceID, "", err, logger)
		return
	}

	var buf bytes.Buffer
	if err := spreadsheet.WriteOrders(&buf, orders); err != nil {
		c.handleUseCaseError(w, traceID, "", apperrors.NewInternalError("writing export workbook", err), logger)
		return
	}

	logger.Info("orders exported", zap.Int("count", len(orders)))
	c.writeFile(w, fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102")), buf.Bytes())
}

// ImportTemplate serves an empty workbook with the import headers.
func (c *OrderController) ImportTemplate(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.requestLogger(r)

	var buf bytes.Buffer
	if err := spreadsheet.WriteTemplate(&buf, c.schema); err != nil {
		c.handleUseCaseError(w, traceID, "", apperrors.NewInternalError("writing import template", err), logger)
		return
	}
	c.writeFile(w, "order-import-template.xlsx", buf.Bytes())
}

func (c *OrderController) writeFile(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		c.logger.Error("failed to write file response", zap.Error(err))
	}
}
