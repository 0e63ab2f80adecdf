package usecase

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"linentrack/internal/domain"
	"linentrack/internal/dto"
	apperrors "linentrack/internal/errors"
	"linentrack/internal/order/service"
	"linentrack/internal/spreadsheet"
)

type OrderWriter interface {
	Add(ctx context.Context, o domain.Order) (string, error)
}

type ImportOrdersUseCase struct {
	repo   OrderWriter
	schema *spreadsheet.Schema
	logger *zap.Logger
	now    func() time.Time
}

// NewImportOrdersUseCase returns an importer mapping columns through schema.
// A nil clock means time.Now.
func NewImportOrdersUseCase(repo OrderWriter, schema *spreadsheet.Schema, logger *zap.Logger, clock func() time.Time) *ImportOrdersUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &ImportOrdersUseCase{
		repo:   repo,
		schema: schema,
		logger: logger,
		now:    clock,
	}
}

// Import reads an xlsx upload and imports its first sheet.
func (uc *ImportOrdersUseCase) Import(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	sheet, err := spreadsheet.ReadSheet(r)
	if err != nil {
		return nil, apperrors.NewValidationError("file is not a readable xlsx workbook", apperrors.ValidationDetail{
			Field:   "file",
			Message: err.Error(),
		})
	}
	return uc.ImportRows(ctx, sheet)
}

// ImportRows creates one order per non-blank row, all in the initial stage.
// Values that do not parse are recovered and reported as warnings. A row
// the store rejects becomes a failure and the remaining rows still run.
func (uc *ImportOrdersUseCase) ImportRows(ctx context.Context, sheet *spreadsheet.Sheet) (*dto.ImportResult, error) {
	if sheet == nil || len(sheet.Headers) == 0 {
		return nil, apperrors.NewValidationError("sheet has no header row", apperrors.ValidationDetail{
			Field:   "file",
			Message: "the first row must hold the column headers",
		})
	}

	result := &dto.ImportResult{
		Warnings:       []dto.ImportWarning{},
		IgnoredColumns: uc.schema.Unknown(sheet.Headers),
	}
	if len(result.IgnoredColumns) > 0 {
		uc.logger.Warn("import ignores unknown columns", zap.Strings("columns", result.IgnoredColumns))
	}

	created := 0
	var failures []dto.ItemFailure

	for i, row := range sheet.Rows {
		rowNum := i + 1
		if row.Blank() {
			result.Skipped++
			continue
		}

		fields, problems := uc.schema.MapRow(row, sheet.NumericCells(i))
		for _, p := range problems {
			result.Warnings = append(result.Warnings, dto.ImportWarning{
				Row:     rowNum,
				Column:  p.Field,
				Message: p.Error(),
			})
		}

		id, err := uc.repo.Add(ctx, domain.NewOrder(fields, uc.now()))
		if err != nil {
			uc.logger.Warn("failed to import row", zap.Int("row", rowNum), zap.Error(err))
			failures = append(failures, dto.ItemFailure{
				Row:     rowNum,
				Reason:  service.FailureReason(err),
				Message: err.Error(),
			})
			continue
		}

		uc.logger.Debug("row imported", zap.Int("row", rowNum), zap.String("orderId", id))
		created++
	}

	result.Batch = dto.NewBatchResult(created, failures)

	uc.logger.Info("order import finished",
		zap.Int("created", created),
		zap.Int("failed", len(failures)),
		zap.Int("skipped", result.Skipped),
		zap.Int("warnings", len(result.Warnings)),
	)

	return result, nil
}
