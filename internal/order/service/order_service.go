package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"linentrack/internal/domain"
	"linentrack/internal/dto"
	apperrors "linentrack/internal/errors"
)

type OrderRepository interface {
	Add(ctx context.Context, o domain.Order) (string, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Order, error)
}

// OrderService applies every mutation of the order lifecycle: creation,
// stage changes and the admin purge.
type OrderService struct {
	repo            OrderRepository
	logger          *zap.Logger
	allowRegression bool
	now             func() time.Time
}

// NewOrderService returns a service that moves orders to any stage when
// allowRegression is set and refuses backward moves otherwise. A nil clock
// means time.Now.
func NewOrderService(repo OrderRepository, logger *zap.Logger, allowRegression bool, clock func() time.Time) *OrderService {
	if clock == nil {
		clock = time.Now
	}
	return &OrderService{
		repo:            repo,
		logger:          logger,
		allowRegression: allowRegression,
		now:             clock,
	}
}

func (s *OrderService) Create(ctx context.Context, fields domain.OrderFields) (*domain.Order, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	order := domain.NewOrder(fields, s.now())

	id, err := s.repo.Add(ctx, order)
	if err != nil {
		s.logger.Error("failed to store order", zap.String("clientName", order.ClientName), zap.Error(err))
		return nil, err
	}
	order.ID = id

	s.logger.Info("order created",
		zap.String("orderId", id),
		zap.String("clientName", order.ClientName),
		zap.String("productName", order.ProductName),
	)

	return &order, nil
}

// AdvanceStage moves one order to change.Status and persists the stage
// columns.
func (s *OrderService) AdvanceStage(ctx context.Context, id string, change domain.StageChange) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	update, err := domain.AdvanceStage(order, change, s.now())
	if err != nil {
		return nil, err
	}

	if !s.allowRegression && previous.Valid() && update.Status.Index() < previous.Index() {
		return nil, apperrors.NewConflictError(fmt.Sprintf("order %s is already %s and cannot move back to %s", id, previous, update.Status))
	}

	if err := s.repo.Update(ctx, id, update.Columns()); err != nil {
		s.logger.Error("failed to update order stage", zap.String("orderId", id), zap.String("status", string(update.Status)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order stage changed",
		zap.String("orderId", id),
		zap.String("from", string(previous)),
		zap.String("to", string(update.Status)),
		zap.String("stageDate", update.StageDate),
	)

	return order, nil
}

// BulkAdvance applies the same stage change to each order in turn. An
// order that fails is reported and the rest still proceed. Only an invalid
// target stage rejects the whole request.
func (s *OrderService) BulkAdvance(ctx context.Context, ids []string, change domain.StageChange) (*dto.BatchResult, error) {
	stage, err := domain.ParseStage(string(change.Status))
	if err != nil {
		return nil, err
	}
	change.Status = stage

	seen := make(map[string]struct{}, len(ids))
	succeeded := 0
	var failures []dto.ItemFailure

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if _, err := s.AdvanceStage(ctx, id, change); err != nil {
			failures = append(failures, itemFailure(id, err))
			s.logger.Warn("bulk stage change failed for order", zap.String("orderId", id), zap.Error(err))
			continue
		}
		succeeded++
	}

	result := dto.NewBatchResult(succeeded, failures)
	s.logger.Info("bulk stage change finished",
		zap.String("status", string(stage)),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", len(result.Failures)),
	)

	return result, nil
}

// PurgeAll deletes every order one by one. A failed delete leaves that
// order in place and the loop continues.
func (s *OrderService) PurgeAll(ctx context.Context) (*dto.BatchResult, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	succeeded := 0
	var failures []dto.ItemFailure
	for _, o := range orders {
		if err := s.repo.Delete(ctx, o.ID); err != nil {
			failures = append(failures, itemFailure(o.ID, err))
			s.logger.Warn("failed to delete order", zap.String("orderId", o.ID), zap.Error(err))
			continue
		}
		succeeded++
	}

	s.logger.Warn("order collection purged", zap.Int("deleted", succeeded), zap.Int("failed", len(failures)))

	return dto.NewBatchResult(succeeded, failures), nil
}

func itemFailure(id string, err error) dto.ItemFailure {
	return dto.ItemFailure{
		ID:      id,
		Reason:  FailureReason(err),
		Message: err.Error(),
	}
}

// FailureReason classifies a per-item error of a bulk operation.
func FailureReason(err error) dto.FailureReason {
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return dto.ReasonNotFound
	}
	if _, ok := apperrors.IsValidationError(err); ok {
		return dto.ReasonInvalid
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		return dto.ReasonConflict
	}
	if _, ok := apperrors.IsConnectivityError(err); ok {
		return dto.ReasonUnreachable
	}
	return dto.ReasonStoreFailure
}
