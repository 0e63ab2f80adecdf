package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"linentrack/internal/access"
	"linentrack/internal/domain"
	"linentrack/internal/dto"
	apperrors "linentrack/internal/errors"
	"linentrack/internal/order/usecase"
	"linentrack/internal/spreadsheet"
)

const maxBulkOrders = 500

type OrderQueries interface {
	List(ctx context.Context, f usecase.Filter) ([]domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
}

type OrderCommands interface {
	Create(ctx context.Context, fields domain.OrderFields) (*domain.Order, error)
	AdvanceStage(ctx context.Context, id string, change domain.StageChange) (*domain.Order, error)
	BulkAdvance(ctx context.Context, ids []string, change domain.StageChange) (*dto.BatchResult, error)
	PurgeAll(ctx context.Context) (*dto.BatchResult, error)
}

type OrderImporter interface {
	Import(ctx context.Context, r io.Reader) (*dto.ImportResult, error)
}

type OrderController struct {
	queries        OrderQueries
	commands       OrderCommands
	importer       OrderImporter
	schema         *spreadsheet.Schema
	logger         *zap.Logger
	maxUploadBytes int64
}

func NewOrderController(queries OrderQueries, commands OrderCommands, importer OrderImporter, schema *spreadsheet.Schema, logger *zap.Logger, maxUploadBytes int64) *OrderController {
	return &OrderController{
		queries:        queries,
		commands:       commands,
		importer:       importer,
		schema:         schema,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// requestLogger tags the handler log with a fresh trace id and the session.
func (c *OrderController) requestLogger(r *http.Request) (string, *zap.Logger) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))
	if s, ok := access.FromContext(r.Context()); ok {
		logger = logger.With(zap.String("sessionId", s.ID), zap.String("role", string(s.Role)))
	}
	return traceID, logger
}

func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
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

	out := make([]dto.OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderDTO(o))
	}

	c.writeJSON(w, http.StatusOK, dto.ListOrdersResponse{
		TraceID: traceID,
		Total:   len(out),
		Orders:  out,
	})
}

func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.requestLogger(r)
	orderID := chi.URLParam(r, "orderId")

	order, err := c.queries.Get(r.Context(), orderID)
	if err != nil {
		c.handleUseCaseError(w, traceID, orderID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.OrderResponse{TraceID: traceID, Order: toOrderDTO(*order)})
}

func (c *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.requestLogger(r)

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeInvalidBody(w, traceID)
		return
	}

	if req.Quantity < 0 {
		c.writeValidationError(w, traceID, "validation failed", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be non-negative",
		})
		return
	}

	order, err := c.commands.Create(r.Context(), domain.OrderFields{
		ClientName:    req.ClientName,
		ProductName:   req.ProductName,
		Quantity:      req.Quantity,
		Unit:          req.Unit,
		Color:         req.Color,
		YarnType:      req.YarnType,
		Weight:        req.Weight,
		WorkSite:      req.WorkSite,
		Manager:       req.Manager,
		Contact:       req.Contact,
		OrderType:     req.OrderType,
		OrderDate:     req.OrderDate,
		DeliveryDate:  req.DeliveryDate,
		DeliveryTo:    req.DeliveryTo,
		EmailSentDate: req.EmailSentDate,
		Note:          req.Note,
	})
	if err != nil {
		c.handleUseCaseError(w, traceID, "", err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, dto.OrderResponse{TraceID: traceID, Order: toOrderDTO(*order)})
}

func (c *OrderController) AdvanceStage(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.requestLogger(r)
	orderID := chi.URLParam(r, "orderId")

	var req dto.AdvanceStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeInvalidBody(w, traceID)
		return
	}

	order, err := c.commands.AdvanceStage(r.Context(), orderID, stageChange(req))
	if err != nil {
		c.handleUseCaseError(w, traceID, orderID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.OrderResponse{TraceID: traceID, Order: toOrderDTO(*order)})
}

func (c *OrderController) BulkAdvance(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.requestLogger(r)

	var req dto.BulkAdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeInvalidBody(w, traceID)
		return
	}

	var details []apperrors.ValidationDetail
	if len(req.OrderIDs) == 0 {
		details = append(details, apperrors.ValidationDetail{Field: "orderIds", Message: "orderIds must not be empty"})
	}
	if len(req.OrderIDs) > maxBulkOrders {
		details = append(details, apperrors.ValidationDetail{Field: "orderIds", Message: "orderIds exceeds maximum of 500"})
	}
	for _, id := range req.OrderIDs {
		if strings.TrimSpace(id) == "" {
			details = append(details, apperrors.ValidationDetail{Field: "orderIds", Message: "each orderId must be non-empty"})
			break
		}
	}
	if len(details) > 0 {
		c.writeValidationError(w, traceID, "validation failed", details...)
		return
	}

	result, err := c.commands.BulkAdvance(r.Context(), req.OrderIDs, stageChange(req.AdvanceStageRequest))
	if err != nil {
		c.handleUseCaseError(w, traceID, "", err, logger)
		return
	}

	c.writeBatchResponse(w, traceID, result)
}

// PurgeOrders deletes the whole collection. The caller must pass
// confirm=true.
func (c *OrderController) PurgeOrders(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.requestLogger(r)

	if r.URL.Query().Get("confirm") != "true" {
		c.writeValidationError(w, traceID, "purge not confirmed", apperrors.ValidationDetail{
			Field:   "confirm",
			Message: "confirm=true is required to delete every order",
		})
		return
	}

	logger.Warn("purge of all orders requested")

	result, err := c.commands.PurgeAll(r.Context())
	if err != nil {
		c.handleUseCaseError(w, traceID, "", err, logger)
		return
	}

	c.writeBatchResponse(w, traceID, result)
}

func filterFromQuery(r *http.Request) (usecase.Filter, error) {
	q := r.URL.Query()
	var statuses []string
	for _, s := range q["status"] {
		statuses = append(statuses, strings.Split(s, ",")...)
	}
	return usecase.ParseFilter(q.Get("from"), q.Get("to"), statuses, q.Get("q"))
}

func stageChange(req dto.AdvanceStageRequest) domain.StageChange {
	return domain.StageChange{
		Status:         domain.Stage(req.Status),
		StageDate:      req.StageDate,
		ShippingMethod: req.ShippingMethod,
		ShippingDest:   req.ShippingDestName,
	}
}

func toOrderDTO(o domain.Order) dto.OrderDTO {
	return dto.OrderDTO{
		ID:               o.ID,
		ClientName:       o.ClientName,
		ProductName:      o.ProductName,
		Quantity:         o.Quantity,
		Unit:             o.Unit,
		Color:            o.Color,
		YarnType:         o.YarnType,
		Weight:           o.Weight,
		WorkSite:         o.WorkSite,
		Manager:          o.Manager,
		Contact:          o.Contact,
		OrderType:        o.OrderType,
		OrderDate:        o.OrderDate,
		DeliveryDate:     o.DeliveryDate,
		DeliveryTo:       o.DeliveryTo,
		EmailSentDate:    o.EmailSentDate,
		Status:           string(o.Status),
		StatusLabel:      o.Status.Label(),
		Progress:         o.Status.Progress(),
		WeavingDate:      o.WeavingDate,
		DyeingDate:       o.DyeingDate,
		SewingDate:       o.SewingDate,
		ShippingDate:     o.ShippingDate,
		ShippingMethod:   o.ShippingMethod,
		ShippingDestName: o.ShippingDestName,
		Note:             o.Note,
		LastUpdated:      o.LastUpdated,
	}
}
