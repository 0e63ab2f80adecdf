package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"linentrack/internal/domain"
	"linentrack/internal/dto"
	apperrors "linentrack/internal/errors"
	"linentrack/internal/order/usecase"
	"linentrack/internal/spreadsheet"
)

// Mock implementations
type mockQueries struct {
	ListFunc func(ctx context.Context, f usecase.Filter) ([]domain.Order, error)
	GetFunc  func(ctx context.Context, id string) (*domain.Order, error)
}

func (m *mockQueries) List(ctx context.Context, f usecase.Filter) ([]domain.Order, error) {
	return m.ListFunc(ctx, f)
}

func (m *mockQueries) Get(ctx context.Context, id string) (*domain.Order, error) {
	return m.GetFunc(ctx, id)
}

type mockCommands struct {
	CreateFunc       func(ctx context.Context, fields domain.OrderFields) (*domain.Order, error)
	AdvanceStageFunc func(ctx context.Context, id string, change domain.StageChange) (*domain.Order, error)
	BulkAdvanceFunc  func(ctx context.Context, ids []string, change domain.StageChange) (*dto.BatchResult, error)
	PurgeAllFunc     func(ctx context.Context) (*dto.BatchResult, error)
}

func (m *mockCommands) Create(ctx context.Context, fields domain.OrderFields) (*domain.Order, error) {
	return m.CreateFunc(ctx, fields)
}

func (m *mockCommands) AdvanceStage(ctx context.Context, id string, change domain.StageChange) (*domain.Order, error) {
	return m.AdvanceStageFunc(ctx, id, change)
}

func (m *mockCommands) BulkAdvance(ctx context.Context, ids []string, change domain.StageChange) (*dto.BatchResult, error) {
	return m.BulkAdvanceFunc(ctx, ids, change)
}

func (m *mockCommands) PurgeAll(ctx context.Context) (*dto.BatchResult, error) {
	return m.PurgeAllFunc(ctx)
}

type mockImporter struct {
	ImportFunc func(ctx context.Context, r io.Reader) (*dto.ImportResult, error)
}

func (m *mockImporter) Import(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	return m.ImportFunc(ctx, r)
}

// Helper to build a router around a controller with test defaults
func newTestRouter(q *mockQueries, c *mockCommands, i *mockImporter) http.Handler {
	if q == nil {
		q = &mockQueries{}
	}
	if c == nil {
		c = &mockCommands{}
	}
	if i == nil {
		i = &mockImporter{}
	}
	ctrl := NewOrderController(q, c, i, spreadsheet.DefaultSchema(), zap.NewNop(), 1<<20)

	r := chi.NewRouter()
	r.Get("/orders", ctrl.ListOrders)
	r.Get("/orders/export", ctrl.ExportOrders)
	r.Get("/orders/import/template", ctrl.ImportTemplate)
	r.Get("/orders/{orderId}", ctrl.GetOrder)
	r.Post("/orders", ctrl.CreateOrder)
	r.Post("/orders/import", ctrl.ImportOrders)
	r.Put("/orders/{orderId}/stage", ctrl.AdvanceStage)
	r.Post("/orders/stage", ctrl.BulkAdvance)
	r.Delete("/orders", ctrl.PurgeOrders)
	return r
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func dyeingOrder() *domain.Order {
	return &domain.Order{ID: "o-1", ClientName: "ABC물산", ProductName: "린넨", Status: domain.StageDyeing, DyeingDate: "2024-03-04"}
}

// Tests

func TestListOrders_PassesFilter(t *testing.T) {
	var got usecase.Filter
	q := &mockQueries{
		ListFunc: func(ctx context.Context, f usecase.Filter) ([]domain.Order, error) {
			got = f
			return []domain.Order{*dyeingOrder()}, nil
		},
	}

	rec := do(t, newTestRouter(q, nil, nil), http.MethodGet, "/orders?from=2024-03-01&status=DYEING&status=%EC%A0%9C%EC%A7%81%EA%B3%B5%EC%A0%95,SEWING&q=%EB%A6%B0", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "2024-03-01", domain.FormatDate(*got.From))
	assert.Nil(t, got.To)
	assert.Equal(t, []domain.Stage{domain.StageDyeing, domain.StageWeaving, domain.StageSewing}, got.Statuses)
	assert.Equal(t, "린", got.Text)

	var resp dto.ListOrdersResponse
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp.TraceID)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "염색공정", resp.Orders[0].StatusLabel)
	assert.Equal(t, 0.6, resp.Orders[0].Progress)
}

func TestListOrders_InvalidFilter(t *testing.T) {
	rec := do(t, newTestRouter(nil, nil, nil), http.MethodGet, "/orders?status=PACKING", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrders_StoreUnreachable(t *testing.T) {
	q := &mockQueries{
		ListFunc: func(ctx context.Context, f usecase.Filter) ([]domain.Order, error) {
			return nil, apperrors.NewConnectivityError("order store unreachable", errors.New("dial tcp"))
		},
	}

	rec := do(t, newTestRouter(q, nil, nil), http.MethodGet, "/orders", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp dto.ErrorResponse
	decode(t, rec, &resp)
	assert.Equal(t, "STORE_UNREACHABLE", resp.Code)
}

func TestGetOrder(t *testing.T) {
	q := &mockQueries{
		GetFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			if id == "o-1" {
				return dyeingOrder(), nil
			}
			return nil, apperrors.NewNotFoundError("order with id " + id + " not found")
		},
	}
	h := newTestRouter(q, nil, nil)

	rec := do(t, h, http.MethodGet, "/orders/o-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.OrderResponse
	decode(t, rec, &resp)
	assert.Equal(t, "o-1", resp.Order.ID)
	assert.Equal(t, "2024-03-04", resp.Order.DyeingDate)

	rec = do(t, h, http.MethodGet, "/orders/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var errResp dto.ErrorResponse
	decode(t, rec, &errResp)
	assert.Equal(t, "missing", errResp.OrderID)
}

func TestCreateOrder(t *testing.T) {
	var got domain.OrderFields
	c := &mockCommands{
		CreateFunc: func(ctx context.Context, fields domain.OrderFields) (*domain.Order, error) {
			got = fields
			if fields.ClientName == "" {
				return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: "clientName", Message: "clientName is required"})
			}
			o := domain.NewOrder(fields, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
			o.ID = "new-id"
			return &o, nil
		},
	}
	h := newTestRouter(nil, c, nil)

	rec := do(t, h, http.MethodPost, "/orders", bytes.NewBufferString(`{"clientName":"ABC물산","productName":"린넨","quantity":300,"unit":"yds","deliveryTo":"성수동"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "성수동", got.DeliveryTo)

	var resp dto.OrderResponse
	decode(t, rec, &resp)
	assert.Equal(t, "new-id", resp.Order.ID)
	assert.Equal(t, "RECEIPT_RECORDED", resp.Order.Status)
	assert.Equal(t, "발주접수", resp.Order.StatusLabel)

	rec = do(t, h, http.MethodPost, "/orders", bytes.NewBufferString(`{"productName":"린넨"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var ve validationErrorResponse
	decode(t, rec, &ve)
	assert.Equal(t, "clientName", ve.Details[0].Field)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/orders", bytes.NewBufferString(`{"clientName":`)).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/orders", bytes.NewBufferString(`{"clientName":"a","productName":"b","quantity":-1}`)).Code)
}

func TestAdvanceStage(t *testing.T) {
	var gotID string
	var gotChange domain.StageChange
	c := &mockCommands{
		AdvanceStageFunc: func(ctx context.Context, id string, change domain.StageChange) (*domain.Order, error) {
			gotID, gotChange = id, change
			if change.Status == domain.StageReceiptRecorded {
				return nil, apperrors.NewConflictError("order o-1 is already SHIPPED")
			}
			o := dyeingOrder()
			o.Status = domain.StageShipped
			o.ShippingMethod = change.ShippingMethod
			return o, nil
		},
	}
	h := newTestRouter(nil, c, nil)

	rec := do(t, h, http.MethodPut, "/orders/o-1/stage", bytes.NewBufferString(`{"status":"SHIPPED","stageDate":"2024-03-09","shippingMethod":"택배","shippingDestName":"부산"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "o-1", gotID)
	assert.Equal(t, domain.StageChange{Status: domain.StageShipped, StageDate: "2024-03-09", ShippingMethod: "택배", ShippingDest: "부산"}, gotChange)

	rec = do(t, h, http.MethodPut, "/orders/o-1/stage", bytes.NewBufferString(`{"status":"RECEIPT_RECORDED"}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBulkAdvance(t *testing.T) {
	c := &mockCommands{
		BulkAdvanceFunc: func(ctx context.Context, ids []string, change domain.StageChange) (*dto.BatchResult, error) {
			return dto.NewBatchResult(len(ids)-1, []dto.ItemFailure{{ID: ids[len(ids)-1], Reason: dto.ReasonNotFound, Message: "not found"}}), nil
		},
	}
	h := newTestRouter(nil, c, nil)

	rec := do(t, h, http.MethodPost, "/orders/stage", bytes.NewBufferString(`{"orderIds":["a","b","c"],"status":"SEWING"}`))
	require.Equal(t, http.StatusPartialContent, rec.Code)

	var resp dto.BatchResponse
	decode(t, rec, &resp)
	assert.Equal(t, "PARTIAL", resp.Status)
	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, "c", resp.Failures[0].OrderID)
	assert.Equal(t, "NOT_FOUND", resp.Failures[0].Reason)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/orders/stage", bytes.NewBufferString(`{"orderIds":[],"status":"SEWING"}`)).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/orders/stage", bytes.NewBufferString(`{"orderIds":["a"," "],"status":"SEWING"}`)).Code)
}

func TestPurgeOrders(t *testing.T) {
	calls := 0
	c := &mockCommands{
		PurgeAllFunc: func(ctx context.Context) (*dto.BatchResult, error) {
			calls++
			return dto.NewBatchResult(4, nil), nil
		},
	}
	h := newTestRouter(nil, c, nil)

	rec := do(t, h, http.MethodDelete, "/orders", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, calls)

	rec = do(t, h, http.MethodDelete, "/orders?confirm=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)

	var resp dto.BatchResponse
	decode(t, rec, &resp)
	assert.Equal(t, "ALL_SUCCESS", resp.Status)
	assert.Equal(t, 4, resp.Succeeded)
	assert.NotNil(t, resp.Failures)
}

func multipartUpload(t *testing.T, field string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "orders.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestImportOrders(t *testing.T) {
	var received []byte
	i := &mockImporter{
		ImportFunc: func(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
			received, _ = io.ReadAll(r)
			return &dto.ImportResult{
				Batch:          dto.NewBatchResult(3, nil),
				Skipped:        1,
				Warnings:       []dto.ImportWarning{{Row: 2, Column: "quantity", Message: "cannot parse"}},
				IgnoredColumns: []string{"진행상태"},
			}, nil
		},
	}
	h := newTestRouter(nil, nil, i)

	body, contentType := multipartUpload(t, "file", []byte("workbook-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/orders/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte("workbook-bytes"), received)

	var resp dto.ImportResponse
	decode(t, rec, &resp)
	assert.Equal(t, 3, resp.Succeeded)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, []string{"진행상태"}, resp.IgnoredColumns)
	assert.Equal(t, "quantity", resp.Warnings[0].Column)
}

func TestImportOrders_MissingFile(t *testing.T) {
	h := newTestRouter(nil, nil, nil)

	body, contentType := multipartUpload(t, "upload", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/orders/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/orders/import", bytes.NewBufferString("plain"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportOrders(t *testing.T) {
	q := &mockQueries{
		ListFunc: func(ctx context.Context, f usecase.Filter) ([]domain.Order, error) {
			return []domain.Order{*dyeingOrder()}, nil
		},
	}

	rec := do(t, newTestRouter(q, nil, nil), http.MethodGet, "/orders/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "o-1", rows[1][0])
}

func TestImportTemplate(t *testing.T) {
	rec := do(t, newTestRouter(nil, nil, nil), http.MethodGet, "/orders/import/template", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	sheet, err := spreadsheet.ReadSheet(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "업체명", sheet.Headers[0])
}
