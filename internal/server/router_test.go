package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linentrack/internal/access"
	"linentrack/internal/config"
	"linentrack/internal/order"
	"linentrack/internal/testutil"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := &config.Config{
		Server:   config.ServerConfig{MaxUploadBytes: 1 << 20},
		Database: config.DatabaseConfig{QueryTimeout: 5 * time.Second},
		Order:    config.OrderConfig{AllowRegression: true},
	}
	logger := zap.NewNop()
	orders := order.NewModule(db, cfg, logger)
	tokens := access.NewTokenIssuer("router-secret", time.Hour, "linentrack", nil)

	return NewRouter(RouterDeps{
		Orders:   orders.Controller,
		Sessions: access.NewSessionController(access.NewGate("client-code", "admin-code"), tokens, logger),
		Tokens:   tokens,
		Store:    orders.Store,
		Logger:   logger,
	})
}

func login(t *testing.T, h http.Handler, code string) string {
	t.Helper()
	return loginView(t, h, code, "")
}

func loginView(t *testing.T, h http.Handler, code, view string) string {
	t.Helper()
	rec := send(h, http.MethodPost, "/api/v1/sessions", "", `{"code":"`+code+`","view":"`+view+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func send(h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_RoleGatedOrderFlow(t *testing.T) {
	h := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, send(h, http.MethodGet, "/api/v1/orders", "", "").Code)

	client := login(t, h, "client-code")
	admin := login(t, h, "admin-code")

	rec := send(h, http.MethodPost, "/api/v1/orders", client, `{"clientName":"ABC물산","productName":"린넨"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = send(h, http.MethodPost, "/api/v1/orders", admin, `{"clientName":"ABC물산","productName":"린넨 60수","quantity":300,"orderDate":"2024-03-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Order struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.Order.ID)
	assert.Equal(t, "RECEIPT_RECORDED", created.Order.Status)

	rec = send(h, http.MethodPut, "/api/v1/orders/"+created.Order.ID+"/stage", admin, `{"status":"DYEING","stageDate":"2024-03-04"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = send(h, http.MethodGet, "/api/v1/orders?status=DYEING&q=%EB%A6%B0%EB%84%A8", client, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Total  int `json:"total"`
		Orders []struct {
			DyeingDate string  `json:"dyeingDate"`
			Progress   float64 `json:"progress"`
		} `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Equal(t, 1, listed.Total)
	assert.Equal(t, "2024-03-04", listed.Orders[0].DyeingDate)
	assert.Equal(t, 0.6, listed.Orders[0].Progress)

	assert.Equal(t, http.StatusForbidden, send(h, http.MethodDelete, "/api/v1/orders?confirm=true", client, "").Code)
	assert.Equal(t, http.StatusOK, send(h, http.MethodDelete, "/api/v1/orders?confirm=true", admin, "").Code)

	rec = send(h, http.MethodGet, "/api/v1/orders/"+created.Order.ID, client, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AdminLookupSessionIsReadOnly(t *testing.T) {
	h := newTestServer(t)
	lookup := loginView(t, h, "admin-code", "lookup")

	assert.Equal(t, http.StatusOK, send(h, http.MethodGet, "/api/v1/orders", lookup, "").Code)

	rec := send(h, http.MethodPost, "/api/v1/orders", lookup, `{"clientName":"ABC물산","productName":"린넨"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "lookup view")
}

func TestRouter_Healthz(t *testing.T) {
	h := newTestServer(t)

	rec := send(h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestHealthHandler_StoreDown(t *testing.T) {
	down := pingerFunc(func(ctx context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	healthHandler(down, zap.NewNop())(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unreachable")
}
