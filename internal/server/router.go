package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"linentrack/internal/access"
	"linentrack/internal/order/controller"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterDeps struct {
	Orders   *controller.OrderController
	Sessions *access.SessionController
	Tokens   *access.TokenIssuer
	Store    Pinger
	Logger   *zap.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthHandler(deps.Store, deps.Logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", deps.Sessions.CreateSession)

		r.Group(func(r chi.Router) {
			r.Use(access.Authenticate(deps.Tokens, deps.Logger))

			r.Group(func(r chi.Router) {
				r.Use(access.RequireRole(deps.Logger, access.RoleClient, access.RoleAdmin))
				r.Get("/orders", deps.Orders.ListOrders)
				r.Get("/orders/export", deps.Orders.ExportOrders)
				r.Get("/orders/{orderId}", deps.Orders.GetOrder)
			})

			r.Group(func(r chi.Router) {
				r.Use(access.RequireRole(deps.Logger, access.RoleAdmin))
				r.Use(access.RequireView(deps.Logger, access.ViewEntry))
				r.Post("/orders", deps.Orders.CreateOrder)
				r.Delete("/orders", deps.Orders.PurgeOrders)
				r.Post("/orders/import", deps.Orders.ImportOrders)
				r.Get("/orders/import/template", deps.Orders.ImportTemplate)
				r.Post("/orders/stage", deps.Orders.BulkAdvance)
				r.Put("/orders/{orderId}/stage", deps.Orders.AdvanceStage)
			})
		})
	})

	return r
}

// RequestLogger logs one line per request with its outcome.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("requestId", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", time.Since(start)),
			}

			switch {
			case status >= 500:
				logger.Error("request failed", fields...)
			case status >= 400:
				logger.Warn("request rejected", fields...)
			default:
				logger.Info("request", fields...)
			}
		})
	}
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

func healthHandler(store Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Store: "ok"}
		status := http.StatusOK
		if err := store.Ping(r.Context()); err != nil {
			logger.Warn("health check: store ping failed", zap.Error(err))
			resp = healthResponse{Status: "degraded", Store: "unreachable"}
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("failed to encode response", zap.Error(err))
		}
	}
}
