// internal/delivery/http/server.go
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"storefront-bot/internal/core/domain/payment"
	"storefront-bot/pkg/logger"
)

// StatusQuerier отвечает на запрос статуса платежа
type StatusQuerier interface {
	QueryStatus(ctx context.Context, paymentID string) payment.Snapshot
}

// HealthCheck проверка одной зависимости
type HealthCheck func(ctx context.Context) error

// Server служебный HTTP сервер: здоровье, метрики, статус депозита
type Server struct {
	srv    *http.Server
	logger *logger.Logger
}

// NewServer создает сервер
func NewServer(addr string, deposits StatusQuerier, metrics http.Handler, checks map[string]HealthCheck, log *logger.Logger) *Server {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(deposits, metrics, checks),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: log,
	}
}

// NewRouter собирает маршруты
func NewRouter(deposits StatusQuerier, metrics http.Handler, checks map[string]HealthCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(15 * time.Second))

	r.Get("/healthz", healthHandler(checks))
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	r.Get("/deposits/{paymentID}", depositHandler(deposits))

	return r
}

type snapshotResponse struct {
	PaymentID    string    `json:"payment_id"`
	Status       string    `json:"status"`
	ChecksDone   int       `json:"checks_done"`
	MaxChecks    int       `json:"max_checks"`
	Amount       int       `json:"requested_amount"`
	ActualAmount *int      `json:"actual_amount,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func depositHandler(deposits StatusQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paymentID := chi.URLParam(r, "paymentID")
		snap := deposits.QueryStatus(r.Context(), paymentID)
		if !snap.Found {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "deposit not found"})
			return
		}
		writeJSON(w, http.StatusOK, snapshotResponse{
			PaymentID:    snap.PaymentID,
			Status:       string(snap.Status),
			ChecksDone:   snap.ChecksDone,
			MaxChecks:    snap.MaxChecks,
			Amount:       snap.Amount,
			ActualAmount: snap.ActualAmount,
			CreatedAt:    snap.CreatedAt,
		})
	}
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := make(map[string]string, len(checks))
		code := http.StatusOK
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				result[name] = err.Error()
				code = http.StatusServiceUnavailable
				continue
			}
			result[name] = "ok"
		}
		status := "ok"
		if code != http.StatusOK {
			status = "degraded"
		}
		writeJSON(w, code, map[string]interface{}{"status": status, "checks": result})
	}
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// Start запускает сервер в фоне
func (s *Server) Start() {
	go func() {
		s.logger.Info("🌐 HTTP сервер слушает %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("❌ Ошибка HTTP сервера: %v", err)
		}
	}()
}

// Stop останавливает сервер
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
