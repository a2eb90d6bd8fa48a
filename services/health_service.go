package services

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/devkhadem/samsungonlineshop/cartstore"
)

// Serving states reported by HealthCheckService.
const (
	StatusServing    = "SERVING"
	StatusNotServing = "NOT_SERVING"
)

// HealthCheckService reports whether the slot backend is reachable.
type HealthCheckService struct {
	store cartstore.ICartStore
	log   logrus.FieldLogger
}

// NewHealthCheckService コンストラクタ
func NewHealthCheckService(store cartstore.ICartStore, log logrus.FieldLogger) *HealthCheckService {
	return &HealthCheckService{store: store, log: log}
}

// Check calls ICartStore.Ping and returns the serving status.
func (h *HealthCheckService) Check(ctx context.Context) string {
	if h.store.Ping(ctx) {
		return StatusServing
	}
	h.log.Warn("HealthCheckService: slot store not reachable")
	return StatusNotServing
}

// ServeHTTP answers 200 when serving and 503 otherwise.
func (h *HealthCheckService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.Check(r.Context())
	code := http.StatusOK
	if status != StatusServing {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
