package get_health

import (
	"net/http"

	"github.com/m04kA/CUP-SyncService/internal/api/handlers"
)

// BreakerReporter источник состояния circuit breaker'а внешнего API
type BreakerReporter interface {
	BreakerState() string
}

type Handler struct {
	ghl BreakerReporter
	cup BreakerReporter
}

func NewHandler(ghl, cup BreakerReporter) *Handler {
	return &Handler{
		ghl: ghl,
		cup: cup,
	}
}

// HealthResponse состояние сервиса и его внешних зависимостей
type HealthResponse struct {
	Status   string            `json:"status"`
	Breakers map[string]string `json:"breakers"`
}

// Handle GET /health
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Breakers: map[string]string{
			"gohighlevel": h.ghl.BreakerState(),
			"cupsolidale": h.cup.BreakerState(),
		},
	}

	// Открытый breaker означает деградацию, а не смерть сервиса
	for _, state := range resp.Breakers {
		if state == "open" {
			resp.Status = "degraded"
			break
		}
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}
