package update_mapping

import (
	"net/http"

	"github.com/m04kA/CUP-SyncService/internal/api/handlers"
	"github.com/m04kA/CUP-SyncService/internal/domain"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTable       = "таблица маппинга должна содержать calendars и doctors"
)

type Handler struct {
	service MappingService
	store   MappingStore
	logger  Logger
}

func NewHandler(service MappingService, store MappingStore, logger Logger) *Handler {
	return &Handler{
		service: service,
		store:   store,
		logger:  logger,
	}
}

// UpdateMappingRequest новая таблица разрешения целиком
type UpdateMappingRequest struct {
	Calendars map[string]string `json:"calendars"`
	Doctors   map[string]string `json:"doctors"`
}

// Handle PUT /webhook/mapping
//
// Таблица заменяется целиком, частичного merge нет. При включенной базе
// новая таблица фиксируется в ней же, чтобы пережить рестарт.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req UpdateMappingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /webhook/mapping - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	table := domain.MappingTable{
		Calendars: req.Calendars,
		Doctors:   req.Doctors,
	}

	if err := h.service.Replace(table); err != nil {
		h.logger.Warn("PUT /webhook/mapping - Invalid table: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTable)
		return
	}

	if h.store != nil {
		if err := h.store.ReplaceTable(r.Context(), table); err != nil {
			h.logger.Error("PUT /webhook/mapping - Failed to persist table: %v", err)
			handlers.RespondInternalError(w)
			return
		}
	}

	h.logger.Info("PUT /webhook/mapping - Table replaced: %d calendars, %d doctors",
		len(table.Calendars), len(table.Doctors))
	handlers.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
