package sync_webhook

import (
	"net/http"

	"github.com/m04kA/CUP-SyncService/internal/api/handlers"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
)

type Handler struct {
	service SyncService
	logger  Logger
}

func NewHandler(service SyncService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /webhook/cup-solidale
//
// 200 - событие обработано, 422 - событие распознано, но синхронизация
// провалилась (тело содержит детали), 400 - конверт не разбирается
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /webhook/cup-solidale - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	event, err := req.ToDomainEvent()
	if err != nil {
		h.logger.Warn("POST /webhook/cup-solidale - Malformed event %q: %v", req.EventType, err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result := h.service.HandleEvent(r.Context(), event)

	if !result.Success {
		h.logger.Warn("POST /webhook/cup-solidale - Event %s failed: %s", req.EventType, result.Error)
		handlers.RespondJSON(w, http.StatusUnprocessableEntity, FromSyncResult(result))
		return
	}

	h.logger.Info("POST /webhook/cup-solidale - Event %s processed: contact=%s event=%s",
		req.EventType, result.ContactID, result.EventID)
	handlers.RespondJSON(w, http.StatusOK, FromSyncResult(result))
}
