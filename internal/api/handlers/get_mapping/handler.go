package get_mapping

import (
	"net/http"

	"github.com/m04kA/CUP-SyncService/internal/api/handlers"
)

type Handler struct {
	service MappingService
	logger  Logger
}

func NewHandler(service MappingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// MappingResponse текущая таблица разрешения с счетчиками
type MappingResponse struct {
	Calendars     map[string]string `json:"calendars"`
	Doctors       map[string]string `json:"doctors"`
	CalendarCount int               `json:"calendar_count"`
	DoctorCount   int               `json:"doctor_count"`
}

// Handle GET /webhook/mapping
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	table := h.service.Table()

	handlers.RespondJSON(w, http.StatusOK, MappingResponse{
		Calendars:     table.Calendars,
		Doctors:       table.Doctors,
		CalendarCount: len(table.Calendars),
		DoctorCount:   len(table.Doctors),
	})
}
