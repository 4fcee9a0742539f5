package appointments

import (
	"context"

	"github.com/m04kA/CUP-SyncService/internal/integrations/gohighlevel"
)

// CalendarClient операции GHL, нужные синхронизатору событий
type CalendarClient interface {
	CreateAppointment(ctx context.Context, req gohighlevel.CreateEventRequest) (string, error)
	UpdateAppointment(ctx context.Context, eventID string, req gohighlevel.UpdateEventRequest) error
	DeleteAppointment(ctx context.Context, eventID string) error
}

// Logger интерфейс логгера для синхронизатора событий
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
