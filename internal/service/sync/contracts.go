package sync

import (
	"context"

	"github.com/m04kA/CUP-SyncService/internal/domain"
	"github.com/m04kA/CUP-SyncService/internal/infra/storage/synclog"
	"github.com/m04kA/CUP-SyncService/internal/service/contacts"
)

// LinkStore хранилище связей пренотация -> событие GHL
type LinkStore interface {
	Get(ctx context.Context, bookingID string) (*domain.BookingEventLink, error)
	Save(ctx context.Context, link *domain.BookingEventLink) error
	Delete(ctx context.Context, bookingID string) error
}

// SyncLogStore append-only журнал результатов синхронизации
type SyncLogStore interface {
	Append(ctx context.Context, entry synclog.Entry) error
}

// ContactReconciler разрешение пациентов в контакты GHL
type ContactReconciler interface {
	Reconcile(ctx context.Context, patient *domain.PatientRecord) (*contacts.Result, error)
	Upsert(ctx context.Context, patient *domain.PatientRecord) (*contacts.Result, error)
}

// EventSynchronizer операции над событиями календарей GHL
type EventSynchronizer interface {
	Create(ctx context.Context, booking *domain.BookingDetails, contactID, calendarID, assignedUserID string) (string, error)
	Update(ctx context.Context, eventID string, booking *domain.BookingDetails, calendarID, assignedUserID string) error
	Delete(ctx context.Context, eventID string) error
}

// IdentityResolver преобразование идентификаторов CUP в идентификаторы GHL
type IdentityResolver interface {
	ResolveCalendar(serviceID, siteID, category string) (string, error)
	ResolveUser(doctorID string) (string, error)
}

// MetricsRecorder счетчики обработанных событий
type MetricsRecorder interface {
	IncSyncEvent(eventType, status string)
}

// Logger интерфейс логгера для диспетчера синхронизации
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
