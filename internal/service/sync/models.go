package sync

import "github.com/m04kA/CUP-SyncService/internal/domain"

// SyncResult итог обработки одного webhook-события.
// Диспетчер всегда возвращает результат: любая ошибка обработки
// превращается в Success=false с текстом в Error.
type SyncResult struct {
	Success        bool
	EventType      domain.EventType
	ContactID      string
	EventID        string
	ContactCreated bool
	EventCreated   bool
	EventUpdated   bool
	EventDeleted   bool
	Error          string
}

func successResult(eventType domain.EventType) *SyncResult {
	return &SyncResult{Success: true, EventType: eventType}
}

func failureResult(eventType domain.EventType, err error) *SyncResult {
	return &SyncResult{EventType: eventType, Error: err.Error()}
}
