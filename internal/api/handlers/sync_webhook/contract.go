package sync_webhook

import (
	"context"

	"github.com/m04kA/CUP-SyncService/internal/domain"
	syncservice "github.com/m04kA/CUP-SyncService/internal/service/sync"
)

type SyncService interface {
	HandleEvent(ctx context.Context, event *domain.WebhookEvent) *syncservice.SyncResult
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
