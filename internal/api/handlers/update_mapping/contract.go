package update_mapping

import (
	"context"

	"github.com/m04kA/CUP-SyncService/internal/domain"
)

type MappingService interface {
	Replace(table domain.MappingTable) error
}

// MappingStore долговременное хранилище таблицы разрешения
// nil, когда база данных выключена и таблица живет только в памяти
type MappingStore interface {
	ReplaceTable(ctx context.Context, table domain.MappingTable) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
