package synclog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/CUP-SyncService/pkg/psqlbuilder"
)

var (
	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("synclog.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("synclog.repository: failed to execute query")
)

// Entry запись журнала синхронизации
type Entry struct {
	SyncType        string // cup_to_ghl
	EntityType      string // booking | contact
	EntityID        string
	Action          string // create | update | delete | sync
	Status          string // success | error
	ErrorMessage    *string
	ExecutionTimeMs int64
}

// DBExecutor интерфейс для выполнения SQL запросов
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Repository append-only журнал синхронизации (PostgreSQL)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория журнала
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append добавляет запись в журнал
// Вызывающий не должен проваливать обработку webhook'а из-за ошибки записи
func (r *Repository) Append(ctx context.Context, entry Entry) error {
	query, args, err := psqlbuilder.Insert("sync_logs").
		Columns("id", "sync_type", "entity_type", "entity_id", "action", "status", "error_message", "execution_time_ms").
		Values(
			uuid.NewString(),
			entry.SyncType,
			entry.EntityType,
			entry.EntityID,
			entry.Action,
			entry.Status,
			entry.ErrorMessage,
			entry.ExecutionTimeMs,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Append - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Append - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}
