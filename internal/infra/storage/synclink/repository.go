package synclink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/CUP-SyncService/internal/domain"
	"github.com/m04kA/CUP-SyncService/pkg/psqlbuilder"
)

// Repository репозиторий связей пренотация <-> событие календаря (PostgreSQL)
// Durable-хранилище переживает рестарты процесса и является ключом
// идемпотентности между процессами.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get возвращает связь по id пренотации
func (r *Repository) Get(ctx context.Context, bookingID string) (*domain.BookingEventLink, error) {
	query, args, err := psqlbuilder.Select(
		"booking_id",
		"event_id",
		"contact_id",
		"calendar_id",
		"created_at",
	).
		From("booking_event_links").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var link domain.BookingEventLink
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&link.BookingID,
		&link.EventID,
		&link.ContactID,
		&link.CalendarID,
		&link.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("%w: Get - execute select: %v", ErrExecQuery, err)
	}

	return &link, nil
}

// Save сохраняет связь
// Upsert по booking_id: повторное сохранение обновляет событие, а не
// плодит второй ряд
func (r *Repository) Save(ctx context.Context, link *domain.BookingEventLink) error {
	query, args, err := psqlbuilder.Insert("booking_event_links").
		Columns("booking_id", "event_id", "contact_id", "calendar_id").
		Values(link.BookingID, link.EventID, link.ContactID, link.CalendarID).
		Suffix("ON CONFLICT (booking_id) DO UPDATE SET event_id = EXCLUDED.event_id, contact_id = EXCLUDED.contact_id, calendar_id = EXCLUDED.calendar_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Save - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Save - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// Delete удаляет связь по id пренотации
func (r *Repository) Delete(ctx context.Context, bookingID string) error {
	query, args, err := psqlbuilder.Delete("booking_event_links").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrLinkNotFound
	}
	return nil
}
