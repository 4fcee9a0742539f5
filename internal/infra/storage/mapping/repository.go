package mapping

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/CUP-SyncService/internal/domain"
	"github.com/m04kA/CUP-SyncService/pkg/psqlbuilder"
)

// Repository репозиторий entity mappings (PostgreSQL)
type Repository struct {
	db *sql.DB
}

// NewRepository создает новый экземпляр репозитория маппингов
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// LoadTable собирает таблицу разрешения из активных строк entity_mappings
// Ключом calendars становится cup_id любой строки с calendar_id,
// ключом doctors - cup_id строки с user_id
func (r *Repository) LoadTable(ctx context.Context) (domain.MappingTable, error) {
	table := domain.MappingTable{
		Calendars: make(map[string]string),
		Doctors:   make(map[string]string),
	}

	query, args, err := psqlbuilder.Select("cup_id", "ghl_calendar_id", "ghl_user_id").
		From("entity_mappings").
		Where(squirrel.Eq{"active": true}).
		ToSql()
	if err != nil {
		return table, fmt.Errorf("%w: LoadTable - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return table, fmt.Errorf("%w: LoadTable - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cupID string
		var calendarID, userID sql.NullString

		if err := rows.Scan(&cupID, &calendarID, &userID); err != nil {
			return table, fmt.Errorf("%w: LoadTable - scan row: %v", ErrExecQuery, err)
		}

		if calendarID.Valid {
			table.Calendars[cupID] = calendarID.String
		}
		if userID.Valid {
			table.Doctors[cupID] = userID.String
		}
	}

	if err := rows.Err(); err != nil {
		return table, fmt.Errorf("%w: LoadTable - iterate rows: %v", ErrExecQuery, err)
	}
	return table, nil
}

// ReplaceTable заменяет весь набор маппингов в одной транзакции
// Частичного merge нет: старые строки удаляются целиком
func (r *Repository) ReplaceTable(ctx context.Context, table domain.MappingTable) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: ReplaceTable - begin: %v", ErrTransaction, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM entity_mappings"); err != nil {
		return fmt.Errorf("%w: ReplaceTable - delete: %v", ErrExecQuery, err)
	}

	builder := psqlbuilder.Insert("entity_mappings").
		Columns("cup_type", "cup_id", "ghl_calendar_id", "ghl_user_id", "active")

	for cupID, calendarID := range table.Calendars {
		builder = builder.Values(calendarKeyType(cupID), cupID, calendarID, nil, true)
	}
	for cupID, userID := range table.Doctors {
		builder = builder.Values(domain.MappingDottore, cupID, nil, userID, true)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceTable - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceTable - execute insert: %v", ErrExecQuery, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: ReplaceTable - commit: %v", ErrTransaction, err)
	}
	return nil
}

// calendarKeyType тип строки для ключа calendars
// Составные ключи "{id_sede}_{categoria}" относятся к седе; различить
// плоские id седе и престации по ключу нельзя, на разрешение это не влияет
func calendarKeyType(cupID string) domain.EntityMappingType {
	if strings.Contains(cupID, "_") {
		return domain.MappingSede
	}
	return domain.MappingPrestazione
}
