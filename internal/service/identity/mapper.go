package identity

import (
	"fmt"
	"sync"

	"github.com/m04kA/CUP-SyncService/internal/domain"
)

// Logger интерфейс логгера для Identity Mapper'а
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
}

// Mapper разрешает идентификаторы сущностей CUP в идентификаторы GHL
//
// Календарь ищется по ярусам, первый найденный побеждает:
//  1. точное совпадение id_prestazione
//  2. точное совпадение id_sede
//  3. составной ключ "{id_sede}_{categoria}"
//
// Пользователь (assignedUserId) ищется только по id_dottore, без fallback'а.
type Mapper struct {
	mu    sync.RWMutex
	table domain.MappingTable
	log   Logger
}

// NewMapper создает Mapper с начальной таблицей
func NewMapper(table domain.MappingTable, log Logger) *Mapper {
	return &Mapper{
		table: table.Clone(),
		log:   log,
	}
}

// ResolveCalendar возвращает calendarId GHL для пренотации
func (m *Mapper) ResolveCalendar(serviceID, siteID, category string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if calendarID, ok := m.table.Calendars[serviceID]; ok {
		return calendarID, nil
	}
	if calendarID, ok := m.table.Calendars[siteID]; ok {
		return calendarID, nil
	}
	if category != "" {
		if calendarID, ok := m.table.Calendars[domain.CompositeCalendarKey(siteID, category)]; ok {
			return calendarID, nil
		}
	}

	return "", fmt.Errorf("%w: calendar for service=%q site=%q category=%q",
		ErrUnmappedEntity, serviceID, siteID, category)
}

// ResolveUser возвращает userId GHL для врача
func (m *Mapper) ResolveUser(doctorID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if userID, ok := m.table.Doctors[doctorID]; ok {
		return userID, nil
	}
	return "", fmt.Errorf("%w: user for doctor=%q", ErrUnmappedEntity, doctorID)
}

// Table возвращает копию текущей таблицы разрешения
func (m *Mapper) Table() domain.MappingTable {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table.Clone()
}

// Replace полностью заменяет таблицу разрешения
// Частичного merge нет: таблица валидируется и заменяется атомарно
func (m *Mapper) Replace(table domain.MappingTable) error {
	if err := table.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	m.table = table.Clone()
	m.mu.Unlock()

	m.log.Info("Mapping table replaced: %d calendars, %d doctors",
		len(table.Calendars), len(table.Doctors))
	return nil
}
