package domain

import "errors"

// EntityMappingType тип сущности CUP в маппинге
type EntityMappingType string

const (
	MappingSede        EntityMappingType = "sede"
	MappingDottore     EntityMappingType = "dottore"
	MappingPrestazione EntityMappingType = "prestazione"
)

// MappingTable таблица разрешения идентификаторов CUP -> GHL
//
// Calendars ищется по ключам в порядке:
//  1. id_prestazione
//  2. id_sede
//  3. "{id_sede}_{categoria}"
//
// Doctors ищется только по id_dottore, без fallback'а.
type MappingTable struct {
	Calendars map[string]string
	Doctors   map[string]string
}

var ErrInvalidMappingTable = errors.New("domain: mapping table must contain calendars and doctors")

// Validate проверяет, что таблица пригодна для полной замены
func (t *MappingTable) Validate() error {
	if len(t.Calendars) == 0 || len(t.Doctors) == 0 {
		return ErrInvalidMappingTable
	}
	return nil
}

// Clone возвращает глубокую копию таблицы
func (t *MappingTable) Clone() MappingTable {
	out := MappingTable{
		Calendars: make(map[string]string, len(t.Calendars)),
		Doctors:   make(map[string]string, len(t.Doctors)),
	}
	for k, v := range t.Calendars {
		out.Calendars[k] = v
	}
	for k, v := range t.Doctors {
		out.Doctors[k] = v
	}
	return out
}

// CompositeCalendarKey строит составной ключ "{id_sede}_{categoria}"
func CompositeCalendarKey(siteID, category string) string {
	return siteID + "_" + category
}
