package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/CUP-SyncService/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{}) {}
func (nopLogger) Warn(format string, v ...interface{}) {}

func testTable() domain.MappingTable {
	return domain.MappingTable{
		Calendars: map[string]string{
			"S1":              "cal-service",
			"X1":              "cal-site",
			"X1_odontoiatria": "cal-composite",
		},
		Doctors: map[string]string{
			"D1": "user-1",
		},
	}
}

func TestResolveCalendar_ServiceIDWinsOverSiteID(t *testing.T) {
	m := NewMapper(testTable(), nopLogger{})

	// и S1, и X1 замаплены: побеждает более специфичный ярус
	calendarID, err := m.ResolveCalendar("S1", "X1", "odontoiatria")
	require.NoError(t, err)
	assert.Equal(t, "cal-service", calendarID)
}

func TestResolveCalendar_FallsBackToSiteID(t *testing.T) {
	m := NewMapper(testTable(), nopLogger{})

	calendarID, err := m.ResolveCalendar("unknown-service", "X1", "")
	require.NoError(t, err)
	assert.Equal(t, "cal-site", calendarID)
}

func TestResolveCalendar_FallsBackToCompositeKey(t *testing.T) {
	table := testTable()
	delete(table.Calendars, "X1")
	m := NewMapper(table, nopLogger{})

	calendarID, err := m.ResolveCalendar("unknown-service", "X1", "odontoiatria")
	require.NoError(t, err)
	assert.Equal(t, "cal-composite", calendarID)
}

func TestResolveCalendar_UnmappedIsTerminal(t *testing.T) {
	m := NewMapper(testTable(), nopLogger{})

	_, err := m.ResolveCalendar("nope", "nope", "nope")
	require.ErrorIs(t, err, ErrUnmappedEntity)
}

func TestResolveUser_DirectLookupOnly(t *testing.T) {
	m := NewMapper(testTable(), nopLogger{})

	userID, err := m.ResolveUser("D1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = m.ResolveUser("D2")
	require.ErrorIs(t, err, ErrUnmappedEntity)
}

func TestReplace_WholesaleSwap(t *testing.T) {
	m := NewMapper(testTable(), nopLogger{})

	newTable := domain.MappingTable{
		Calendars: map[string]string{"S9": "cal-9"},
		Doctors:   map[string]string{"D9": "user-9"},
	}
	require.NoError(t, m.Replace(newTable))

	// старые ключи исчезли: замена без merge
	_, err := m.ResolveCalendar("S1", "X1", "")
	require.ErrorIs(t, err, ErrUnmappedEntity)

	calendarID, err := m.ResolveCalendar("S9", "", "")
	require.NoError(t, err)
	assert.Equal(t, "cal-9", calendarID)
}

func TestReplace_RejectsEmptyTable(t *testing.T) {
	m := NewMapper(testTable(), nopLogger{})

	err := m.Replace(domain.MappingTable{Calendars: map[string]string{"a": "b"}})
	require.ErrorIs(t, err, domain.ErrInvalidMappingTable)

	// таблица не изменилась
	_, err = m.ResolveUser("D1")
	require.NoError(t, err)
}

func TestTable_ReturnsCopy(t *testing.T) {
	m := NewMapper(testTable(), nopLogger{})

	snapshot := m.Table()
	snapshot.Calendars["S1"] = "mutated"

	calendarID, err := m.ResolveCalendar("S1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "cal-service", calendarID)
}
