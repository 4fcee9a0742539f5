package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContactLine_FullLegacyFormat(t *testing.T) {
	rec, ok := ParseContactLine("Mario Rossi (mario@example.com) RSSMRA80A01H501Z")

	require.True(t, ok)
	assert.Equal(t, "Mario", rec.FirstName)
	assert.Equal(t, "Rossi", rec.LastName)
	require.NotNil(t, rec.Email)
	assert.Equal(t, "mario@example.com", *rec.Email)
	require.NotNil(t, rec.FiscalCode)
	assert.Equal(t, "RSSMRA80A01H501Z", *rec.FiscalCode)
}

func TestParseContactLine_NameOnly(t *testing.T) {
	rec, ok := ParseContactLine("Anna Maria Verdi")

	require.True(t, ok)
	assert.Equal(t, "Anna", rec.FirstName)
	assert.Equal(t, "Maria Verdi", rec.LastName)
	assert.Nil(t, rec.Email)
	assert.Nil(t, rec.FiscalCode)
	assert.Nil(t, rec.Phone)
}

func TestParseContactLine_FiscalCodeWithoutEmail(t *testing.T) {
	rec, ok := ParseContactLine("Mario Rossi RSSMRA80A01H501Z")

	require.True(t, ok)
	// фискальный код не должен утечь в фамилию
	assert.Equal(t, "Rossi", rec.LastName)
	require.NotNil(t, rec.FiscalCode)
	assert.Equal(t, "RSSMRA80A01H501Z", *rec.FiscalCode)
}

func TestParseContactLine_PhoneNormalized(t *testing.T) {
	rec, ok := ParseContactLine("Mario Rossi +39 333 123 4567")

	require.True(t, ok)
	require.NotNil(t, rec.Phone)
	assert.Equal(t, "+393331234567", *rec.Phone)
}

func TestParseContactLine_EmptyLineRejected(t *testing.T) {
	_, ok := ParseContactLine("")
	assert.False(t, ok)

	_, ok = ParseContactLine("   ")
	assert.False(t, ok)
}

func TestParseContactLine_FiscalCodeOnlyRejected(t *testing.T) {
	// без имени запись бесполезна: угадывать нечего
	_, ok := ParseContactLine("RSSMRA80A01H501Z")
	assert.False(t, ok)
}
