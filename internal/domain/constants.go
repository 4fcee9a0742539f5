package domain

// Time format constants
const (
	DateTimeFormat = "2006-01-02 15:04" // формат data_prestazione CUP Solidale
	DateFormat     = "2006-01-02"       // YYYY-MM-DD
	TimeFormat     = "15:04"            // HH:MM
)

// Default values
const (
	// DefaultDurationMinutes длительность приема, если CUP её не передал
	DefaultDurationMinutes = 30
)

// Provenance constants
// Метка в notes нужна обратному фильтру: события, созданные синхронизацией,
// не должны порождать indisponibilità в CUP
const (
	ContactSource  = "CUP Solidale Sync"
	ProvenanceTag  = "cup-solidale"
	BookingTag     = "prenotazione"
	SyncMarkerLine = "Sincronizzato da CUP Solidale"
)

// Custom field keys в GHL
// GHL не имеет нативных полей для этих данных, поэтому они зеркалируются
// в custom fields при создании контакта
const (
	FieldFiscalCode = "cup_codice_fiscale"
	FieldBirthDate  = "cup_data_nascita"
	FieldNote       = "cup_note"
)
