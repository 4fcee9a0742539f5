package sync_webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/CUP-SyncService/internal/domain"
	syncservice "github.com/m04kA/CUP-SyncService/internal/service/sync"
)

// WebhookRequest конверт webhook-события CUP Solidale
// Timestamp в unix-миллисекундах, data зависит от типа события
type WebhookRequest struct {
	EventType string          `json:"event_type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// bookingData payload событий booking.*
type bookingData struct {
	ID              string          `json:"id_prenotazione"`
	DataPrestazione string          `json:"data_prestazione"` // "2025-12-03 14:00"
	DurataMinuti    *int            `json:"durata_minuti,omitempty"`
	Prestazione     prestazioneData `json:"prestazione"`
	Sede            sedeData        `json:"sede"`
	Dottore         dottoreData     `json:"dottore"`
	Cliente         json.RawMessage `json:"dati_cliente"`
	Pagamento       *pagamentoData  `json:"pagamento,omitempty"`
	Note            *string         `json:"note,omitempty"`
}

type prestazioneData struct {
	ID        string `json:"id_prestazione"`
	Nome      string `json:"nome"`
	Categoria string `json:"categoria"`
}

type sedeData struct {
	ID   string `json:"id_sede"`
	Nome string `json:"nome"`
}

type dottoreData struct {
	ID   string `json:"id_dottore"`
	Nome string `json:"nome"`
}

// clienteData payload событий contact.* и вложенные данные пациента в booking.*
type clienteData struct {
	Nome          string  `json:"nome"`
	Cognome       string  `json:"cognome"`
	Email         *string `json:"email,omitempty"`
	Telefono      *string `json:"telefono,omitempty"`
	CodiceFiscale *string `json:"codice_fiscale,omitempty"`
	DataNascita   *string `json:"data_nascita,omitempty"`
	Indirizzo     *string `json:"indirizzo,omitempty"`
	Citta         *string `json:"citta,omitempty"`
	Cap           *string `json:"cap,omitempty"`
	Note          *string `json:"note,omitempty"`
	NuovaEmail    *string `json:"nuova_email,omitempty"`
	NuovoTelefono *string `json:"nuovo_telefono,omitempty"`
}

type pagamentoData struct {
	Importo float64 `json:"importo"`
	Metodo  string  `json:"metodo"`
	Stato   string  `json:"stato"`
}

var (
	errMissingEventType   = errors.New("event_type is required")
	errMissingData        = errors.New("data is required")
	errInvalidContactLine = errors.New("dati_cliente free-text value is not parseable")
)

// ToDomainEvent валидирует конверт и собирает доменное событие
func (r *WebhookRequest) ToDomainEvent() (*domain.WebhookEvent, error) {
	if r.EventType == "" {
		return nil, errMissingEventType
	}

	eventType := domain.EventType(r.EventType)
	event := &domain.WebhookEvent{
		Type:      eventType,
		Timestamp: time.UnixMilli(r.Timestamp).UTC(),
	}

	if !eventType.Valid() {
		// Незнакомый тип уходит в диспетчер как есть: тот вернет
		// распознаваемый SyncResult с Success=false
		return event, nil
	}

	if len(r.Data) == 0 {
		return nil, errMissingData
	}

	if eventType.IsBookingEvent() {
		var data bookingData
		if err := json.Unmarshal(r.Data, &data); err != nil {
			return nil, fmt.Errorf("invalid booking data: %w", err)
		}
		patient, err := data.patientRecord()
		if err != nil {
			return nil, err
		}
		event.Booking = data.toDomain(patient)
		return event, nil
	}

	var data clienteData
	if err := json.Unmarshal(r.Data, &data); err != nil {
		return nil, fmt.Errorf("invalid patient data: %w", err)
	}
	event.Patient = data.toDomain()
	return event, nil
}

// patientRecord разбирает dati_cliente: структурированный объект либо
// legacy-строка старого формата CUP ("Mario Rossi (mario@example.com) RSSMRA80A01H501Z")
func (d *bookingData) patientRecord() (*domain.PatientRecord, error) {
	trimmed := bytes.TrimSpace(d.Cliente)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var line string
		if err := json.Unmarshal(trimmed, &line); err != nil {
			return nil, fmt.Errorf("invalid patient data: %w", err)
		}
		rec, ok := domain.ParseContactLine(line)
		if !ok {
			return nil, fmt.Errorf("%w: %q", errInvalidContactLine, line)
		}
		return &rec, nil
	}

	var data clienteData
	if err := json.Unmarshal(d.Cliente, &data); err != nil {
		return nil, fmt.Errorf("invalid patient data: %w", err)
	}
	return data.toDomain(), nil
}

func (d *bookingData) toDomain(patient *domain.PatientRecord) *domain.BookingDetails {
	booking := &domain.BookingDetails{
		ID:              d.ID,
		Date:            d.DataPrestazione,
		DurationMinutes: d.DurataMinuti,
		Service: domain.ServiceRef{
			ID:       d.Prestazione.ID,
			Name:     d.Prestazione.Nome,
			Category: d.Prestazione.Categoria,
		},
		Site:    domain.SiteRef{ID: d.Sede.ID, Name: d.Sede.Nome},
		Doctor:  domain.DoctorRef{ID: d.Dottore.ID, Name: d.Dottore.Nome},
		Patient: *patient,
		Note:    d.Note,
	}
	if d.Pagamento != nil {
		booking.Payment = &domain.Payment{
			Amount: d.Pagamento.Importo,
			Method: d.Pagamento.Metodo,
			Status: d.Pagamento.Stato,
		}
	}
	return booking
}

func (d *clienteData) toDomain() *domain.PatientRecord {
	return &domain.PatientRecord{
		FirstName:  d.Nome,
		LastName:   d.Cognome,
		Email:      d.Email,
		Phone:      d.Telefono,
		FiscalCode: d.CodiceFiscale,
		BirthDate:  d.DataNascita,
		Address:    d.Indirizzo,
		City:       d.Citta,
		PostalCode: d.Cap,
		Note:       d.Note,
		NewEmail:   d.NuovaEmail,
		NewPhone:   d.NuovoTelefono,
	}
}

// WebhookResponse результат обработки события для вызывающей стороны
type WebhookResponse struct {
	Success        bool   `json:"success"`
	EventType      string `json:"event_type"`
	ContactID      string `json:"contact_id,omitempty"`
	EventID        string `json:"event_id,omitempty"`
	ContactCreated bool   `json:"contact_created"`
	EventCreated   bool   `json:"event_created"`
	EventUpdated   bool   `json:"event_updated"`
	EventDeleted   bool   `json:"event_deleted"`
	Error          string `json:"error,omitempty"`
}

// FromSyncResult конвертирует результат диспетчера в HTTP-ответ
func FromSyncResult(result *syncservice.SyncResult) WebhookResponse {
	return WebhookResponse{
		Success:        result.Success,
		EventType:      string(result.EventType),
		ContactID:      result.ContactID,
		EventID:        result.EventID,
		ContactCreated: result.ContactCreated,
		EventCreated:   result.EventCreated,
		EventUpdated:   result.EventUpdated,
		EventDeleted:   result.EventDeleted,
		Error:          result.Error,
	}
}
