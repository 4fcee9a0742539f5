package domain

import (
	"errors"
	"fmt"
	"time"
)

// ServiceRef ссылка на престацию (услугу) CUP Solidale
type ServiceRef struct {
	ID       string
	Name     string
	Category string // visita | laboratorio | diagnostica
}

// SiteRef ссылка на седе (филиал) CUP Solidale
type SiteRef struct {
	ID   string
	Name string
}

// DoctorRef ссылка на дотторе CUP Solidale
type DoctorRef struct {
	ID   string
	Name string
}

// Payment сводка оплаты пренотации
type Payment struct {
	Amount float64
	Method string
	Status string
}

// BookingDetails данные пренотации из booking.* событий
type BookingDetails struct {
	ID              string // id_prenotazione, стабильный внешний идентификатор
	Date            string // "2025-12-03 14:00"
	DurationMinutes *int
	Service         ServiceRef
	Site            SiteRef
	Doctor          DoctorRef
	Patient         PatientRecord
	Payment         *Payment
	Note            *string
}

var (
	ErrMissingBookingID = errors.New("domain: booking id is required")
	ErrInvalidDate      = errors.New("domain: booking date must be in format YYYY-MM-DD HH:MM")
	ErrInvalidDuration  = errors.New("domain: duration must be positive")
)

// Validate проверяет инварианты пренотации
func (b *BookingDetails) Validate() error {
	if b.ID == "" {
		return ErrMissingBookingID
	}
	if _, err := b.StartTime(); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, b.Date)
	}
	if b.DurationMinutes != nil && *b.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// StartTime парсит дату престации как UTC
func (b *BookingDetails) StartTime() (time.Time, error) {
	return time.Parse(DateTimeFormat, b.Date)
}

// Duration возвращает длительность приема (дефолт 30 минут)
func (b *BookingDetails) Duration() time.Duration {
	if b.DurationMinutes != nil {
		return time.Duration(*b.DurationMinutes) * time.Minute
	}
	return DefaultDurationMinutes * time.Minute
}

// EndTime возвращает время окончания приема
func (b *BookingDetails) EndTime() (time.Time, error) {
	start, err := b.StartTime()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(b.Duration()), nil
}

// PatientRecord данные пациента
// NewEmail/NewPhone заполняются только в contact.updated и сигнализируют
// о смене канала связи; оригинальные поля остаются ключами поиска.
type PatientRecord struct {
	FirstName  string
	LastName   string
	Email      *string
	Phone      *string
	FiscalCode *string
	BirthDate  *string
	Address    *string
	City       *string
	PostalCode *string
	Note       *string
	NewEmail   *string
	NewPhone   *string
}

// FullName возвращает полное имя пациента
func (p *PatientRecord) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// HasSearchKey возвращает true, если есть хотя бы один ключ для поиска контакта
func (p *PatientRecord) HasSearchKey() bool {
	return p.Email != nil || p.Phone != nil || p.FiscalCode != nil
}

// EffectiveEmail возвращает replacement email, если он есть, иначе оригинальный
func (p *PatientRecord) EffectiveEmail() *string {
	if p.NewEmail != nil {
		return p.NewEmail
	}
	return p.Email
}

// EffectivePhone возвращает replacement phone, если он есть, иначе оригинальный
func (p *PatientRecord) EffectivePhone() *string {
	if p.NewPhone != nil {
		return p.NewPhone
	}
	return p.Phone
}
