package domain

import (
	"errors"
	"fmt"
	"time"
)

// EventType тип входящего webhook-события CUP Solidale
type EventType string

const (
	EventBookingCreated   EventType = "booking.created"
	EventBookingUpdated   EventType = "booking.updated"
	EventBookingCancelled EventType = "booking.cancelled"
	EventContactCreated   EventType = "contact.created"
	EventContactUpdated   EventType = "contact.updated"
)

// Valid возвращает true для известных типов событий
func (t EventType) Valid() bool {
	switch t {
	case EventBookingCreated, EventBookingUpdated, EventBookingCancelled,
		EventContactCreated, EventContactUpdated:
		return true
	}
	return false
}

// IsBookingEvent возвращает true для событий, несущих данные пренотации
func (t EventType) IsBookingEvent() bool {
	switch t {
	case EventBookingCreated, EventBookingUpdated, EventBookingCancelled:
		return true
	}
	return false
}

// WebhookEvent входящее событие после валидации
// Размеченное объединение: ровно одно из полей Booking/Patient заполнено
// в зависимости от типа события. Событие неизменяемо после получения.
type WebhookEvent struct {
	Type      EventType
	Timestamp time.Time
	Booking   *BookingDetails
	Patient   *PatientRecord
}

var (
	ErrMissingBookingData = errors.New("domain: booking event without booking data")
	ErrMissingPatientData = errors.New("domain: contact event without patient data")
)

// Validate проверяет согласованность типа события и его payload'а
func (e *WebhookEvent) Validate() error {
	if !e.Type.Valid() {
		return fmt.Errorf("domain: unknown event type %q", e.Type)
	}

	if e.Type.IsBookingEvent() {
		if e.Booking == nil {
			return ErrMissingBookingData
		}
		return e.Booking.Validate()
	}

	if e.Patient == nil {
		return ErrMissingPatientData
	}
	return nil
}
