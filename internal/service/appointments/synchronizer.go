package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/CUP-SyncService/internal/domain"
	"github.com/m04kA/CUP-SyncService/internal/integrations/gohighlevel"
)

// isoFormat формат времени событий GHL
const isoFormat = "2006-01-02T15:04:05.000Z07:00"

const statusConfirmed = "confirmed"

// Synchronizer проецирует пренотации CUP в события календарей GHL
type Synchronizer struct {
	crm CalendarClient
	log Logger
}

// NewSynchronizer создает новый синхронизатор событий
func NewSynchronizer(crm CalendarClient, log Logger) *Synchronizer {
	return &Synchronizer{
		crm: crm,
		log: log,
	}
}

// Create создает событие календаря для пренотации
func (s *Synchronizer) Create(ctx context.Context, booking *domain.BookingDetails, contactID, calendarID, assignedUserID string) (string, error) {
	start, end, err := eventWindow(booking)
	if err != nil {
		return "", err
	}

	req := gohighlevel.CreateEventRequest{
		CalendarID:               calendarID,
		ContactID:                contactID,
		AssignedUserID:           assignedUserID,
		StartTime:                start,
		EndTime:                  end,
		Title:                    booking.Service.Name,
		AppointmentStatus:        statusConfirmed,
		Notes:                    buildNotes(booking),
		Address:                  booking.Site.Name,
		IgnoreFreeSlotValidation: true,
		ToNotify:                 false,
	}

	eventID, err := s.crm.CreateAppointment(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create event for booking %s: %w", booking.ID, err)
	}

	s.log.Info("Event %s created for booking %s in calendar %s", eventID, booking.ID, calendarID)
	return eventID, nil
}

// Update обновляет существующее событие по данным пренотации
func (s *Synchronizer) Update(ctx context.Context, eventID string, booking *domain.BookingDetails, calendarID, assignedUserID string) error {
	start, end, err := eventWindow(booking)
	if err != nil {
		return err
	}

	req := gohighlevel.UpdateEventRequest{
		CalendarID:        calendarID,
		AssignedUserID:    assignedUserID,
		StartTime:         start,
		EndTime:           end,
		Title:             booking.Service.Name,
		AppointmentStatus: statusConfirmed,
		Notes:             buildNotes(booking),
	}

	if err := s.crm.UpdateAppointment(ctx, eventID, req); err != nil {
		return fmt.Errorf("failed to update event %s for booking %s: %w", eventID, booking.ID, err)
	}

	s.log.Info("Event %s updated for booking %s", eventID, booking.ID)
	return nil
}

// Delete удаляет событие календаря
func (s *Synchronizer) Delete(ctx context.Context, eventID string) error {
	if err := s.crm.DeleteAppointment(ctx, eventID); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}

	s.log.Info("Event %s deleted", eventID)
	return nil
}

// eventWindow возвращает ISO-границы события из даты и длительности пренотации
func eventWindow(booking *domain.BookingDetails) (string, string, error) {
	start, err := booking.StartTime()
	if err != nil {
		return "", "", fmt.Errorf("invalid booking date %q: %w", booking.Date, err)
	}
	end := start.Add(booking.Duration())
	return formatISO(start), formatISO(end), nil
}

func formatISO(t time.Time) string {
	return t.UTC().Format(isoFormat)
}
