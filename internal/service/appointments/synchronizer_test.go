package appointments

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/CUP-SyncService/internal/domain"
	"github.com/m04kA/CUP-SyncService/internal/integrations/gohighlevel"
	"github.com/m04kA/CUP-SyncService/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeCalendar struct {
	createReq gohighlevel.CreateEventRequest
	updateID  string
	updateReq gohighlevel.UpdateEventRequest
	deletedID string
	createErr error
	deleteErr error
	nextID    string
}

func (f *fakeCalendar) CreateAppointment(_ context.Context, req gohighlevel.CreateEventRequest) (string, error) {
	f.createReq = req
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.nextID, nil
}

func (f *fakeCalendar) UpdateAppointment(_ context.Context, eventID string, req gohighlevel.UpdateEventRequest) error {
	f.updateID = eventID
	f.updateReq = req
	return nil
}

func (f *fakeCalendar) DeleteAppointment(_ context.Context, eventID string) error {
	f.deletedID = eventID
	return f.deleteErr
}

func sampleBooking() *domain.BookingDetails {
	return &domain.BookingDetails{
		ID:   "B1",
		Date: "2025-12-03 14:00",
		Service: domain.ServiceRef{
			ID:       "S1",
			Name:     "Visita cardiologica",
			Category: "visita",
		},
		Site:   domain.SiteRef{ID: "SD1", Name: "Sede Centrale"},
		Doctor: domain.DoctorRef{ID: "D1", Name: "Dott. Bianchi"},
	}
}

func TestCreate_DefaultDurationAndTimes(t *testing.T) {
	cal := &fakeCalendar{nextID: "ev-1"}
	s := NewSynchronizer(cal, nopLogger{})

	eventID, err := s.Create(context.Background(), sampleBooking(), "c-1", "cal-1", "u-1")

	require.NoError(t, err)
	assert.Equal(t, "ev-1", eventID)
	assert.Equal(t, "2025-12-03T14:00:00.000Z", cal.createReq.StartTime)
	assert.Equal(t, "2025-12-03T14:30:00.000Z", cal.createReq.EndTime)
	assert.Equal(t, "cal-1", cal.createReq.CalendarID)
	assert.Equal(t, "c-1", cal.createReq.ContactID)
	assert.Equal(t, "u-1", cal.createReq.AssignedUserID)
	assert.Equal(t, "Visita cardiologica", cal.createReq.Title)
	assert.Equal(t, statusConfirmed, cal.createReq.AppointmentStatus)
	assert.True(t, cal.createReq.IgnoreFreeSlotValidation)
	assert.False(t, cal.createReq.ToNotify)
}

func TestCreate_ExplicitDuration(t *testing.T) {
	cal := &fakeCalendar{nextID: "ev-1"}
	s := NewSynchronizer(cal, nopLogger{})

	booking := sampleBooking()
	booking.DurationMinutes = ptr.Ptr(45)

	_, err := s.Create(context.Background(), booking, "c-1", "cal-1", "")

	require.NoError(t, err)
	assert.Equal(t, "2025-12-03T14:45:00.000Z", cal.createReq.EndTime)
}

func TestCreate_InvalidDateRejectedBeforeRemoteCall(t *testing.T) {
	cal := &fakeCalendar{nextID: "ev-1"}
	s := NewSynchronizer(cal, nopLogger{})

	booking := sampleBooking()
	booking.Date = "03/12/2025 14:00"

	_, err := s.Create(context.Background(), booking, "c-1", "cal-1", "")

	require.Error(t, err)
	assert.Empty(t, cal.createReq.CalendarID)
}

func TestCreate_RemoteErrorWrapped(t *testing.T) {
	apiErr := &gohighlevel.APIError{StatusCode: 500, Message: "boom"}
	cal := &fakeCalendar{createErr: apiErr}
	s := NewSynchronizer(cal, nopLogger{})

	_, err := s.Create(context.Background(), sampleBooking(), "c-1", "cal-1", "")

	require.Error(t, err)
	var unwrapped *gohighlevel.APIError
	assert.True(t, errors.As(err, &unwrapped))
}

func TestUpdate_PassesEventIDAndWindow(t *testing.T) {
	cal := &fakeCalendar{}
	s := NewSynchronizer(cal, nopLogger{})

	err := s.Update(context.Background(), "ev-7", sampleBooking(), "cal-2", "u-2")

	require.NoError(t, err)
	assert.Equal(t, "ev-7", cal.updateID)
	assert.Equal(t, "cal-2", cal.updateReq.CalendarID)
	assert.Equal(t, "2025-12-03T14:00:00.000Z", cal.updateReq.StartTime)
	assert.Equal(t, "2025-12-03T14:30:00.000Z", cal.updateReq.EndTime)
}

func TestDelete_PropagatesError(t *testing.T) {
	cal := &fakeCalendar{deleteErr: errors.New("gone wrong")}
	s := NewSynchronizer(cal, nopLogger{})

	err := s.Delete(context.Background(), "ev-9")

	require.Error(t, err)
	assert.Equal(t, "ev-9", cal.deletedID)
}

func TestBuildNotes_FixedOrderAndOmissions(t *testing.T) {
	booking := sampleBooking()
	booking.Payment = &domain.Payment{Amount: 85.5, Method: "carta", Status: "pagato"}
	booking.Note = ptr.Ptr("portare referti precedenti")

	notes := buildNotes(booking)
	lines := strings.Split(notes, "\n")

	require.Len(t, lines, 7)
	assert.Equal(t, domain.SyncMarkerLine, lines[0])
	assert.Equal(t, "Prenotazione: B1", lines[1])
	assert.Equal(t, "Prestazione: Visita cardiologica (visita)", lines[2])
	assert.Equal(t, "Sede: Sede Centrale", lines[3])
	assert.Equal(t, "Dottore: Dott. Bianchi", lines[4])
	assert.Equal(t, "Pagamento: 85.50 EUR (pagato)", lines[5])
	assert.Equal(t, "Note: portare referti precedenti", lines[6])
}

func TestBuildNotes_MinimalBooking(t *testing.T) {
	booking := &domain.BookingDetails{ID: "B2", Date: "2025-12-03 14:00"}

	notes := buildNotes(booking)
	lines := strings.Split(notes, "\n")

	require.Len(t, lines, 2)
	assert.Equal(t, domain.SyncMarkerLine, lines[0])
	assert.Equal(t, "Prenotazione: B2", lines[1])
}
