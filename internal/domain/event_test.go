package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/CUP-SyncService/pkg/ptr"
)

func validBooking() *BookingDetails {
	return &BookingDetails{
		ID:      "B1",
		Date:    "2025-12-03 14:00",
		Service: ServiceRef{ID: "S1", Name: "Visita cardiologica", Category: "visita"},
		Site:    SiteRef{ID: "SD1", Name: "Sede Centrale"},
		Patient: PatientRecord{FirstName: "Mario", LastName: "Rossi"},
	}
}

func TestEventType_Valid(t *testing.T) {
	for _, eventType := range []EventType{
		EventBookingCreated, EventBookingUpdated, EventBookingCancelled,
		EventContactCreated, EventContactUpdated,
	} {
		assert.True(t, eventType.Valid(), string(eventType))
	}

	assert.False(t, EventType("booking.rescheduled").Valid())
	assert.False(t, EventType("").Valid())
}

func TestEventType_IsBookingEvent(t *testing.T) {
	assert.True(t, EventBookingCreated.IsBookingEvent())
	assert.True(t, EventBookingCancelled.IsBookingEvent())
	assert.False(t, EventContactCreated.IsBookingEvent())
	assert.False(t, EventContactUpdated.IsBookingEvent())
}

func TestWebhookEvent_Validate(t *testing.T) {
	event := &WebhookEvent{Type: EventBookingCreated, Booking: validBooking()}
	assert.NoError(t, event.Validate())

	missing := &WebhookEvent{Type: EventBookingCreated}
	assert.ErrorIs(t, missing.Validate(), ErrMissingBookingData)

	contact := &WebhookEvent{Type: EventContactCreated}
	assert.ErrorIs(t, contact.Validate(), ErrMissingPatientData)

	unknown := &WebhookEvent{Type: "spam"}
	assert.Error(t, unknown.Validate())
}

func TestBookingDetails_Validate(t *testing.T) {
	assert.NoError(t, validBooking().Validate())

	noID := validBooking()
	noID.ID = ""
	assert.ErrorIs(t, noID.Validate(), ErrMissingBookingID)

	badDate := validBooking()
	badDate.Date = "03/12/2025 14:00"
	assert.ErrorIs(t, badDate.Validate(), ErrInvalidDate)

	badDuration := validBooking()
	badDuration.DurationMinutes = ptr.Ptr(0)
	assert.ErrorIs(t, badDuration.Validate(), ErrInvalidDuration)
}

func TestBookingDetails_TimesParsedAsUTC(t *testing.T) {
	booking := validBooking()

	start, err := booking.StartTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 3, 14, 0, 0, 0, time.UTC), start)

	end, err := booking.EndTime()
	require.NoError(t, err)
	assert.Equal(t, start.Add(30*time.Minute), end)
}

func TestBookingDetails_ExplicitDuration(t *testing.T) {
	booking := validBooking()
	booking.DurationMinutes = ptr.Ptr(45)

	assert.Equal(t, 45*time.Minute, booking.Duration())
}

func TestPatientRecord_EffectiveFields(t *testing.T) {
	patient := PatientRecord{
		Email:    ptr.Ptr("old@example.com"),
		Phone:    ptr.Ptr("+39111"),
		NewEmail: ptr.Ptr("new@example.com"),
	}

	require.NotNil(t, patient.EffectiveEmail())
	assert.Equal(t, "new@example.com", *patient.EffectiveEmail())
	require.NotNil(t, patient.EffectivePhone())
	assert.Equal(t, "+39111", *patient.EffectivePhone())
}

func TestPatientRecord_HasSearchKey(t *testing.T) {
	assert.False(t, (&PatientRecord{FirstName: "Mario"}).HasSearchKey())
	assert.True(t, (&PatientRecord{Phone: ptr.Ptr("+39111")}).HasSearchKey())
}

func TestMappingTable_Validate(t *testing.T) {
	valid := MappingTable{
		Calendars: map[string]string{"S1": "cal-1"},
		Doctors:   map[string]string{"D1": "user-1"},
	}
	assert.NoError(t, valid.Validate())

	empty := MappingTable{Calendars: map[string]string{}, Doctors: map[string]string{"D1": "u"}}
	assert.ErrorIs(t, empty.Validate(), ErrInvalidMappingTable)
}

func TestMappingTable_CloneIsDeep(t *testing.T) {
	original := MappingTable{
		Calendars: map[string]string{"S1": "cal-1"},
		Doctors:   map[string]string{"D1": "user-1"},
	}

	clone := original.Clone()
	clone.Calendars["S2"] = "cal-2"

	assert.NotContains(t, original.Calendars, "S2")
}
