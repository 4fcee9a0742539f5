package gohighlevel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/CUP-SyncService/pkg/resilience"
)

type nopLogger struct{}

func (nopLogger) Debug(format string, v ...interface{}) {}
func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts := resilience.Options{
		MaxRetries:      2,
		BaseDelay:       time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		ExponentialBase: 2,
	}
	retrier := resilience.NewRetrier(opts, nopLogger{})
	breaker := resilience.NewCircuitBreaker("ghl-test", 10, time.Minute, nopLogger{})

	client := NewClient(srv.URL, "test-token", "loc-1", time.Second, retrier, breaker, nopLogger{})
	return client, srv
}

func TestSearchContactByEmail_RequestShape(t *testing.T) {
	var captured searchContactsRequest
	var headers http.Header

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/contacts/search", r.URL.Path)
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(searchContactsResponse{Contacts: []Contact{{ID: "c-1"}}})
	}))

	contact, err := client.SearchContactByEmail(context.Background(), "mario@example.com")

	require.NoError(t, err)
	require.NotNil(t, contact)
	assert.Equal(t, "c-1", contact.ID)

	assert.Equal(t, "Bearer test-token", headers.Get("Authorization"))
	assert.Equal(t, apiVersion, headers.Get("Version"))

	assert.Equal(t, "loc-1", captured.LocationID)
	assert.Equal(t, 1, captured.PageLimit)
	require.Len(t, captured.Filters, 1)
	assert.Equal(t, SearchFilter{Field: "email", Operator: "eq", Value: "mario@example.com"}, captured.Filters[0])
}

func TestSearchContact_EmptyResultIsNilNil(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(searchContactsResponse{})
	}))

	contact, err := client.SearchContactByPhone(context.Background(), "+39111")

	require.NoError(t, err)
	assert.Nil(t, contact)
}

func TestSearchContactByCustomField_PrefixesFieldKey(t *testing.T) {
	var captured searchContactsRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(searchContactsResponse{})
	}))

	_, err := client.SearchContactByCustomField(context.Background(), "cup_codice_fiscale", "RSSMRA80A01H501Z")

	require.NoError(t, err)
	require.Len(t, captured.Filters, 1)
	assert.Equal(t, "customFields.cup_codice_fiscale", captured.Filters[0].Field)
}

func TestCreateContact_InjectsLocationAndUnwrapsID(t *testing.T) {
	var captured CreateContactRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/contacts/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(createContactResponse{Contact: Contact{ID: "c-9"}})
	}))

	id, err := client.CreateContact(context.Background(), CreateContactRequest{FirstName: "Mario"})

	require.NoError(t, err)
	assert.Equal(t, "c-9", id)
	assert.Equal(t, "loc-1", captured.LocationID)
}

func TestCreateContact_EmptyIDIsInvalidResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(createContactResponse{})
	}))

	_, err := client.CreateContact(context.Background(), CreateContactRequest{})

	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestCreateAppointment(t *testing.T) {
	var captured CreateEventRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/calendars/events/appointments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(eventResponse{ID: "ev-5"})
	}))

	id, err := client.CreateAppointment(context.Background(), CreateEventRequest{
		CalendarID: "cal-1",
		StartTime:  "2025-12-03T14:00:00.000Z",
	})

	require.NoError(t, err)
	assert.Equal(t, "ev-5", id)
	assert.Equal(t, "loc-1", captured.LocationID)
	assert.Equal(t, "2025-12-03T14:00:00.000Z", captured.StartTime)
}

func TestDeleteAppointment_UsesEventPath(t *testing.T) {
	var path, method string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		method = r.Method
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))

	err := client.DeleteAppointment(context.Background(), "ev-5")

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/calendars/events/ev-5", path)
}

func TestCall_ServerErrorRetriedThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(searchContactsResponse{Contacts: []Contact{{ID: "c-1"}}})
	}))

	contact, err := client.SearchContactByEmail(context.Background(), "a@b.com")

	require.NoError(t, err)
	require.NotNil(t, contact)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCall_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(errorResponse{Message: "unknown field"})
	}))

	_, err := client.SearchContactByEmail(context.Background(), "a@b.com")

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "unknown field", apiErr.Message)
	assert.False(t, apiErr.Retryable())
}

func TestCall_RateLimitIsRetryable(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(searchContactsResponse{})
	}))

	_, err := client.SearchContactByPhone(context.Background(), "+39111")

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCall_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	retrier := resilience.NewRetrier(resilience.Options{MaxRetries: 0, BaseDelay: time.Millisecond, ExponentialBase: 2}, nopLogger{})
	breaker := resilience.NewCircuitBreaker("ghl-test", 2, time.Minute, nopLogger{})
	client := NewClient(srv.URL, "t", "loc-1", time.Second, retrier, breaker, nopLogger{})

	for i := 0; i < 2; i++ {
		_, err := client.SearchContactByEmail(context.Background(), "a@b.com")
		require.Error(t, err)
	}
	assert.Equal(t, "open", client.BreakerState())

	_, err := client.SearchContactByEmail(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
}

type fakeMetrics struct {
	outcomes []string
}

func (f *fakeMetrics) IncExternalCall(target, outcome string) {
	f.outcomes = append(f.outcomes, target+"/"+outcome)
}

func TestCall_EveryAttemptCounted(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(searchContactsResponse{Contacts: []Contact{{ID: "c-1"}}})
	}))
	recorder := &fakeMetrics{}
	client.SetMetrics(recorder)

	_, err := client.SearchContactByEmail(context.Background(), "a@b.com")

	require.NoError(t, err)
	assert.Equal(t, []string{
		"gohighlevel/error",
		"gohighlevel/error",
		"gohighlevel/success",
	}, recorder.outcomes)
}

func TestCall_BreakerRejectionCountedSeparately(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	retrier := resilience.NewRetrier(resilience.Options{MaxRetries: 0, BaseDelay: time.Millisecond, ExponentialBase: 2}, nopLogger{})
	breaker := resilience.NewCircuitBreaker("ghl-test", 1, time.Minute, nopLogger{})
	client := NewClient(srv.URL, "t", "loc-1", time.Second, retrier, breaker, nopLogger{})
	recorder := &fakeMetrics{}
	client.SetMetrics(recorder)

	_, err := client.SearchContactByEmail(context.Background(), "a@b.com")
	require.Error(t, err)

	_, err = client.SearchContactByEmail(context.Background(), "a@b.com")
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)

	assert.Equal(t, []string{"gohighlevel/error", "gohighlevel/rejected"}, recorder.outcomes)
}

func TestGetCalendars(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/calendars/", r.URL.Path)
		require.Equal(t, "loc-1", r.URL.Query().Get("locationId"))
		_ = json.NewEncoder(w).Encode(calendarsResponse{Calendars: []Calendar{{ID: "cal-1", Name: "Visite"}}})
	}))

	calendars, err := client.GetCalendars(context.Background())

	require.NoError(t, err)
	require.Len(t, calendars, 1)
	assert.Equal(t, "Visite", calendars[0].Name)
}
