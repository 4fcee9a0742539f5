package gohighlevel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/CUP-SyncService/pkg/resilience"
)

// apiVersion версия GHL API, передается в каждом запросе
const apiVersion = "2021-07-28"

// metricsTarget метка клиента в метриках внешних вызовов
const metricsTarget = "gohighlevel"

// Client клиент для работы с GoHighLevel API
// Каждый вызов проходит через retry(breaker(raw)): breaker изолирует
// отказавший upstream, retry повторяет только классифицированные как
// retryable ошибки.
type Client struct {
	baseURL    string
	apiToken   string
	locationID string
	httpClient *http.Client
	retrier    *resilience.Retrier
	breaker    *resilience.CircuitBreaker
	metrics    MetricsRecorder
	log        Logger
}

// NewClient создает новый экземпляр клиента GoHighLevel
func NewClient(
	baseURL string,
	apiToken string,
	locationID string,
	timeout time.Duration,
	retrier *resilience.Retrier,
	breaker *resilience.CircuitBreaker,
	log Logger,
) *Client {
	return &Client{
		baseURL:    baseURL,
		apiToken:   apiToken,
		locationID: locationID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retrier: retrier,
		breaker: breaker,
		log:     log,
	}
}

// BreakerState возвращает состояние circuit breaker'а клиента
func (c *Client) BreakerState() string {
	return string(c.breaker.State())
}

// SetMetrics подключает счетчик внешних вызовов; nil отключает учет
func (c *Client) SetMetrics(m MetricsRecorder) {
	c.metrics = m
}

// call выполняет запрос через retry и circuit breaker
func (c *Client) call(ctx context.Context, label, method, path string, body, out interface{}) error {
	return c.retrier.Do(ctx, label, func(ctx context.Context) error {
		err := c.breaker.Execute(ctx, func(ctx context.Context) error {
			return c.do(ctx, method, path, body, out)
		})
		c.observeCall(err)
		return err
	})
}

// observeCall учитывает одну попытку вызова внешнего API
func (c *Client) observeCall(err error) {
	if c.metrics == nil {
		return
	}
	switch {
	case err == nil:
		c.metrics.IncExternalCall(metricsTarget, "success")
	case errors.Is(err, resilience.ErrCircuitOpen):
		c.metrics.IncExternalCall(metricsTarget, "rejected")
	default:
		c.metrics.IncExternalCall(metricsTarget, "error")
	}
}

// do выполняет один HTTP запрос и классифицирует ошибку на границе клиента
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	c.log.Debug("GHL %s %s -> %d (%s)", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		msg := fmt.Sprintf("unexpected status %d", resp.StatusCode)

		var apiErr errorResponse
		if err := json.Unmarshal(raw, &apiErr); err == nil {
			if apiErr.Message != "" {
				msg = apiErr.Message
			} else if apiErr.Error != "" {
				msg = apiErr.Error
			}
		}

		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return nil
}

// searchContacts выполняет поиск контактов по одному фильтру
func (c *Client) searchContacts(ctx context.Context, field, value string) (*Contact, error) {
	reqBody := searchContactsRequest{
		LocationID: c.locationID,
		Page:       1,
		PageLimit:  1,
		Filters: []SearchFilter{
			{Field: field, Operator: "eq", Value: value},
		},
	}

	var resp searchContactsResponse
	label := "GHL POST /contacts/search " + field
	if err := c.call(ctx, label, http.MethodPost, "/contacts/search", reqBody, &resp); err != nil {
		return nil, err
	}

	if len(resp.Contacts) == 0 {
		return nil, nil
	}
	return &resp.Contacts[0], nil
}

// SearchContactByEmail ищет контакт по точному совпадению email
// Возвращает nil, nil если контакт не найден
func (c *Client) SearchContactByEmail(ctx context.Context, email string) (*Contact, error) {
	return c.searchContacts(ctx, "email", email)
}

// SearchContactByPhone ищет контакт по точному совпадению телефона
func (c *Client) SearchContactByPhone(ctx context.Context, phone string) (*Contact, error) {
	return c.searchContacts(ctx, "phone", phone)
}

// SearchContactByCustomField ищет контакт по кастомному полю
// Вызывающий обрабатывает ошибку как "не найдено": поле может
// отсутствовать на конкретной инсталляции GHL
func (c *Client) SearchContactByCustomField(ctx context.Context, fieldKey, value string) (*Contact, error) {
	return c.searchContacts(ctx, "customFields."+fieldKey, value)
}

// CreateContact создает новый контакт
func (c *Client) CreateContact(ctx context.Context, req CreateContactRequest) (string, error) {
	req.LocationID = c.locationID

	var resp createContactResponse
	if err := c.call(ctx, "GHL POST /contacts", http.MethodPost, "/contacts/", req, &resp); err != nil {
		return "", err
	}
	if resp.Contact.ID == "" {
		return "", fmt.Errorf("%w: create contact returned empty id", ErrInvalidResponse)
	}
	return resp.Contact.ID, nil
}

// UpdateContact обновляет существующий контакт
func (c *Client) UpdateContact(ctx context.Context, contactID string, req UpdateContactRequest) error {
	return c.call(ctx, "GHL PUT /contacts/"+contactID, http.MethodPut, "/contacts/"+contactID, req, nil)
}

// CreateAppointment создает событие в календаре GHL
func (c *Client) CreateAppointment(ctx context.Context, req CreateEventRequest) (string, error) {
	req.LocationID = c.locationID

	var resp eventResponse
	err := c.call(ctx, "GHL POST /calendars/events/appointments",
		http.MethodPost, "/calendars/events/appointments", req, &resp)
	if err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: create appointment returned empty id", ErrInvalidResponse)
	}
	return resp.ID, nil
}

// UpdateAppointment обновляет событие календаря
func (c *Client) UpdateAppointment(ctx context.Context, eventID string, req UpdateEventRequest) error {
	return c.call(ctx, "GHL PUT /calendars/events/"+eventID,
		http.MethodPut, "/calendars/events/"+eventID, req, nil)
}

// DeleteAppointment удаляет событие календаря
func (c *Client) DeleteAppointment(ctx context.Context, eventID string) error {
	return c.call(ctx, "GHL DELETE /calendars/events/"+eventID,
		http.MethodDelete, "/calendars/events/"+eventID, nil, nil)
}

// GetCalendars возвращает список календарей локации
func (c *Client) GetCalendars(ctx context.Context) ([]Calendar, error) {
	var resp calendarsResponse
	path := "/calendars/?locationId=" + c.locationID
	if err := c.call(ctx, "GHL GET /calendars", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Calendars, nil
}

// GetUsers возвращает список пользователей локации
func (c *Client) GetUsers(ctx context.Context) ([]User, error) {
	var resp usersResponse
	path := "/users/?locationId=" + c.locationID
	if err := c.call(ctx, "GHL GET /users", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}
