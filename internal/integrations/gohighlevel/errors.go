package gohighlevel

import (
	"errors"
	"fmt"
)

var (
	// ErrInternal возвращается при внутренних ошибках клиента (сборка запроса и т.п.)
	ErrInternal = errors.New("gohighlevel client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от GHL
	ErrInvalidResponse = errors.New("gohighlevel client: invalid response")
)

// APIError классифицированная ошибка вызова GHL API
// Классификация выполняется один раз на границе клиента; флаг retryable
// потребляется pkg/resilience.
// StatusCode == 0 означает транспортную ошибку (ответ не получен).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("gohighlevel: network error: %s", e.Message)
	}
	return fmt.Sprintf("gohighlevel: HTTP %d: %s", e.StatusCode, e.Message)
}

// Retryable сетевые ошибки, 5xx и 429 считаются повторяемыми
func (e *APIError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500 || e.StatusCode == 429
}
