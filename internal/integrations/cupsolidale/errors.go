package cupsolidale

import (
	"errors"
	"fmt"
)

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("cupsolidale client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от CUP
	ErrInvalidResponse = errors.New("cupsolidale client: invalid response")
)

// APIError классифицированная ошибка вызова CUP API
// StatusCode == 0 означает транспортную ошибку; CupCode — код ошибки
// из envelope ответа CUP (success=false).
type APIError struct {
	StatusCode int
	CupCode    int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("cupsolidale: network error: %s", e.Message)
	}
	if e.CupCode != 0 {
		return fmt.Sprintf("cupsolidale: HTTP %d (cup code %d): %s", e.StatusCode, e.CupCode, e.Message)
	}
	return fmt.Sprintf("cupsolidale: HTTP %d: %s", e.StatusCode, e.Message)
}

// Retryable сетевые ошибки, 5xx и 429 считаются повторяемыми
func (e *APIError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500 || e.StatusCode == 429
}
