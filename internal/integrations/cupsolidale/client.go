package cupsolidale

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/m04kA/CUP-SyncService/pkg/resilience"
)

const (
	// batchLimit максимум элементов в одном batch-запросе CUP;
	// более крупные наборы режутся на чанки на стороне клиента
	batchLimit = 2000

	// maxConcurrentPages сколько страниц пагинации запрашивается параллельно
	maxConcurrentPages = 10

	// metricsTarget метка клиента в метриках внешних вызовов
	metricsTarget = "cupsolidale"
)

var paginationRe = regexp.MustCompile(`pagination=(\d+)`)

// Logger интерфейс логгера для клиента CUP
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// MetricsRecorder счетчик исходящих вызовов внешнего API
type MetricsRecorder interface {
	IncExternalCall(target, outcome string)
}

// Client клиент для работы с API CUP Solidale (basic auth)
// Все вызовы проходят через retry(breaker(raw))
type Client struct {
	baseURL     string
	companyCode string
	apiKey      string
	httpClient  *http.Client
	retrier     *resilience.Retrier
	breaker     *resilience.CircuitBreaker
	metrics     MetricsRecorder
	log         Logger
}

// NewClient создает новый экземпляр клиента CUP Solidale
func NewClient(
	baseURL string,
	companyCode string,
	apiKey string,
	timeout time.Duration,
	retrier *resilience.Retrier,
	breaker *resilience.CircuitBreaker,
	log Logger,
) *Client {
	return &Client{
		baseURL:     baseURL,
		companyCode: companyCode,
		apiKey:      apiKey,
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

func (c *Client) call(ctx context.Context, label, method, path string, body, out interface{}) (*paging, error) {
	var pg *paging
	err := c.retrier.Do(ctx, label, func(ctx context.Context) error {
		var err error
		pg, err = c.doEnvelope(ctx, method, path, body, out)
		c.observeCall(err)
		return err
	})
	return pg, err
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

// doEnvelope выполняет один запрос и разбирает envelope CUP
// success=false в теле считается ошибкой уровня API
func (c *Client) doEnvelope(ctx context.Context, method, path string, body, out interface{}) (*paging, error) {
	var pg *paging
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
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

		req.SetBasicAuth(c.companyCode, c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &APIError{Message: err.Error()}
		}
		defer resp.Body.Close()

		c.log.Debug("CUP %s %s -> %d (%s)", method, path, resp.StatusCode, time.Since(start))

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return &APIError{Message: "failed to read response body: " + err.Error()}
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			apiErr := &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
			var envelope apiResponse
			if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil {
				apiErr.CupCode = envelope.Error.Code
				apiErr.Message = envelope.Error.Message
			}
			return apiErr
		}

		var envelope apiResponse
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return fmt.Errorf("%w: failed to decode envelope: %v", ErrInvalidResponse, err)
		}

		if !envelope.Success {
			apiErr := &APIError{StatusCode: resp.StatusCode, Message: "API returned success: false"}
			if envelope.Error != nil {
				apiErr.CupCode = envelope.Error.Code
				apiErr.Message = envelope.Error.Message
			}
			return apiErr
		}

		if out != nil && len(envelope.Data) > 0 {
			if err := json.Unmarshal(envelope.Data, out); err != nil {
				return fmt.Errorf("%w: failed to decode data: %v", ErrInvalidResponse, err)
			}
		}

		pg = envelope.Paging
		return nil
	})
	return pg, err
}

// fetchPaginated загружает первую страницу, а остальные запрашивает
// параллельными независимыми запросами по шаблону pagination=N
func fetchPaginated[T any](ctx context.Context, c *Client, label, path string) ([]T, error) {
	var first []T
	pg, err := c.call(ctx, label, http.MethodGet, path, nil, &first)
	if err != nil {
		return nil, err
	}

	if pg == nil || pg.Next == "" {
		return first, nil
	}

	m := paginationRe.FindStringSubmatch(pg.Next)
	if m == nil {
		c.log.Warn("CUP %s: unrecognized pagination url %q, returning first page only", label, pg.Next)
		return first, nil
	}
	startPage, _ := strconv.Atoi(m[1])

	sep := "?"
	if containsQuery(path) {
		sep = "&"
	}

	pages := make([][]T, maxConcurrentPages)
	var wg sync.WaitGroup
	for i := 0; i < maxConcurrentPages; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pagePath := fmt.Sprintf("%s%spagination=%d", path, sep, startPage+i)
			var items []T
			if _, err := c.call(ctx, fmt.Sprintf("%s page %d", label, startPage+i), http.MethodGet, pagePath, nil, &items); err != nil {
				c.log.Warn("CUP %s: page %d fetch failed: %v", label, startPage+i, err)
				return
			}
			pages[i] = items
		}(i)
	}
	wg.Wait()

	all := first
	for _, items := range pages {
		if len(items) == 0 {
			break
		}
		all = append(all, items...)
	}
	return all, nil
}

func containsQuery(path string) bool {
	for _, r := range path {
		if r == '?' {
			return true
		}
	}
	return false
}

// GetPrenotazioni возвращает список пренотаций (все страницы)
func (c *Client) GetPrenotazioni(ctx context.Context) ([]Prenotazione, error) {
	return fetchPaginated[Prenotazione](ctx, c, "CUP GET /prenotazioni", "/prenotazioni/")
}

// GetSedi возвращает список филиалов
func (c *Client) GetSedi(ctx context.Context) ([]Sede, error) {
	var sedi []Sede
	if _, err := c.call(ctx, "CUP GET /sedi", http.MethodGet, "/sedi/", nil, &sedi); err != nil {
		return nil, err
	}
	return sedi, nil
}

// GetDottori возвращает список врачей
func (c *Client) GetDottori(ctx context.Context) ([]Dottore, error) {
	var dottori []Dottore
	if _, err := c.call(ctx, "CUP GET /dottori", http.MethodGet, "/dottori/", nil, &dottori); err != nil {
		return nil, err
	}
	return dottori, nil
}

// GetPrestazioni возвращает список услуг (все страницы)
func (c *Client) GetPrestazioni(ctx context.Context) ([]Prestazione, error) {
	return fetchPaginated[Prestazione](ctx, c, "CUP GET /prestazioni", "/prestazioni/")
}

// AddIndisponibilita добавляет блоки недоступности
// CUP ограничивает размер batch-запроса, поэтому наборы крупнее лимита
// режутся на чанки и отправляются последовательно
func (c *Client) AddIndisponibilita(ctx context.Context, blocks []Indisponibilita) error {
	for i := 0; i < len(blocks); i += batchLimit {
		end := i + batchLimit
		if end > len(blocks) {
			end = len(blocks)
		}

		req := batchIndisponibilitaRequest{Blocks: blocks[i:end]}
		label := fmt.Sprintf("CUP POST /indisponibilita/add [%d:%d]", i, end)
		if _, err := c.call(ctx, label, http.MethodPost, "/indisponibilita/add", req, nil); err != nil {
			return err
		}
	}
	return nil
}

// DeleteIndisponibilita удаляет блок недоступности
func (c *Client) DeleteIndisponibilita(ctx context.Context, id string) error {
	_, err := c.call(ctx, "CUP DELETE /indisponibilita/"+id, http.MethodDelete, "/indisponibilita/"+id, nil, nil)
	return err
}

// CheckHealth проверяет доступность API CUP
func (c *Client) CheckHealth(ctx context.Context) bool {
	if _, err := c.GetSedi(ctx); err != nil {
		c.log.Error("CUP health check failed: %v", err)
		return false
	}
	return true
}
