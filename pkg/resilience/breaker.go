package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCircuitOpen возвращается, когда breaker открыт и вызов отклонен без обращения к сети
// Намеренно не помечена как retryable: повторы внутри открытого breaker'а бессмысленны
var ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

// BreakerState состояние circuit breaker'а
type BreakerState string

const (
	StateClosed   BreakerState = "closed"
	StateOpen     BreakerState = "open"
	StateHalfOpen BreakerState = "half-open"
)

// CircuitBreaker защищает один внешний сервис от каскадных отказов
// Переходы: closed -> open после threshold последовательных ошибок;
// open -> half-open после cooldown; half-open -> closed при успехе пробного вызова,
// half-open -> open при его неудаче.
// Состояние локально для процесса и живет до его завершения.
type CircuitBreaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	log       Logger

	mu          sync.Mutex
	state       BreakerState
	failures    int
	lastFailure time.Time
	probing     bool

	now           func() time.Time
	onStateChange func(name string, state BreakerState)
}

// NewCircuitBreaker создает новый breaker для внешнего сервиса name
func NewCircuitBreaker(name string, threshold int, cooldown time.Duration, log Logger) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &CircuitBreaker{
		name:      name,
		threshold: threshold,
		cooldown:  cooldown,
		log:       log,
		state:     StateClosed,
		now:       time.Now,
	}
}

// OnStateChange регистрирует обработчик смены состояния breaker'а.
// Обработчик вызывается под мьютексом и не должен блокироваться.
func (cb *CircuitBreaker) OnStateChange(fn func(name string, state BreakerState)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

func (cb *CircuitBreaker) setState(state BreakerState) {
	if cb.state == state {
		return
	}
	cb.state = state
	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, state)
	}
}

// Execute выполняет операцию через breaker
// В открытом состоянии вызов отклоняется немедленно; после cooldown
// пропускается ровно один пробный вызов (half-open).
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}

	err := op(ctx)
	cb.afterCall(err)
	return err
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.lastFailure) <= cb.cooldown {
			return fmt.Errorf("%w: %s", ErrCircuitOpen, cb.name)
		}
		cb.setState(StateHalfOpen)
		cb.probing = true
		cb.log.Info("Circuit breaker %s: half-open, allowing probe call", cb.name)
		return nil
	case StateHalfOpen:
		if cb.probing {
			return fmt.Errorf("%w: %s", ErrCircuitOpen, cb.name)
		}
		cb.probing = true
		return nil
	default:
		return nil
	}
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		if cb.state == StateHalfOpen {
			cb.log.Info("Circuit breaker %s: probe succeeded, closing", cb.name)
		}
		cb.setState(StateClosed)
		cb.failures = 0
		cb.probing = false
		return
	}

	cb.failures++
	cb.lastFailure = cb.now()
	cb.probing = false

	if cb.state == StateHalfOpen {
		cb.setState(StateOpen)
		cb.log.Error("Circuit breaker %s: probe failed, re-opening", cb.name)
		return
	}

	if cb.failures >= cb.threshold {
		cb.setState(StateOpen)
		cb.log.Error("Circuit breaker %s: opened after %d consecutive failures", cb.name, cb.failures)
	}
}

// State возвращает текущее состояние breaker'а
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset принудительно сбрасывает breaker в закрытое состояние
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.setState(StateClosed)
	cb.failures = 0
	cb.lastFailure = time.Time{}
	cb.probing = false
}
