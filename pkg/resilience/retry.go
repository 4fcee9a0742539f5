package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Options параметры retry с экспоненциальным backoff
type Options struct {
	MaxRetries      int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	ExponentialBase float64
	Jitter          bool
}

// DefaultOptions возвращает дефолтные параметры retry
func DefaultOptions() Options {
	return Options{
		MaxRetries:      3,
		BaseDelay:       1 * time.Second,
		MaxDelay:        30 * time.Second,
		ExponentialBase: 2,
		Jitter:          true,
	}
}

// IsRetryable проверяет, помечена ли ошибка как повторяемая
// Ошибки без классификации считаются неповторяемыми
func IsRetryable(err error) bool {
	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}
	return false
}

// Retrier выполняет операции с повторами и экспоненциальным backoff
type Retrier struct {
	opts Options
	log  Logger
	rand func() float64
}

// NewRetrier создает новый Retrier
func NewRetrier(opts Options, log Logger) *Retrier {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.ExponentialBase <= 1 {
		opts.ExponentialBase = 2
	}
	return &Retrier{
		opts: opts,
		log:  log,
		rand: rand.Float64,
	}
}

// Do выполняет операцию с повторами
// Повторяются только ошибки, помеченные как retryable (сетевые, 5xx, 429);
// любая другая ошибка прерывает цикл немедленно.
// После исчерпания попыток возвращается последняя ошибка.
func (r *Retrier) Do(ctx context.Context, label string, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= r.opts.MaxRetries; attempt++ {
		err := op(ctx)
		if err == nil {
			if attempt > 0 {
				r.log.Info("Operation %s succeeded after %d retries", label, attempt)
			}
			return nil
		}
		lastErr = err

		if attempt == r.opts.MaxRetries {
			r.log.Error("Operation %s failed after %d retries: %v", label, r.opts.MaxRetries, lastErr)
			break
		}

		if !IsRetryable(lastErr) {
			r.log.Error("Operation %s: non-retryable error: %v", label, lastErr)
			break
		}

		delay := r.calculateDelay(attempt)
		r.log.Warn("Operation %s failed (attempt %d/%d), retrying in %s: %v",
			label, attempt+1, r.opts.MaxRetries, delay, lastErr)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}

// calculateDelay вычисляет задержку: min(maxDelay, baseDelay * base^attempt)
// с равномерным jitter в диапазоне [0.5, 1.0] от вычисленной задержки
func (r *Retrier) calculateDelay(attempt int) time.Duration {
	delay := float64(r.opts.BaseDelay) * math.Pow(r.opts.ExponentialBase, float64(attempt))
	delay = math.Min(delay, float64(r.opts.MaxDelay))

	if r.opts.Jitter {
		delay = delay * (0.5 + r.rand()*0.5)
	}

	return time.Duration(delay)
}
