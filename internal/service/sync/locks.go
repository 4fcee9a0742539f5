package sync

import "sync"

// bookingLocks мьютексы по id пренотации.
// События одной пренотации обрабатываются строго последовательно,
// события разных пренотаций - параллельно. Записи удаляются, когда
// последний держатель отпускает ключ, так что карта не растет.
type bookingLocks struct {
	mu    sync.Mutex
	locks map[string]*bookingLock
}

type bookingLock struct {
	mu   sync.Mutex
	refs int
}

func newBookingLocks() *bookingLocks {
	return &bookingLocks{locks: make(map[string]*bookingLock)}
}

// acquire блокирует ключ и возвращает функцию его освобождения
func (l *bookingLocks) acquire(bookingID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[bookingID]
	if !ok {
		entry = &bookingLock{}
		l.locks[bookingID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, bookingID)
		}
		l.mu.Unlock()
	}
}
