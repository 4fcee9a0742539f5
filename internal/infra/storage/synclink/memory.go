package synclink

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/CUP-SyncService/internal/domain"
)

// MemoryStore in-memory хранилище связей
// Минимальный fallback для запуска без базы данных: связи не переживают
// рестарт процесса, поэтому идемпотентность гарантируется только в рамках
// текущего процесса.
type MemoryStore struct {
	mu    sync.RWMutex
	links map[string]domain.BookingEventLink
}

// NewMemoryStore создает новое in-memory хранилище
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links: make(map[string]domain.BookingEventLink),
	}
}

// Get возвращает связь по id пренотации
func (s *MemoryStore) Get(_ context.Context, bookingID string) (*domain.BookingEventLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.links[bookingID]
	if !ok {
		return nil, ErrLinkNotFound
	}
	return &link, nil
}

// Save сохраняет связь
func (s *MemoryStore) Save(_ context.Context, link *domain.BookingEventLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *link
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.links[link.BookingID] = stored
	return nil
}

// Delete удаляет связь по id пренотации
func (s *MemoryStore) Delete(_ context.Context, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.links[bookingID]; !ok {
		return ErrLinkNotFound
	}
	delete(s.links, bookingID)
	return nil
}
