package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/CUP-SyncService/internal/domain"
	"github.com/m04kA/CUP-SyncService/internal/infra/storage/synclink"
	"github.com/m04kA/CUP-SyncService/internal/infra/storage/synclog"
)

const syncTypeCupToGhl = "cup_to_ghl"

// Service диспетчер webhook-событий CUP Solidale.
//
// Каждое событие проходит один и тот же конвейер: последовательная
// блокировка по пренотации, поиск существующей связи, разрешение
// контакта и календаря, операция над событием GHL, фиксация связи.
// Диспетчер никогда не возвращает ошибку наружу: любой сбой
// становится SyncResult с Success=false.
type Service struct {
	links      LinkStore
	syncLog    SyncLogStore
	reconciler ContactReconciler
	events     EventSynchronizer
	identity   IdentityResolver
	metrics    MetricsRecorder
	log        Logger

	bookingLocks *bookingLocks
}

// NewService создает новый диспетчер синхронизации
// metrics и syncLog могут быть nil, когда метрики или база выключены
func NewService(
	links LinkStore,
	syncLog SyncLogStore,
	reconciler ContactReconciler,
	events EventSynchronizer,
	resolver IdentityResolver,
	metrics MetricsRecorder,
	log Logger,
) *Service {
	return &Service{
		links:        links,
		syncLog:      syncLog,
		reconciler:   reconciler,
		events:       events,
		identity:     resolver,
		metrics:      metrics,
		log:          log,
		bookingLocks: newBookingLocks(),
	}
}

// HandleEvent обрабатывает одно webhook-событие и всегда возвращает результат
func (s *Service) HandleEvent(ctx context.Context, event *domain.WebhookEvent) *SyncResult {
	started := time.Now()

	if err := event.Validate(); err != nil {
		result := failureResult(event.Type, err)
		s.finish(ctx, event, result, started)
		return result
	}

	var result *SyncResult
	switch event.Type {
	case domain.EventBookingCreated:
		result = s.handleBookingCreated(ctx, event.Booking)
	case domain.EventBookingUpdated:
		result = s.handleBookingUpdated(ctx, event.Booking)
	case domain.EventBookingCancelled:
		result = s.handleBookingCancelled(ctx, event.Booking)
	case domain.EventContactCreated:
		result = s.handleContactCreated(ctx, event.Patient)
	case domain.EventContactUpdated:
		result = s.handleContactUpdated(ctx, event.Patient)
	default:
		result = failureResult(event.Type, fmt.Errorf("%w: %q", ErrUnknownEventType, event.Type))
	}

	s.finish(ctx, event, result, started)
	return result
}

// handleBookingCreated создает контакт и событие календаря для пренотации.
// Повторная доставка того же события находит связь и ничего не создает.
func (s *Service) handleBookingCreated(ctx context.Context, booking *domain.BookingDetails) *SyncResult {
	release := s.bookingLocks.acquire(booking.ID)
	defer release()

	existing, err := s.links.Get(ctx, booking.ID)
	if err != nil && !errors.Is(err, synclink.ErrLinkNotFound) {
		return failureResult(domain.EventBookingCreated, fmt.Errorf("failed to read link for booking %s: %w", booking.ID, err))
	}
	if existing != nil {
		s.log.Info("Booking %s already synced as event %s, skipping create", booking.ID, existing.EventID)
		result := successResult(domain.EventBookingCreated)
		result.ContactID = existing.ContactID
		result.EventID = existing.EventID
		return result
	}

	result := s.createBookingEvent(ctx, domain.EventBookingCreated, booking)
	return result
}

// handleBookingUpdated обновляет существующее событие; при отсутствии
// связи деградирует до создания (доставка created могла потеряться)
func (s *Service) handleBookingUpdated(ctx context.Context, booking *domain.BookingDetails) *SyncResult {
	release := s.bookingLocks.acquire(booking.ID)
	defer release()

	link, err := s.links.Get(ctx, booking.ID)
	if err != nil {
		if errors.Is(err, synclink.ErrLinkNotFound) {
			s.log.Warn("No link for updated booking %s, falling back to create", booking.ID)
			return s.createBookingEvent(ctx, domain.EventBookingUpdated, booking)
		}
		return failureResult(domain.EventBookingUpdated, fmt.Errorf("failed to read link for booking %s: %w", booking.ID, err))
	}

	// Контакт переразрешается и при обновлении: данные пациента в событии
	// могли измениться вместе с пренотацией
	contact, err := s.reconciler.Reconcile(ctx, &booking.Patient)
	if err != nil {
		return failureResult(domain.EventBookingUpdated, err)
	}

	calendarID, err := s.identity.ResolveCalendar(booking.Service.ID, booking.Site.ID, booking.Service.Category)
	if err != nil {
		return failureResult(domain.EventBookingUpdated, err)
	}
	assignedUserID, err := s.resolveDoctor(booking)
	if err != nil {
		return failureResult(domain.EventBookingUpdated, err)
	}

	if err := s.events.Update(ctx, link.EventID, booking, calendarID, assignedUserID); err != nil {
		return failureResult(domain.EventBookingUpdated, err)
	}

	if calendarID != link.CalendarID {
		updated := *link
		updated.CalendarID = calendarID
		if err := s.links.Save(ctx, &updated); err != nil {
			s.log.Error("Failed to persist new calendar for booking %s: %v", booking.ID, err)
		}
	}

	result := successResult(domain.EventBookingUpdated)
	result.ContactID = contact.ContactID
	result.ContactCreated = contact.Created
	result.EventID = link.EventID
	result.EventUpdated = true
	return result
}

// handleBookingCancelled удаляет событие и связь.
// Отмена незнакомой пренотации успешна и ничего не делает: она уже
// отсутствует в календаре, состояние совпадает с целевым.
func (s *Service) handleBookingCancelled(ctx context.Context, booking *domain.BookingDetails) *SyncResult {
	release := s.bookingLocks.acquire(booking.ID)
	defer release()

	link, err := s.links.Get(ctx, booking.ID)
	if err != nil {
		if errors.Is(err, synclink.ErrLinkNotFound) {
			s.log.Info("No link for cancelled booking %s, nothing to delete", booking.ID)
			return successResult(domain.EventBookingCancelled)
		}
		return failureResult(domain.EventBookingCancelled, fmt.Errorf("failed to read link for booking %s: %w", booking.ID, err))
	}

	if err := s.events.Delete(ctx, link.EventID); err != nil {
		return failureResult(domain.EventBookingCancelled, err)
	}

	if err := s.links.Delete(ctx, booking.ID); err != nil {
		return failureResult(domain.EventBookingCancelled, fmt.Errorf("event %s deleted but link removal failed: %w", link.EventID, err))
	}

	result := successResult(domain.EventBookingCancelled)
	result.ContactID = link.ContactID
	result.EventID = link.EventID
	result.EventDeleted = true
	return result
}

func (s *Service) handleContactCreated(ctx context.Context, patient *domain.PatientRecord) *SyncResult {
	res, err := s.reconciler.Reconcile(ctx, patient)
	if err != nil {
		return failureResult(domain.EventContactCreated, err)
	}

	result := successResult(domain.EventContactCreated)
	result.ContactID = res.ContactID
	result.ContactCreated = res.Created
	return result
}

func (s *Service) handleContactUpdated(ctx context.Context, patient *domain.PatientRecord) *SyncResult {
	res, err := s.reconciler.Upsert(ctx, patient)
	if err != nil {
		return failureResult(domain.EventContactUpdated, err)
	}

	result := successResult(domain.EventContactUpdated)
	result.ContactID = res.ContactID
	result.ContactCreated = res.Created
	return result
}

// createBookingEvent общий хвост created и updated-без-связи:
// контакт -> календарь -> событие -> связь
func (s *Service) createBookingEvent(ctx context.Context, eventType domain.EventType, booking *domain.BookingDetails) *SyncResult {
	contact, err := s.reconciler.Reconcile(ctx, &booking.Patient)
	if err != nil {
		return failureResult(eventType, err)
	}

	calendarID, err := s.identity.ResolveCalendar(booking.Service.ID, booking.Site.ID, booking.Service.Category)
	if err != nil {
		return failureResult(eventType, err)
	}
	assignedUserID, err := s.resolveDoctor(booking)
	if err != nil {
		return failureResult(eventType, err)
	}

	eventID, err := s.events.Create(ctx, booking, contact.ContactID, calendarID, assignedUserID)
	if err != nil {
		return failureResult(eventType, err)
	}

	link := &domain.BookingEventLink{
		BookingID:  booking.ID,
		EventID:    eventID,
		ContactID:  contact.ContactID,
		CalendarID: calendarID,
	}
	if err := s.links.Save(ctx, link); err != nil {
		// Событие уже в календаре: без связи повторная доставка создаст
		// дубликат, поэтому считаем синхронизацию проваленной
		return failureResult(eventType, fmt.Errorf("event %s created but link save failed: %w", eventID, err))
	}

	result := successResult(eventType)
	result.ContactID = contact.ContactID
	result.EventID = eventID
	result.ContactCreated = contact.Created
	result.EventCreated = true
	return result
}

// resolveDoctor разрешает дотторе в пользователя GHL.
// Немаппированный врач — терминальная ошибка: это проблема конфигурации,
// и повторная доставка события её не исправит
func (s *Service) resolveDoctor(booking *domain.BookingDetails) (string, error) {
	if booking.Doctor.ID == "" {
		return "", nil
	}
	userID, err := s.identity.ResolveUser(booking.Doctor.ID)
	if err != nil {
		s.log.Error("Failed to resolve doctor %s: %v", booking.Doctor.ID, err)
		return "", err
	}
	return userID, nil
}

// finish пишет метрику и запись журнала; журнал best-effort
func (s *Service) finish(ctx context.Context, event *domain.WebhookEvent, result *SyncResult, started time.Time) {
	status := "success"
	if !result.Success {
		status = "error"
		s.log.Error("Event %s failed: %s", event.Type, result.Error)
	}

	if s.metrics != nil {
		s.metrics.IncSyncEvent(string(event.Type), status)
	}

	entry := synclog.Entry{
		SyncType:        syncTypeCupToGhl,
		EntityType:      entityType(event.Type),
		EntityID:        entityID(event),
		Action:          action(event.Type),
		Status:          status,
		ExecutionTimeMs: time.Since(started).Milliseconds(),
	}
	if result.Error != "" {
		msg := result.Error
		entry.ErrorMessage = &msg
	}

	if s.syncLog != nil {
		if err := s.syncLog.Append(ctx, entry); err != nil {
			s.log.Warn("Failed to append sync log for %s: %v", event.Type, err)
		}
	}
}

func entityType(t domain.EventType) string {
	if t.IsBookingEvent() {
		return "booking"
	}
	return "contact"
}

func entityID(event *domain.WebhookEvent) string {
	if event.Booking != nil {
		return event.Booking.ID
	}
	if event.Patient != nil {
		return event.Patient.FullName()
	}
	return ""
}

func action(t domain.EventType) string {
	switch t {
	case domain.EventBookingCreated, domain.EventContactCreated:
		return "create"
	case domain.EventBookingUpdated, domain.EventContactUpdated:
		return "update"
	case domain.EventBookingCancelled:
		return "delete"
	}
	return "sync"
}
