package contacts

import (
	"context"
	"fmt"

	"github.com/m04kA/CUP-SyncService/internal/domain"
	"github.com/m04kA/CUP-SyncService/internal/integrations/gohighlevel"
)

// Result результат разрешения пациента в контакт GHL
type Result struct {
	ContactID string
	Created   bool
}

// Reconciler разрешает пациента CUP в контакт GHL
//
// Порядок поиска строгий и короткозамкнутый:
// email -> phone -> codice fiscale (custom field) -> создание нового.
// Каждый шаг - один удаленный вызов.
type Reconciler struct {
	crm CRMClient
	log Logger
}

// NewReconciler создает новый реконсилер контактов
func NewReconciler(crm CRMClient, log Logger) *Reconciler {
	return &Reconciler{
		crm: crm,
		log: log,
	}
}

// Reconcile находит контакт по ключам пациента или создает новый
func (r *Reconciler) Reconcile(ctx context.Context, patient *domain.PatientRecord) (*Result, error) {
	found, err := r.findExisting(ctx, patient)
	if err != nil {
		return nil, err
	}
	if found != nil {
		return &Result{ContactID: found.ID}, nil
	}

	contactID, err := r.create(ctx, patient)
	if err != nil {
		return nil, err
	}
	return &Result{ContactID: contactID, Created: true}, nil
}

// Upsert обрабатывает contact.updated: ищет контакт по полному порядку
// ключей и обновляет его; если контакт не найден - создает.
// Оригинальные email/phone остаются ключами поиска; replacement-значения
// имеют приоритет при построении payload'а обновления.
func (r *Reconciler) Upsert(ctx context.Context, patient *domain.PatientRecord) (*Result, error) {
	found, err := r.findExisting(ctx, patient)
	if err != nil {
		return nil, err
	}

	if found == nil {
		contactID, err := r.create(ctx, patient)
		if err != nil {
			return nil, err
		}
		return &Result{ContactID: contactID, Created: true}, nil
	}

	update := gohighlevel.UpdateContactRequest{
		FirstName:    patient.FirstName,
		LastName:     patient.LastName,
		Email:        deref(patient.EffectiveEmail()),
		Phone:        deref(patient.EffectivePhone()),
		CustomFields: customFields(patient),
	}

	if err := r.crm.UpdateContact(ctx, found.ID, update); err != nil {
		return nil, fmt.Errorf("failed to update contact %s: %w", found.ID, err)
	}

	r.log.Info("Contact %s updated for patient %s", found.ID, patient.FullName())
	return &Result{ContactID: found.ID}, nil
}

// findExisting пробует ключи поиска по порядку; первый найденный побеждает
func (r *Reconciler) findExisting(ctx context.Context, patient *domain.PatientRecord) (*gohighlevel.Contact, error) {
	if patient.Email != nil {
		found, err := r.crm.SearchContactByEmail(ctx, *patient.Email)
		if err != nil {
			return nil, fmt.Errorf("search by email failed: %w", err)
		}
		if found != nil {
			r.log.Info("Contact %s matched by email for patient %s", found.ID, patient.FullName())
			return found, nil
		}
	}

	if patient.Phone != nil {
		found, err := r.crm.SearchContactByPhone(ctx, *patient.Phone)
		if err != nil {
			return nil, fmt.Errorf("search by phone failed: %w", err)
		}
		if found != nil {
			r.log.Info("Contact %s matched by phone for patient %s", found.ID, patient.FullName())
			return found, nil
		}
	}

	if patient.FiscalCode != nil {
		found, err := r.crm.SearchContactByCustomField(ctx, domain.FieldFiscalCode, *patient.FiscalCode)
		if err != nil {
			// Поле может отсутствовать на конкретной инсталляции GHL:
			// деградируем до "не найдено" вместо провала всего события
			r.log.Warn("Fiscal code search failed, treating as not found: %v", err)
		} else if found != nil {
			r.log.Info("Contact %s matched by fiscal code for patient %s", found.ID, patient.FullName())
			return found, nil
		}
	}

	return nil, nil
}

// create создает новый контакт с provenance-тегами и зеркалированием
// медицинских метаданных в custom fields
func (r *Reconciler) create(ctx context.Context, patient *domain.PatientRecord) (string, error) {
	req := gohighlevel.CreateContactRequest{
		FirstName:    patient.FirstName,
		LastName:     patient.LastName,
		Email:        deref(patient.EffectiveEmail()),
		Phone:        deref(patient.EffectivePhone()),
		Source:       domain.ContactSource,
		Tags:         []string{domain.ProvenanceTag, domain.BookingTag},
		CustomFields: customFields(patient),
	}

	contactID, err := r.crm.CreateContact(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create contact: %w", err)
	}

	r.log.Info("Contact %s created for patient %s", contactID, patient.FullName())
	return contactID, nil
}

func customFields(patient *domain.PatientRecord) []gohighlevel.CustomField {
	var fields []gohighlevel.CustomField
	if patient.FiscalCode != nil {
		fields = append(fields, gohighlevel.CustomField{ID: domain.FieldFiscalCode, Value: *patient.FiscalCode})
	}
	if patient.BirthDate != nil {
		fields = append(fields, gohighlevel.CustomField{ID: domain.FieldBirthDate, Value: *patient.BirthDate})
	}
	if patient.Note != nil {
		fields = append(fields, gohighlevel.CustomField{ID: domain.FieldNote, Value: *patient.Note})
	}
	return fields
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
