package contacts

import (
	"context"

	"github.com/m04kA/CUP-SyncService/internal/integrations/gohighlevel"
)

// CRMClient операции GHL, нужные реконсилеру контактов
type CRMClient interface {
	SearchContactByEmail(ctx context.Context, email string) (*gohighlevel.Contact, error)
	SearchContactByPhone(ctx context.Context, phone string) (*gohighlevel.Contact, error)
	SearchContactByCustomField(ctx context.Context, fieldKey, value string) (*gohighlevel.Contact, error)
	CreateContact(ctx context.Context, req gohighlevel.CreateContactRequest) (string, error)
	UpdateContact(ctx context.Context, contactID string, req gohighlevel.UpdateContactRequest) error
}

// Logger интерфейс логгера для реконсилера контактов
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
