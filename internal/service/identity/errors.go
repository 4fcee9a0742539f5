package identity

import "errors"

var (
	// ErrUnmappedEntity возвращается, когда для сущности CUP нет GHL-маппинга
	// Это пробел конфигурации, а не транзиентный сбой: событие терминально
	// неуспешно и не должно ретраиться
	ErrUnmappedEntity = errors.New("identity: no mapping configured for entity")
)
