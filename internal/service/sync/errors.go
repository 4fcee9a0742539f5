package sync

import "errors"

var (
	// ErrUnknownEventType возвращается для событий с незнакомым типом
	ErrUnknownEventType = errors.New("sync: unknown event type")
)
