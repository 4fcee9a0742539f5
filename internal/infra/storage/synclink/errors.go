package synclink

import "errors"

var (
	// ErrLinkNotFound возвращается, когда связь пренотации с событием не найдена
	ErrLinkNotFound = errors.New("synclink.repository: link not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("synclink.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("synclink.repository: failed to execute query")
)
