package mapping

import "errors"

var (
	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("mapping.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("mapping.repository: failed to execute query")

	// ErrTransaction возвращается при ошибках работы с транзакцией
	ErrTransaction = errors.New("mapping.repository: transaction error")
)
