package get_mapping

import "github.com/m04kA/CUP-SyncService/internal/domain"

type MappingService interface {
	Table() domain.MappingTable
}

type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
