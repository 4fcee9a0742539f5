package gohighlevel

// Logger интерфейс логгера для клиента GHL
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// MetricsRecorder счетчик исходящих вызовов внешнего API
type MetricsRecorder interface {
	IncExternalCall(target, outcome string)
}
