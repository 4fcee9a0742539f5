package resilience

// Logger интерфейс логгера для пакета resilience
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RetryableError ошибка, которая сама сообщает, можно ли повторить операцию
// Классификация выполняется один раз на границе интеграционного клиента
type RetryableError interface {
	error
	Retryable() bool
}
