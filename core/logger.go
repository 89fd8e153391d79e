package core

// Logger is any service that can log messages with structured extras.
// Extras may include an authenticated user for error-reporting backends
// that track affected persons.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
