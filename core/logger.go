package core

// Logger is any structured logger. Args may carry errors, maps of extra data and the acting user.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the user behind a log entry.
type Person struct {
	ID    string
	Email string
	Role  string
}
