package logger

// NoOpLogger discards everything. Used in tests and when logging is disabled.
type NoOpLogger struct{}

// NewNop returns a Logger that does nothing.
func NewNop() Logger {
	return &NoOpLogger{}
}

func (l *NoOpLogger) Debug(string, ...Field) {}
func (l *NoOpLogger) Info(string, ...Field)  {}
func (l *NoOpLogger) Warn(string, ...Field)  {}
func (l *NoOpLogger) Error(string, ...Field) {}

// Fatal does not exit.
func (l *NoOpLogger) Fatal(string, ...Field) {}

func (l *NoOpLogger) With(...Field) Logger { return l }

func (l *NoOpLogger) Sync() error { return nil }
