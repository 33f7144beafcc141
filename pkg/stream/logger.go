package stream

// Logger defines a simple logging interface to avoid circular dependencies
type Logger interface {
	Info() LogEvent
	Error() LogEvent
	Debug() LogEvent
}

// LogEvent defines a simple log event interface
type LogEvent interface {
	Msg(string)
	Err(error) LogEvent
	Str(string, string) LogEvent
	Uint64(string, uint64) LogEvent
	Int(string, int) LogEvent
}

// nopLogger is used whenever no logger is configured, so call sites never
// have to nil-check.
type nopLogger struct{}

func (nopLogger) Info() LogEvent  { return nopEvent{} }
func (nopLogger) Error() LogEvent { return nopEvent{} }
func (nopLogger) Debug() LogEvent { return nopEvent{} }

type nopEvent struct{}

func (nopEvent) Msg(string)                       {}
func (e nopEvent) Err(error) LogEvent             { return e }
func (e nopEvent) Str(string, string) LogEvent    { return e }
func (e nopEvent) Uint64(string, uint64) LogEvent { return e }
func (e nopEvent) Int(string, int) LogEvent       { return e }
