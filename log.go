package faunalink

//==============================================================================

// EventLog defines event logger that allows us to record events for a
// specific action that occured.
type EventLog interface {
	Log(context interface{}, name string, message string, data ...interface{})
	Error(context interface{}, name string, err error, message string, data ...interface{})
}

//==============================================================================

// SilentLog provides an EventLog that discards everything, used when the
// caller supplies no logger of its own.
var SilentLog silentLog

type silentLog struct{}

// Log discards the log report.
func (silentLog) Log(context interface{}, name string, message string, data ...interface{}) {}

// Error discards the error report.
func (silentLog) Error(context interface{}, name string, err error, message string, data ...interface{}) {
}
