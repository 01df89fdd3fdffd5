package keylog

type State string

const (
	StateIdle     = State("idle")
	StateTracking = State("tracking")
	StateStopping = State("stopping")
	StateStopped  = State("stopped")
)

// StopReason tells why StartTracking returned.
type StopReason string

const (
	ReasonNone           = StopReason("")
	ReasonEmergency      = StopReason("emergency")
	ReasonHotkey         = StopReason("hotkey")
	ReasonInterrupted    = StopReason("interrupted")
	ReasonBackendFailure = StopReason("backend_failure")
)
