package contact

// Status is the lifecycle state of a submission attempt.
type Status int

const (
	StatusIdle Status = iota
	StatusValidating
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

// String returns the string representation of the Status
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusValidating:
		return "validating"
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is a result awaiting the reset to idle.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}
