package contact

// ColorTag names the background treatment of the submit control.
type ColorTag string

const (
	ColorNone    ColorTag = ""
	ColorSuccess ColorTag = "success"
	ColorError   ColorTag = "error"
)

// CSS colors used by surfaces that render styles directly.
const (
	SuccessColor     = "#10b981"
	ErrorColor       = "#ef4444"
	ErrorBorderColor = "#ef4444"
)

// CSS returns the background value for the tag, empty for ColorNone.
func (c ColorTag) CSS() string {
	switch c {
	case ColorSuccess:
		return SuccessColor
	case ColorError:
		return ErrorColor
	default:
		return ""
	}
}

// UI is the rendering surface port the controller drives. Calls arrive
// serialized; implementations must not call back into the Controller.
type UI interface {
	// SetFieldError shows message next to field. An empty message hides
	// the error element and clears the input's error indicator.
	SetFieldError(field Field, message string)
	// SetControlState updates the submit control's label, enabled flag and
	// background treatment.
	SetControlState(label string, enabled bool, color ColorTag)
	// ClearFields empties all three inputs.
	ClearFields()
}

// Labels are the submit control texts for each phase.
type Labels struct {
	Idle    string
	Sending string
	Sent    string
	Failed  string
}

// DefaultLabels returns the stock control texts.
func DefaultLabels() Labels {
	return Labels{
		Idle:    "Send Message",
		Sending: "Sending...",
		Sent:    "✓ Message Sent!",
		Failed:  "Error Sending",
	}
}
