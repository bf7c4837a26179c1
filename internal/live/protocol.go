// Package live is the message protocol of the page's live connection. The
// preview server pushes every contact UI operation, theme and catalog
// change as a Message and the page answers with Requests. Both ends use
// the types here so the wire format has one definition.
package live

import (
	"github.com/conneroisu/folio/internal/contact"
)

// Operations pushed to the page.
const (
	OpFieldError   = "field_error"
	OpControlState = "control_state"
	OpClearFields  = "clear_fields"
	OpOutcome      = "outcome"
	OpReset        = "reset"
	OpTheme        = "theme"
	OpCatalog      = "catalog"
	OpError        = "error"
)

// Request types sent by the page.
const (
	MsgSubmit   = "submit"
	MsgValidate = "validate"
)

// Message is one server to page message. Ops that clear state omit the
// message, label and color.
type Message struct {
	Op         string `json:"op"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message,omitempty"`
	Label      string `json:"label,omitempty"`
	Enabled    *bool  `json:"enabled,omitempty"`
	Color      string `json:"color,omitempty"`
	Background string `json:"background,omitempty"`
	Status     string `json:"status,omitempty"`
	AttemptID  string `json:"attempt_id,omitempty"`
	Error      string `json:"error,omitempty"`
	Theme      string `json:"theme,omitempty"`
}

// Request is one page to server message.
type Request struct {
	Type   string         `json:"type"`
	Fields contact.Fields `json:"fields"`
}

// FieldError is the message for contact.UI.SetFieldError.
func FieldError(field contact.Field, message string) Message {
	return Message{Op: OpFieldError, Field: string(field), Message: message}
}

// ControlState is the message for contact.UI.SetControlState. The CSS
// background travels with the tag so pages need no color table.
func ControlState(label string, enabled bool, color contact.ColorTag) Message {
	return Message{
		Op:         OpControlState,
		Label:      label,
		Enabled:    &enabled,
		Color:      string(color),
		Background: color.CSS(),
	}
}

// ClearFields is the message for contact.UI.ClearFields.
func ClearFields() Message {
	return Message{Op: OpClearFields}
}

// Outcome reports the result of one submit request.
func Outcome(out contact.Outcome) Message {
	m := Message{Op: OpOutcome, Status: out.Status.String(), AttemptID: out.AttemptID}
	if out.Err != nil {
		m.Error = out.Err.Error()
	}
	return m
}

// Apply performs the contact UI operation carried by m on ui. It reports
// false for every other op, leaving ui untouched.
func Apply(ui contact.UI, m Message) bool {
	switch m.Op {
	case OpFieldError:
		ui.SetFieldError(contact.Field(m.Field), m.Message)
	case OpControlState:
		ui.SetControlState(m.Label, m.Enabled == nil || *m.Enabled, contact.ColorTag(m.Color))
	case OpClearFields:
		ui.ClearFields()
	default:
		return false
	}
	return true
}
