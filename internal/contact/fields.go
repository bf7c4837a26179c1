// Package contact implements the contact form controller: field validation,
// a single JSON submission to a remote endpoint, and the control state
// machine that reflects progress on a rendering surface.
//
// The controller never touches a concrete surface. It talks to a UI port
// and a Sender, so the same state machine drives the browser DOM, an HTML
// document on the server, a websocket peer or a terminal.
package contact

import (
	"regexp"
	"strings"
)

// Field names one of the three contact inputs.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldMessage Field = "message"
)

// AllFields lists the inputs in the order they are validated and rendered.
var AllFields = []Field{FieldName, FieldEmail, FieldMessage}

// Validation messages.
const (
	MsgNameRequired    = "Name is required"
	MsgEmailRequired   = "Email is required"
	MsgEmailInvalid    = "Please enter a valid email"
	MsgMessageRequired = "Message is required"
)

// emailPattern is a coarse syntactic check, not RFC 5322.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Fields holds the raw values read from the inputs at submit time.
type Fields struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Get returns the raw value of f.
func (fs Fields) Get(f Field) string {
	switch f {
	case FieldName:
		return fs.Name
	case FieldEmail:
		return fs.Email
	case FieldMessage:
		return fs.Message
	default:
		return ""
	}
}

// ValidationErrors maps each invalid field to a human-readable message.
// An empty map means the fields are valid.
type ValidationErrors map[Field]string

// Valid reports whether no field failed validation.
func (v ValidationErrors) Valid() bool {
	return len(v) == 0
}

// Validate checks every field and returns one message per invalid field.
// All three fields are always checked.
func Validate(fs Fields) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(fs.Name) == "" {
		errs[FieldName] = MsgNameRequired
	}

	email := strings.TrimSpace(fs.Email)
	switch {
	case email == "":
		errs[FieldEmail] = MsgEmailRequired
	case !IsValidEmail(email):
		errs[FieldEmail] = MsgEmailInvalid
	}

	if strings.TrimSpace(fs.Message) == "" {
		errs[FieldMessage] = MsgMessageRequired
	}

	return errs
}

// IsValidEmail reports whether s looks like local@domain.tld.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
