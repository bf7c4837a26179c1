//go:build js && wasm

// Package dom binds the portfolio page in the browser. It implements the
// contact form UI port on the live document and wires the gallery filter,
// theme switch, menu and scroll effects to their event listeners.
package dom

import (
	"fmt"
	"syscall/js"

	"github.com/conneroisu/folio/internal/contact"
	"github.com/conneroisu/folio/internal/htmlsurface"
)

// Surface is a contact.UI over the document's contact form.
type Surface struct {
	inputs map[contact.Field]js.Value
	errors map[contact.Field]js.Value
	submit js.Value
}

var _ contact.UI = (*Surface)(nil)

// FindForm locates the inputs by id, the submit control by class and each
// input's error element inside its parent.
func FindForm(doc js.Value) (*Surface, error) {
	s := &Surface{
		inputs: make(map[contact.Field]js.Value),
		errors: make(map[contact.Field]js.Value),
	}

	for _, f := range contact.AllFields {
		input := doc.Call("getElementById", string(f))
		if !present(input) {
			return nil, fmt.Errorf("input #%s not found", f)
		}
		s.inputs[f] = input
		if parent := input.Get("parentElement"); present(parent) {
			s.errors[f] = parent.Call("querySelector", "."+htmlsurface.ErrorClass)
		}
	}

	s.submit = doc.Call("querySelector", "."+htmlsurface.SubmitClass)
	if !present(s.submit) {
		return nil, fmt.Errorf("submit control .%s not found", htmlsurface.SubmitClass)
	}
	return s, nil
}

// SetFieldError implements contact.UI.
func (s *Surface) SetFieldError(field contact.Field, message string) {
	if el := s.errors[field]; present(el) {
		el.Set("textContent", message)
		if message == "" {
			el.Get("classList").Call("remove", htmlsurface.ShowClass)
		} else {
			el.Get("classList").Call("add", htmlsurface.ShowClass)
		}
	}
	if input := s.inputs[field]; present(input) {
		border := ""
		if message != "" {
			border = contact.ErrorBorderColor
		}
		input.Get("style").Set("borderColor", border)
	}
}

// SetControlState implements contact.UI.
func (s *Surface) SetControlState(label string, enabled bool, color contact.ColorTag) {
	s.submit.Set("textContent", label)
	s.submit.Set("disabled", !enabled)
	s.submit.Get("style").Set("background", color.CSS())
}

// ClearFields implements contact.UI.
func (s *Surface) ClearFields() {
	for _, f := range contact.AllFields {
		s.inputs[f].Set("value", "")
	}
}

// Fields reads the current input values.
func (s *Surface) Fields() contact.Fields {
	return contact.Fields{
		Name:    s.inputs[contact.FieldName].Get("value").String(),
		Email:   s.inputs[contact.FieldEmail].Get("value").String(),
		Message: s.inputs[contact.FieldMessage].Get("value").String(),
	}
}

// IdleLabel returns the control text as rendered.
func (s *Surface) IdleLabel() string {
	return s.submit.Get("textContent").String()
}

func present(v js.Value) bool {
	return !v.IsNull() && !v.IsUndefined()
}
