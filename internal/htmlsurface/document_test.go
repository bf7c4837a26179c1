package htmlsurface

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/folio/internal/contact"
	folioerrors "github.com/conneroisu/folio/internal/errors"
)

const page = `<!DOCTYPE html>
<html><body>
<form id="contactForm">
  <div class="form-group">
    <input type="text" id="name" name="name">
    <span class="form-error"></span>
  </div>
  <div class="form-group">
    <input type="email" id="email" name="email" value="ada@example.com">
    <span class="form-error"></span>
  </div>
  <div class="form-group">
    <textarea id="message" name="message">Hello</textarea>
    <span class="form-error"></span>
  </div>
  <button type="submit" class="btn btn-submit">Send Message</button>
</form>
</body></html>`

func parsePage(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestParseLocatesForm(t *testing.T) {
	doc := parsePage(t)

	want := contact.Fields{Name: "", Email: "ada@example.com", Message: "Hello"}
	if diff := cmp.Diff(want, doc.Fields()); diff != "" {
		t.Errorf("Fields() mismatch (-want +got):\n%s", diff)
	}

	label, enabled, bg := doc.Control()
	assert.Equal(t, "Send Message", label)
	assert.True(t, enabled)
	assert.Equal(t, "", bg)
}

func TestParseMissingElements(t *testing.T) {
	_, err := Parse(strings.NewReader(`<form><input id="name"><input id="email"></form>`))
	assert.ErrorContains(t, err, "#message")

	_, err = Parse(strings.NewReader(`<input id="name"><input id="email"><textarea id="message"></textarea>`))
	assert.ErrorContains(t, err, "btn-submit")
}

func TestSetFieldError(t *testing.T) {
	doc := parsePage(t)

	doc.SetFieldError(contact.FieldEmail, contact.MsgEmailInvalid)

	msg, shown := doc.FieldError(contact.FieldEmail)
	assert.Equal(t, contact.MsgEmailInvalid, msg)
	assert.True(t, shown)
	assert.Contains(t, doc.String(), `style="border-color: #ef4444"`)
	assert.Contains(t, doc.String(), `class="form-error show"`)

	doc.SetFieldError(contact.FieldEmail, "")

	msg, shown = doc.FieldError(contact.FieldEmail)
	assert.Equal(t, "", msg)
	assert.False(t, shown)
	assert.NotContains(t, doc.String(), "border-color")
}

func TestSetControlState(t *testing.T) {
	doc := parsePage(t)

	doc.SetControlState("Sending...", false, contact.ColorNone)
	label, enabled, bg := doc.Control()
	assert.Equal(t, "Sending...", label)
	assert.False(t, enabled)
	assert.Equal(t, "", bg)

	doc.SetControlState("Error Sending", false, contact.ColorError)
	_, _, bg = doc.Control()
	assert.Equal(t, "#ef4444", bg)

	doc.SetControlState("Send Message", true, contact.ColorNone)
	label, enabled, bg = doc.Control()
	assert.Equal(t, "Send Message", label)
	assert.True(t, enabled)
	assert.Equal(t, "", bg)
	assert.NotContains(t, doc.String(), "disabled")
}

func TestSetAndClearFields(t *testing.T) {
	doc := parsePage(t)
	fields := contact.Fields{Name: "Ada", Email: "ada@example.com", Message: "Hi <b>there</b>"}

	doc.SetFields(fields)
	assert.Equal(t, fields, doc.Fields())
	assert.Contains(t, doc.String(), "Hi &lt;b&gt;there&lt;/b&gt;")

	doc.ClearFields()
	assert.Equal(t, contact.Fields{}, doc.Fields())
}

type manualScheduler struct{ tasks []func() }

type noopTask struct{}

func (noopTask) Stop() bool { return true }

func (m *manualScheduler) AfterFunc(_ time.Duration, f func()) contact.Task {
	m.tasks = append(m.tasks, f)
	return noopTask{}
}

func TestControllerDrivesDocument(t *testing.T) {
	doc := parsePage(t)
	sched := &manualScheduler{}
	sender := contact.SenderFunc(func(context.Context, contact.Fields) error {
		return folioerrors.NewServerRejectedError(500)
	})
	c := contact.NewController(doc, sender, contact.WithScheduler(sched))

	doc.SetFields(contact.Fields{Name: "Ada", Email: "ada@example.com", Message: "Hi"})
	out := c.Submit(context.Background(), doc.Fields())

	assert.Equal(t, contact.StatusFailed, out.Status)
	label, enabled, bg := doc.Control()
	assert.Equal(t, "Error Sending", label)
	assert.False(t, enabled)
	assert.Equal(t, "#ef4444", bg)

	require.Len(t, sched.tasks, 1)
	sched.tasks[0]()

	label, enabled, _ = doc.Control()
	assert.Equal(t, "Send Message", label)
	assert.True(t, enabled)
	assert.Equal(t, "Ada", doc.Fields().Name)
}
