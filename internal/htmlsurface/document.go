// Package htmlsurface implements the contact form UI port over a parsed
// HTML document. It lets the server run an attempt for clients without
// scripting and return the page as it would look in the browser.
package htmlsurface

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/conneroisu/folio/internal/contact"
)

// Selectors used to locate the form elements.
const (
	SubmitClass = "btn-submit"
	ErrorClass  = "form-error"
	ShowClass   = "show"
)

// Document is a contact.UI backed by an HTML tree.
type Document struct {
	mu     sync.Mutex
	root   *html.Node
	inputs map[contact.Field]*html.Node
	errors map[contact.Field]*html.Node
	submit *html.Node
}

var _ contact.UI = (*Document)(nil)

// Parse reads an HTML page and locates the contact form. The inputs are
// found by id (name, email, message), the control by the btn-submit class
// and each error element as the first form-error inside the input's parent.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	d := &Document{
		root:   root,
		inputs: make(map[contact.Field]*html.Node),
		errors: make(map[contact.Field]*html.Node),
	}

	for _, f := range contact.AllFields {
		input := findFirst(root, func(n *html.Node) bool { return attr(n, "id") == string(f) })
		if input == nil {
			return nil, fmt.Errorf("input #%s not found", f)
		}
		d.inputs[f] = input
		if input.Parent != nil {
			d.errors[f] = findFirst(input.Parent, func(n *html.Node) bool { return hasClass(n, ErrorClass) })
		}
	}

	d.submit = findFirst(root, func(n *html.Node) bool { return hasClass(n, SubmitClass) })
	if d.submit == nil {
		return nil, fmt.Errorf("submit control .%s not found", SubmitClass)
	}

	return d, nil
}

// SetFieldError implements contact.UI.
func (d *Document) SetFieldError(field contact.Field, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	input := d.inputs[field]
	if el := d.errors[field]; el != nil {
		setText(el, message)
		if message == "" {
			removeClass(el, ShowClass)
		} else {
			addClass(el, ShowClass)
		}
	}
	if input != nil {
		if message == "" {
			setStyle(input, "border-color", "")
		} else {
			setStyle(input, "border-color", contact.ErrorBorderColor)
		}
	}
}

// SetControlState implements contact.UI.
func (d *Document) SetControlState(label string, enabled bool, color contact.ColorTag) {
	d.mu.Lock()
	defer d.mu.Unlock()

	setText(d.submit, label)
	if enabled {
		removeAttr(d.submit, "disabled")
	} else {
		setAttr(d.submit, "disabled", "")
	}
	setStyle(d.submit, "background", color.CSS())
}

// ClearFields implements contact.UI.
func (d *Document) ClearFields() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range contact.AllFields {
		setValue(d.inputs[f], "")
	}
}

// SetFields writes values into the inputs, as a browser would keep them
// after a failed attempt.
func (d *Document) SetFields(fields contact.Fields) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range contact.AllFields {
		setValue(d.inputs[f], fields.Get(f))
	}
}

// Fields reads the current input values.
func (d *Document) Fields() contact.Fields {
	d.mu.Lock()
	defer d.mu.Unlock()
	return contact.Fields{
		Name:    value(d.inputs[contact.FieldName]),
		Email:   value(d.inputs[contact.FieldEmail]),
		Message: value(d.inputs[contact.FieldMessage]),
	}
}

// FieldError returns the text shown for field and whether it is visible.
func (d *Document) FieldError(field contact.Field) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	el := d.errors[field]
	if el == nil {
		return "", false
	}
	return textContent(el), hasClass(el, ShowClass)
}

// Control returns the submit control's label, enabled flag and background.
func (d *Document) Control() (label string, enabled bool, background string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, disabled := lookupAttr(d.submit, "disabled")
	return textContent(d.submit), !disabled, styleValue(d.submit, "background")
}

// Render writes the document.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// String renders the document to a string.
func (d *Document) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

func value(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.DataAtom == atom.Textarea {
		return textContent(n)
	}
	return attr(n, "value")
}

func setValue(n *html.Node, v string) {
	if n == nil {
		return
	}
	if n.DataAtom == atom.Textarea {
		setText(n, v)
		return
	}
	if v == "" {
		removeAttr(n, "value")
		return
	}
	setAttr(n, "value", v)
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func addClass(n *html.Node, class string) {
	if hasClass(n, class) {
		return
	}
	classes := strings.Fields(attr(n, "class"))
	setAttr(n, "class", strings.Join(append(classes, class), " "))
}

func removeClass(n *html.Node, class string) {
	var kept []string
	for _, c := range strings.Fields(attr(n, "class")) {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		removeAttr(n, "class")
		return
	}
	setAttr(n, "class", strings.Join(kept, " "))
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// styleDecls splits an inline style into ordered property/value pairs.
func styleDecls(n *html.Node) [][2]string {
	var decls [][2]string
	for _, part := range strings.Split(attr(n, "style"), ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.TrimSpace(prop)
		if prop == "" {
			continue
		}
		decls = append(decls, [2]string{prop, strings.TrimSpace(val)})
	}
	return decls
}

func styleValue(n *html.Node, prop string) string {
	for _, d := range styleDecls(n) {
		if d[0] == prop {
			return d[1]
		}
	}
	return ""
}

// setStyle sets prop, or removes it when val is empty.
func setStyle(n *html.Node, prop, val string) {
	decls := styleDecls(n)
	out := decls[:0]
	replaced := false
	for _, d := range decls {
		if d[0] != prop {
			out = append(out, d)
			continue
		}
		if val != "" && !replaced {
			out = append(out, [2]string{prop, val})
			replaced = true
		}
	}
	if val != "" && !replaced {
		out = append(out, [2]string{prop, val})
	}

	if len(out) == 0 {
		removeAttr(n, "style")
		return
	}
	parts := make([]string, len(out))
	for i, d := range out {
		parts[i] = d[0] + ": " + d[1]
	}
	setAttr(n, "style", strings.Join(parts, "; "))
}
