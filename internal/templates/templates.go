// Package templates renders notification emails for form submissions.
package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/h190k/formrelay/internal/forms"
)

// Key identifies a template layout.
type Key string

// Known templates
const (
	KeyContact    Key = "contact"
	KeySupport    Key = "support"
	KeyNewsletter Key = "newsletter"
)

// Message is a rendered notification.
type Message struct {
	Subject string
	Body    string
}

type renderFunc func(v values) Message

// keyPolicy cleans template keys echoed in the generic layout.
var keyPolicy = bluemonday.StrictPolicy()

var layouts = map[Key]renderFunc{
	KeyContact:    renderContact,
	KeySupport:    renderSupport,
	KeyNewsletter: renderNewsletter,
}

// Known reports whether key has a dedicated layout.
func Known(key string) bool {
	_, ok := layouts[Key(key)]
	return ok
}

// Renderer turns submitted data into a Message. It holds no mutable state and
// is safe for concurrent use.
type Renderer struct {
	policy *bluemonday.Policy
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithEscaping strips markup from every submitted value before it is placed
// in a body. Without it values are inserted as submitted.
func WithEscaping() Option {
	return func(r *Renderer) {
		r.policy = bluemonday.StrictPolicy()
	}
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Escaping reports whether submitted values are sanitised.
func (r *Renderer) Escaping() bool {
	return r.policy != nil
}

// Render builds the message for key. Unknown keys fall back to a generic
// dump of every submitted field, so Render never fails.
func (r *Renderer) Render(key string, data forms.Data) Message {
	v := values{data: data, policy: r.policy}
	if layout, ok := layouts[Key(key)]; ok {
		return layout(v)
	}
	return renderGeneric(key, v)
}

// values reads submitted fields for a layout. Subjects use raw text; bodies go
// through the optional policy.
type values struct {
	data   forms.Data
	policy *bluemonday.Policy
}

func (v values) raw(name string) string {
	text, _ := v.data.Text(name)
	return text
}

func (v values) html(name string) string {
	text := v.raw(name)
	if v.policy != nil {
		return v.policy.Sanitize(text)
	}
	return text
}

// rawOr falls back only when name was not submitted; an empty or null value
// renders as the empty string.
func (v values) rawOr(name, fallback string) string {
	if text, ok := v.data.Text(name); ok {
		return text
	}
	return fallback
}

func renderContact(v values) Message {
	var b strings.Builder
	b.WriteString("<h2>New Contact Form Submission</h2>\n")
	paragraph(&b, "Name", v.html("name"))
	paragraph(&b, "Email", v.html("email"))
	paragraph(&b, "Service Type", v.html("service_type"))
	b.WriteString("<hr>\n")
	block(&b, "Message", v.html("message"))

	return Message{
		Subject: "New Contact: " + v.rawOr("service_type", "General"),
		Body:    b.String(),
	}
}

func renderSupport(v values) Message {
	var b strings.Builder
	b.WriteString("<h2>New Support Request</h2>\n")
	paragraph(&b, "Name", v.html("name"))
	paragraph(&b, "Email", v.html("email"))
	paragraph(&b, "Priority", v.html("priority"))
	paragraph(&b, "Issue", v.html("issue"))
	b.WriteString("<hr>\n")
	block(&b, "Description", v.html("description"))

	return Message{
		Subject: "Support Ticket - " + strings.ToUpper(v.rawOr("priority", "Normal")),
		Body:    b.String(),
	}
}

func renderNewsletter(v values) Message {
	var b strings.Builder
	b.WriteString("<h2>New Newsletter Signup</h2>\n")
	paragraph(&b, "Name", v.html("name"))
	paragraph(&b, "Email", v.html("email"))

	return Message{
		Subject: "New Newsletter Subscriber",
		Body:    b.String(),
	}
}

// renderGeneric dumps the fields as indented JSON in submitted order, with
// strings and numbers as sent. Markup is passed through unless the renderer
// escapes values.
func renderGeneric(key string, v values) Message {
	dump := "{}"
	if raw, err := v.data.MarshalJSON(); err == nil {
		var out bytes.Buffer
		if err := json.Indent(&out, raw, "", "  "); err == nil {
			dump = out.String()
		}
	}
	if v.policy != nil {
		dump = v.policy.Sanitize(dump)
	}

	return Message{
		Subject: "New Form Submission",
		Body:    fmt.Sprintf("<h2>Form: %s</h2><pre>%s</pre>", keyPolicy.Sanitize(key), dump),
	}
}

func paragraph(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "<p><strong>%s:</strong> %s</p>\n", label, value)
}

func block(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "<p><strong>%s:</strong></p>\n", label)
	fmt.Fprintf(b, "<p style=\"white-space: pre-wrap;\">%s</p>\n", value)
}
