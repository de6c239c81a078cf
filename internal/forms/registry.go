// Package forms holds the static form registry and submitted field data.
package forms

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidDefinition indicates a form definition failed validation.
	ErrInvalidDefinition = errors.New("invalid form definition")

	// ErrDuplicateForm indicates two definitions share an id.
	ErrDuplicateForm = errors.New("duplicate form id")
)

// Definition describes one form: which fields it requires, who is notified and
// how the notification is rendered.
type Definition struct {
	ID             string   `validate:"required"`
	DisplayName    string   `validate:"required"`
	RequiredFields []string `validate:"required,min=1,dive,required"`
	Recipients     []string `validate:"required,min=1,dive,email"`
	TemplateKey    string   `validate:"required"`
}

// Summary is the public view of a definition.
type Summary struct {
	ID          string
	DisplayName string
	Fields      []string
}

// Registry is an immutable, in-memory set of form definitions.
type Registry struct {
	forms map[string]Definition
	ids   []string
}

// NewRegistry validates defs and builds a registry from them.
func NewRegistry(defs []Definition) (*Registry, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	r := &Registry{forms: make(map[string]Definition, len(defs))}
	for _, def := range defs {
		if err := validate.Struct(def); err != nil {
			return nil, fmt.Errorf("%w %q: %s", ErrInvalidDefinition, def.ID, describe(err))
		}
		if _, exists := r.forms[def.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateForm, def.ID)
		}

		def.RequiredFields = slices.Clone(def.RequiredFields)
		def.Recipients = slices.Clone(def.Recipients)
		r.forms[def.ID] = def
		r.ids = append(r.ids, def.ID)
	}
	sort.Strings(r.ids)

	return r, nil
}

// Lookup returns the definition registered under id. An unknown id is a normal
// outcome and reported through ok.
func (r *Registry) Lookup(id string) (def Definition, ok bool) {
	def, ok = r.forms[id]
	if !ok {
		return Definition{}, false
	}
	def.RequiredFields = slices.Clone(def.RequiredFields)
	def.Recipients = slices.Clone(def.Recipients)
	return def, true
}

// List returns a summary of every registered form ordered by id.
func (r *Registry) List() []Summary {
	out := make([]Summary, 0, len(r.ids))
	for _, id := range r.ids {
		def := r.forms[id]
		out = append(out, Summary{
			ID:          def.ID,
			DisplayName: def.DisplayName,
			Fields:      slices.Clone(def.RequiredFields),
		})
	}
	return out
}

// Len returns the number of registered forms.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Defaults returns the built-in forms.
func Defaults() []Definition {
	return []Definition{
		{
			ID:             "contact",
			DisplayName:    "Contact Form",
			RequiredFields: []string{"name", "email", "message", "service_type"},
			Recipients:     []string{"info@h190k.com"},
			TemplateKey:    "contact",
		},
		{
			ID:             "support",
			DisplayName:    "Support Form",
			RequiredFields: []string{"name", "email", "priority", "issue", "description"},
			Recipients:     []string{"support@h190k.com"},
			TemplateKey:    "support",
		},
		{
			ID:             "newsletter",
			DisplayName:    "Newsletter Signup",
			RequiredFields: []string{"name", "email"},
			Recipients:     []string{"newsletter@h190k.com"},
			TemplateKey:    "newsletter",
		},
	}
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", e.Field(), e.Tag()))
	}
	return strings.Join(parts, ", ")
}
