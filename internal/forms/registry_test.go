package forms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultsRegistry(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(Defaults())
	require.NoError(t, err)
	require.Equal(t, 3, r.Len())

	def, ok := r.Lookup("newsletter")
	require.True(t, ok)
	require.Equal(t, "Newsletter Signup", def.DisplayName)
	require.Equal(t, []string{"name", "email"}, def.RequiredFields)
	require.Equal(t, []string{"newsletter@h190k.com"}, def.Recipients)
	require.Equal(t, "newsletter", def.TemplateKey)

	_, ok = r.Lookup("unknown")
	require.False(t, ok)
}

func TestRegistryList(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(Defaults())
	require.NoError(t, err)

	list := r.List()
	require.Len(t, list, 3)
	require.Equal(t, "contact", list[0].ID)
	require.Equal(t, "newsletter", list[1].ID)
	require.Equal(t, "support", list[2].ID)
	require.Equal(t, []string{"name", "email", "priority", "issue", "description"}, list[2].Fields)
}

func TestRegistryLookupReturnsCopy(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(Defaults())
	require.NoError(t, err)

	def, _ := r.Lookup("contact")
	def.RequiredFields[0] = "mutated"
	def.Recipients[0] = "evil@example.com"

	again, _ := r.Lookup("contact")
	require.Equal(t, "name", again.RequiredFields[0])
	require.Equal(t, "info@h190k.com", again.Recipients[0])
}

func TestNewRegistryRejectsInvalid(t *testing.T) {
	t.Parallel()

	valid := Definition{
		ID:             "x",
		DisplayName:    "X",
		RequiredFields: []string{"a"},
		Recipients:     []string{"a@example.com"},
		TemplateKey:    "x",
	}

	tests := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"no id", func(d *Definition) { d.ID = "" }},
		{"no name", func(d *Definition) { d.DisplayName = "" }},
		{"no recipients", func(d *Definition) { d.Recipients = nil }},
		{"bad recipient", func(d *Definition) { d.Recipients = []string{"nope"} }},
		{"no fields", func(d *Definition) { d.RequiredFields = nil }},
		{"blank field", func(d *Definition) { d.RequiredFields = []string{"a", ""} }},
		{"no template", func(d *Definition) { d.TemplateKey = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			def := valid
			def.RequiredFields = []string{"a"}
			def.Recipients = []string{"a@example.com"}
			tt.mutate(&def)

			_, err := NewRegistry([]Definition{def})
			require.ErrorIs(t, err, ErrInvalidDefinition)
		})
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	t.Parallel()

	defs := append(Defaults(), Defaults()[0])
	_, err := NewRegistry(defs)
	require.ErrorIs(t, err, ErrDuplicateForm)
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	raw := []byte(`
forms:
  quote:
    name: Quote Request
    fields: [name, email, budget]
  careers:
    name: Careers
    fields: [name, email, cv_url]
    recipients: [jobs@h190k.com]
    template: generic
`)

	defs, err := ParseFile(raw, "info@h190k.com")
	require.NoError(t, err)
	require.Len(t, defs, 2)

	require.Equal(t, "careers", defs[0].ID)
	require.Equal(t, []string{"jobs@h190k.com"}, defs[0].Recipients)
	require.Equal(t, "generic", defs[0].TemplateKey)

	require.Equal(t, "quote", defs[1].ID)
	require.Equal(t, []string{"info@h190k.com"}, defs[1].Recipients)
	require.Equal(t, "quote", defs[1].TemplateKey)

	r, err := NewRegistry(defs)
	require.NoError(t, err)
	require.Equal(t, 2, r.Len())
}

func TestParseFileErrors(t *testing.T) {
	t.Parallel()

	_, err := ParseFile([]byte("forms: [oops"), "")
	require.Error(t, err)

	_, err = ParseFile([]byte("forms: {}"), "")
	require.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "forms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("forms:\n  a:\n    name: A\n    fields: [x]\n"), 0o600))

	defs, err := LoadFile(path, "ops@h190k.com")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, []string{"ops@h190k.com"}, defs[0].Recipients)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.Error(t, err)
}

func TestLoadExampleFile(t *testing.T) {
	defs, err := LoadFile(filepath.Join("..", "..", "forms.example.yaml"), "inbox@h190k.com")
	require.NoError(t, err)

	r, err := NewRegistry(defs)
	require.NoError(t, err)
	require.Equal(t, 4, r.Len())

	quote, ok := r.Lookup("quote")
	require.True(t, ok)
	require.Equal(t, []string{"inbox@h190k.com"}, quote.Recipients)
	require.Equal(t, "quote", quote.TemplateKey)

	for _, def := range Defaults() {
		got, ok := r.Lookup(def.ID)
		require.True(t, ok)
		require.Equal(t, def, got)
	}
}
