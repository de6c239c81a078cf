package forms

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

type fileDefinition struct {
	Name       string   `yaml:"name"`
	Fields     []string `yaml:"fields"`
	Recipients []string `yaml:"recipients"`
	Template   string   `yaml:"template"`
}

type formsFile struct {
	Forms map[string]fileDefinition `yaml:"forms"`
}

// LoadFile reads form definitions from a YAML file:
//
//	forms:
//	  contact:
//	    name: Contact Form
//	    fields: [name, email, message]
//	    recipients: [info@example.com]
//	    template: contact
//
// Forms without recipients are sent to defaultRecipient; forms without a
// template use their id as template key.
func LoadFile(path, defaultRecipient string) ([]Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read forms file: %w", err)
	}
	return ParseFile(raw, defaultRecipient)
}

// ParseFile decodes the YAML forms document in raw.
func ParseFile(raw []byte, defaultRecipient string) ([]Definition, error) {
	var doc formsFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse forms file: %w", err)
	}
	if len(doc.Forms) == 0 {
		return nil, fmt.Errorf("%w: forms file defines no forms", ErrInvalidDefinition)
	}

	ids := make([]string, 0, len(doc.Forms))
	for id := range doc.Forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	defs := make([]Definition, 0, len(ids))
	for _, id := range ids {
		fd := doc.Forms[id]

		recipients := fd.Recipients
		if len(recipients) == 0 && defaultRecipient != "" {
			recipients = []string{defaultRecipient}
		}

		template := fd.Template
		if template == "" {
			template = id
		}

		defs = append(defs, Definition{
			ID:             id,
			DisplayName:    fd.Name,
			RequiredFields: fd.Fields,
			Recipients:     recipients,
			TemplateKey:    template,
		})
	}

	return defs, nil
}
