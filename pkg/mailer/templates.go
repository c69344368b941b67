package mailer

import (
	_ "embed"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// Built-in template ids.
const (
	TemplateWelcome           = "welcome"
	TemplateResetPassword     = "reset-password"
	TemplateOrderConfirmation = "order-confirmation"
)

//go:embed templates.yaml
var defaultTemplates []byte

// Template is a named set of subject, HTML and text patterns.
type Template struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Subject     string `yaml:"subject"`
	HTML        string `yaml:"html"`
	Text        string `yaml:"text"`
}

// TemplateStore is an immutable catalogue of templates keyed by id.
// It is safe for concurrent use.
type TemplateStore struct {
	templates map[string]Template
}

// NewTemplateStore loads the built-in catalogue.
func NewTemplateStore() (*TemplateStore, error) {
	return ParseTemplateStore(defaultTemplates)
}

// ParseTemplateStore builds a store from a YAML document of the form
// {templates: [{id, description, subject, html, text}, ...]}.
func ParseTemplateStore(data []byte) (*TemplateStore, error) {
	var doc struct {
		Templates []Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplates, err)
	}

	store := &TemplateStore{templates: make(map[string]Template, len(doc.Templates))}
	for _, t := range doc.Templates {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: template without id", ErrInvalidTemplates)
		}
		if _, dup := store.templates[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate template id %q", ErrInvalidTemplates, t.ID)
		}
		store.templates[t.ID] = t
	}
	return store, nil
}

// Lookup returns the template registered under id.
func (s *TemplateStore) Lookup(id string) (Template, error) {
	t, ok := s.templates[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return t, nil
}

// Available maps every template id to its description.
func (s *TemplateStore) Available() map[string]string {
	out := make(map[string]string, len(s.templates))
	for id, t := range s.templates {
		out[id] = t.Description
	}
	return out
}

// IDs returns the registered ids in sorted order.
func (s *TemplateStore) IDs() []string {
	return slices.Sorted(maps.Keys(s.templates))
}
