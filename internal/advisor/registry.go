package advisor

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownCategory is returned for categories outside the fixed set; there is no default template.
var ErrUnknownCategory = errors.New("invalid category")

//go:embed templates/prompts.yaml
var embeddedPrompts []byte

type promptFile struct {
	Version  string            `yaml:"version"`
	Advice   map[string]string `yaml:"advice"`
	Feedback string            `yaml:"feedback"`
}

// Registry maps every advice category to its prompt template.
type Registry struct {
	version  string
	advice   map[Category]string
	feedback string
}

// LoadRegistry loads the templates baked into the binary.
func LoadRegistry() (*Registry, error) {
	return ParseRegistry(embeddedPrompts)
}

// LoadRegistryFile loads templates from path, falling back to the embedded set when path is empty.
func LoadRegistryFile(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return LoadRegistry()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt templates: %w", err)
	}

	return ParseRegistry(data)
}

// ParseRegistry decodes a template document and checks that all categories are covered.
func ParseRegistry(data []byte) (*Registry, error) {
	var file promptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode prompt templates: %w", err)
	}

	registry := &Registry{
		version:  file.Version,
		advice:   make(map[Category]string, len(file.Advice)),
		feedback: strings.TrimSpace(file.Feedback),
	}

	for _, category := range Categories() {
		text := strings.TrimSpace(file.Advice[string(category)])
		if text == "" {
			return nil, fmt.Errorf("prompt template for category %q is missing", category)
		}
		registry.advice[category] = text
	}

	for key := range file.Advice {
		if _, ok := registry.advice[Category(key)]; !ok {
			return nil, fmt.Errorf("prompt template for unknown category %q", key)
		}
	}

	if registry.feedback == "" {
		return nil, errors.New("feedback prompt template is missing")
	}

	return registry, nil
}

// Lookup returns the template for category or ErrUnknownCategory.
func (r *Registry) Lookup(category string) (string, error) {
	text, ok := r.advice[Category(category)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return text, nil
}

func (r *Registry) Feedback() string {
	return r.feedback
}

func (r *Registry) Version() string {
	return r.version
}
