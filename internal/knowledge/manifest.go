package knowledge

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the optional override manifest looked up at the knowledge root.
const ManifestFile = "index.yaml"

//go:embed manifest.yaml
var defaultManifest []byte

// Topic maps a subcategory name to a markdown file relative to the knowledge root.
type Topic struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// Category groups topics. Default names the topic used when no subcategory is given;
// without a default the caller gets a listing of the topics instead.
type Category struct {
	Name    string  `yaml:"name"`
	Default string  `yaml:"default,omitempty"`
	Topics  []Topic `yaml:"topics"`
}

// Manifest is the ordered category/topic table of a knowledge base.
type Manifest struct {
	Categories []Category `yaml:"categories"`
}

// DefaultManifest returns the built-in manifest.
func DefaultManifest() (*Manifest, error) {
	return ParseManifest(defaultManifest)
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if len(m.Categories) == 0 {
		return fmt.Errorf("knowledge manifest has no categories")
	}
	seen := map[string]bool{}
	for _, c := range m.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("knowledge manifest has a category without a name")
		}
		if seen[name] {
			return fmt.Errorf("knowledge manifest repeats category %q", name)
		}
		seen[name] = true

		topics := map[string]bool{}
		for _, t := range c.Topics {
			if strings.TrimSpace(t.Name) == "" || strings.TrimSpace(t.File) == "" {
				return fmt.Errorf("category %q has a topic without name or file", name)
			}
			if topics[t.Name] {
				return fmt.Errorf("category %q repeats topic %q", name, t.Name)
			}
			topics[t.Name] = true
		}
		if c.Default != "" && !topics[c.Default] {
			return fmt.Errorf("category %q defaults to unknown topic %q", name, c.Default)
		}
	}
	return nil
}

// CategoryNames returns category names in manifest order.
func (m *Manifest) CategoryNames() []string {
	return lo.Map(m.Categories, func(c Category, _ int) string { return c.Name })
}

// Category returns the named category.
func (m *Manifest) Category(name string) (Category, bool) {
	return lo.Find(m.Categories, func(c Category) bool { return c.Name == name })
}

// TopicNames returns the topic names of a category in manifest order.
func (c Category) TopicNames() []string {
	return lo.Map(c.Topics, func(t Topic, _ int) string { return t.Name })
}

// Topic returns the named topic of the category.
func (c Category) Topic(name string) (Topic, bool) {
	return lo.Find(c.Topics, func(t Topic) bool { return t.Name == name })
}
