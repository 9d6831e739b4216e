// Package locale resolves message keys to display strings from a YAML
// catalog, negotiating the closest configured language.
package locale

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var defaultCatalog []byte

// Catalog holds the messages of one negotiated language plus the catalog's
// first language as fallback.
type Catalog struct {
	tag      language.Tag
	messages map[string]string
	fallback map[string]string
}

// Default loads the embedded catalog for locale.
func Default(locale string) (*Catalog, error) {
	return parse(defaultCatalog, locale)
}

// LoadFile loads a catalog file for locale.
func LoadFile(path, locale string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open locale catalog: %w", err)
	}
	defer f.Close()
	return Load(f, locale)
}

// Load reads a catalog of the form {language: {key: message}}.
func Load(r io.Reader, locale string) (*Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read locale catalog: %w", err)
	}
	return parse(raw, locale)
}

func parse(raw []byte, locale string) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse locale catalog: %w", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("locale catalog must be a mapping of languages")
	}

	// Decode through the node tree so language order is preserved; the first
	// language is the fallback.
	root := doc.Content[0]
	tags := make([]language.Tag, 0, len(root.Content)/2)
	tables := make([]map[string]string, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		tag, err := language.Parse(root.Content[i].Value)
		if err != nil {
			return nil, fmt.Errorf("locale catalog language %q: %w", root.Content[i].Value, err)
		}
		var messages map[string]string
		if err := root.Content[i+1].Decode(&messages); err != nil {
			return nil, fmt.Errorf("locale catalog messages for %s: %w", tag, err)
		}
		tags = append(tags, tag)
		tables = append(tables, messages)
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("locale catalog has no languages")
	}

	requested := language.Und
	if locale != "" {
		parsed, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("parse locale %q: %w", locale, err)
		}
		requested = parsed
	}
	_, index, _ := language.NewMatcher(tags).Match(requested)

	return &Catalog{
		tag:      tags[index],
		messages: tables[index],
		fallback: tables[0],
	}, nil
}

// Language reports the negotiated catalog language.
func (c *Catalog) Language() language.Tag {
	return c.tag
}

// GetString returns the message for key, falling back to the catalog's first
// language and finally to the key itself.
func (c *Catalog) GetString(key string) string {
	if msg, ok := c.messages[key]; ok {
		return msg
	}
	if msg, ok := c.fallback[key]; ok {
		return msg
	}
	return key
}
