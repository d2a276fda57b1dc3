package prompts

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed platforms.yaml
var platformsYAML []byte

type Platform struct {
	Key     string `yaml:"key"`
	Label   string `yaml:"label"`
	Hint    string `yaml:"hint"`
	Default bool   `yaml:"default"`
}

type Catalog struct {
	platforms []Platform
	byKey     map[string]Platform
}

// DefaultCatalog parses the embedded platform list.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(platformsYAML)
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	var doc struct {
		Platforms []Platform `yaml:"platforms"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse platform catalog: %w", err)
	}
	c := &Catalog{byKey: map[string]Platform{}}
	for _, p := range doc.Platforms {
		p.Key = normalizeKey(p.Key)
		if p.Key == "" {
			return nil, fmt.Errorf("platform catalog: entry with empty key")
		}
		if _, dup := c.byKey[p.Key]; dup {
			return nil, fmt.Errorf("platform catalog: duplicate key %q", p.Key)
		}
		c.platforms = append(c.platforms, p)
		c.byKey[p.Key] = p
	}
	if len(c.Defaults()) == 0 {
		return nil, fmt.Errorf("platform catalog: no default platforms")
	}
	return c, nil
}

func (c *Catalog) Defaults() []string {
	var out []string
	for _, p := range c.platforms {
		if p.Default {
			out = append(out, p.Key)
		}
	}
	return out
}

func (c *Catalog) Keys() []string {
	out := make([]string, 0, len(c.platforms))
	for _, p := range c.platforms {
		out = append(out, p.Key)
	}
	return out
}

func (c *Catalog) Lookup(key string) (Platform, bool) {
	p, ok := c.byKey[normalizeKey(key)]
	return p, ok
}

// Label falls back to the key for platforms outside the catalog.
func (c *Catalog) Label(key string) string {
	if p, ok := c.Lookup(key); ok && p.Label != "" {
		return p.Label
	}
	return normalizeKey(key)
}

// Resolve lower-cases and de-duplicates keys, keeping order. An empty list
// resolves to the defaults.
func (c *Catalog) Resolve(keys []string) []string {
	if len(keys) == 0 {
		return c.Defaults()
	}
	seen := map[string]bool{}
	var out []string
	for _, k := range keys {
		k = normalizeKey(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	if len(out) == 0 {
		return c.Defaults()
	}
	return out
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}
