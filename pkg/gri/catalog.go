// Package gri exposes the embedded GRI indicator catalog used to label report sections.
package gri

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Indicator is a single GRI disclosure.
type Indicator struct {
	Code   string `yaml:"code" json:"code"`
	Title  string `yaml:"title" json:"title"`
	Pillar string `yaml:"pillar" json:"pillar"`
	Step   string `yaml:"step" json:"step"`
}

// Catalog indexes indicators by normalised code and by wizard step.
type Catalog struct {
	Version    string
	indicators []Indicator
	byCode     map[string]Indicator
	byStep     map[string][]Indicator
}

type catalogFile struct {
	Version    string      `yaml:"version"`
	Indicators []Indicator `yaml:"indicators"`
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// Parse builds a catalog from YAML bytes. Duplicate codes are rejected.
func Parse(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse gri catalog: %w", err)
	}
	c := &Catalog{
		Version: file.Version,
		byCode:  make(map[string]Indicator, len(file.Indicators)),
		byStep:  make(map[string][]Indicator),
	}
	for _, ind := range file.Indicators {
		key := NormalizeCode(ind.Code)
		if key == "" {
			return nil, fmt.Errorf("gri catalog: indicator without code")
		}
		if _, dup := c.byCode[key]; dup {
			return nil, fmt.Errorf("gri catalog: duplicate code %q", ind.Code)
		}
		c.byCode[key] = ind
		c.byStep[ind.Step] = append(c.byStep[ind.Step], ind)
		c.indicators = append(c.indicators, ind)
	}
	return c, nil
}

// NormalizeCode uppercases and collapses separators so "gri_305-1" matches "GRI 305-1".
func NormalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	code = strings.NewReplacer("_", " ", ".", "-").Replace(code)
	return strings.Join(strings.Fields(code), " ")
}

// Lookup finds an indicator by code.
func (c *Catalog) Lookup(code string) (Indicator, bool) {
	ind, ok := c.byCode[NormalizeCode(code)]
	return ind, ok
}

// ByStep lists indicators attached to a wizard step in catalog order.
func (c *Catalog) ByStep(step string) []Indicator {
	out := make([]Indicator, len(c.byStep[step]))
	copy(out, c.byStep[step])
	return out
}

// All returns every indicator in catalog order.
func (c *Catalog) All() []Indicator {
	out := make([]Indicator, len(c.indicators))
	copy(out, c.indicators)
	return out
}

// Unknown returns the sorted keys that do not resolve to an indicator.
func (c *Catalog) Unknown(keys []string) []string {
	var unknown []string
	for _, k := range keys {
		if _, ok := c.Lookup(k); !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}
