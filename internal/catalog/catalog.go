package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownName   = errors.New("unknown instrument name")
	ErrDuplicateName = errors.New("duplicate instrument name")
	ErrEmpty         = errors.New("empty instrument catalog")
)

// Instrument maps a user-facing name to a provider symbol.
type Instrument struct {
	Name     string `yaml:"name" json:"name"`
	Symbol   string `yaml:"symbol" json:"symbol"`
	Currency string `yaml:"currency" json:"currency"`
}

// Catalog is the static, ordered table of selectable instruments.
// It is built once at startup and never mutated.
type Catalog struct {
	items  []Instrument
	byName map[string]int
}

// New validates the entries and returns a catalog preserving their order.
// Names must be unique and every entry needs a symbol.
func New(items []Instrument) (*Catalog, error) {
	if len(items) == 0 {
		return nil, ErrEmpty
	}
	c := &Catalog{
		items:  make([]Instrument, 0, len(items)),
		byName: make(map[string]int, len(items)),
	}
	for _, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		it.Symbol = strings.TrimSpace(it.Symbol)
		if it.Name == "" || it.Symbol == "" {
			return nil, fmt.Errorf("instrument %q: name and symbol are required", it.Name)
		}
		if it.Currency == "" {
			it.Currency = "USD"
		}
		if _, dup := c.byName[it.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, it.Name)
		}
		c.byName[it.Name] = len(c.items)
		c.items = append(c.items, it)
	}
	return c, nil
}

// Lookup returns the instrument registered under name.
func (c *Catalog) Lookup(name string) (Instrument, error) {
	i, ok := c.byName[name]
	if !ok {
		return Instrument{}, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	return c.items[i], nil
}

// Names returns the display names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.items))
	for i, it := range c.items {
		out[i] = it.Name
	}
	return out
}

func (c *Catalog) Len() int { return len(c.items) }

// At returns the i-th instrument; callers keep i within [0, Len()).
func (c *Catalog) At(i int) Instrument { return c.items[i] }

// Index returns the position of name, or -1.
func (c *Catalog) Index(name string) int {
	if i, ok := c.byName[name]; ok {
		return i
	}
	return -1
}
