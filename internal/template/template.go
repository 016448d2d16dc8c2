// Package template resolves a requested question capacity to the document
// template the renderer fills.
package template

import (
	_ "embed"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Capacities is the fixed set of template sizes. No other capacity is ever
// accepted, whatever a Catalog is configured with.
var Capacities = [...]int{25, 50, 100, 125, 150, 200}

//go:embed layouts.yml
var layoutsYAML []byte

// Layout is renderer-facing metadata. The pipeline passes it through
// without interpreting it.
type Layout map[string]string

// Descriptor is one resolved template.
type Descriptor struct {
	ID       string `json:"id"`
	Capacity int    `json:"capacity"`
	Layout   Layout `json:"layout"`
}

// UnknownTemplateError reports a capacity outside the allowed set.
type UnknownTemplateError struct {
	Value   string
	Allowed []int
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("unknown template capacity %q (allowed: %s)", e.Value, joinInts(e.Allowed))
}

// Catalog is the explicit set of capacities a resolver accepts.
type Catalog struct {
	allowed []int
	layouts map[int]Layout
}

type layoutFile struct {
	Defaults Layout         `yaml:"defaults"`
	Layouts  map[int]Layout `yaml:"layouts"`
}

// NewCatalog builds a Catalog restricted to capacities, each of which must
// be a member of Capacities. An empty list selects the full set.
func NewCatalog(capacities []int) (*Catalog, error) {
	if len(capacities) == 0 {
		capacities = Capacities[:]
	}

	var lf layoutFile
	if err := yaml.Unmarshal(layoutsYAML, &lf); err != nil {
		return nil, fmt.Errorf("template: parse embedded layouts: %w", err)
	}

	c := &Catalog{layouts: make(map[int]Layout, len(capacities))}
	for _, n := range capacities {
		if !slices.Contains(Capacities[:], n) {
			return nil, &UnknownTemplateError{Value: strconv.Itoa(n), Allowed: Capacities[:]}
		}
		if slices.Contains(c.allowed, n) {
			continue
		}
		layout := maps.Clone(lf.Defaults)
		if layout == nil {
			layout = Layout{}
		}
		maps.Copy(layout, lf.Layouts[n])
		c.allowed = append(c.allowed, n)
		c.layouts[n] = layout
	}
	slices.Sort(c.allowed)
	return c, nil
}

// DefaultCatalog returns a Catalog over every capacity in Capacities.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(nil)
	if err != nil {
		panic(err)
	}
	return c
}

// Resolve returns the Descriptor for capacity. It is pure: no I/O, and the
// returned Layout is a copy the caller may keep.
func (c *Catalog) Resolve(capacity int) (Descriptor, error) {
	layout, ok := c.layouts[capacity]
	if !ok {
		return Descriptor{}, &UnknownTemplateError{Value: strconv.Itoa(capacity), Allowed: c.Allowed()}
	}
	return Descriptor{
		ID:       fmt.Sprintf("template-%d", capacity),
		Capacity: capacity,
		Layout:   maps.Clone(layout),
	}, nil
}

// ResolveString resolves a capacity given as text, as submitted by a form.
func (c *Catalog) ResolveString(value string) (Descriptor, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return Descriptor{}, &UnknownTemplateError{Value: value, Allowed: c.Allowed()}
	}
	return c.Resolve(n)
}

// Allowed returns the accepted capacities in ascending order.
func (c *Catalog) Allowed() []int {
	return slices.Clone(c.allowed)
}

// List returns a Descriptor for every accepted capacity.
func (c *Catalog) List() []Descriptor {
	out := make([]Descriptor, 0, len(c.allowed))
	for _, n := range c.allowed {
		d, _ := c.Resolve(n)
		out = append(out, d)
	}
	return out
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
