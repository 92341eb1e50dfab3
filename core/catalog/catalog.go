// Package catalog - Component catalog
// Holds the four independent component sections (core, logic, switch, adc).
// A Catalog is immutable once built and safe to share between goroutines.
package catalog

import (
	"fmt"
	"sort"

	"memarea/core/types"
	"memarea/internal/errors"
)

// Entry is a named component inside a section
type Entry struct {
	Name      string
	Component types.Component
}

// View is a read-only, name-ordered view of one section
type View struct {
	kind    types.Kind
	entries []Entry
}

// Kind returns the section's kind
func (v View) Kind() types.Kind {
	return v.kind
}

// Len returns the number of components in the section
func (v View) Len() int {
	return len(v.entries)
}

// Each calls fn for every entry in lexicographic name order until fn returns false
func (v View) Each(fn func(Entry) bool) {
	for _, e := range v.entries {
		if !fn(e) {
			return
		}
	}
}

// Names returns the sorted component names
func (v View) Names() []string {
	names := make([]string, len(v.entries))
	for i, e := range v.entries {
		names[i] = e.Name
	}
	return names
}

// Get looks a component up by name
func (v View) Get(name string) (types.Component, bool) {
	i := sort.Search(len(v.entries), func(i int) bool { return v.entries[i].Name >= name })
	if i < len(v.entries) && v.entries[i].Name == name {
		return v.entries[i].Component, true
	}
	return nil, false
}

// Catalog is the authoritative component catalog
type Catalog struct {
	sections map[types.Kind]View
}

// Core returns the named core cell
func (c *Catalog) Core(name string) (types.CoreCell, error) {
	view, err := c.CollectionFor(types.KindCore)
	if err != nil {
		return types.CoreCell{}, err
	}
	comp, ok := view.Get(name)
	if !ok {
		return types.CoreCell{}, errors.MissingCell(name)
	}
	cell, ok := comp.(types.CoreCell)
	if !ok {
		return types.CoreCell{}, errors.Newf(errors.TypeInternal, "core entry %q has type %T", name, comp)
	}
	return cell, nil
}

// CollectionFor returns the view for a kind. A section that was never
// declared is an INVALID_DATABASE error; a declared empty section is not.
func (c *Catalog) CollectionFor(kind types.Kind) (View, error) {
	view, ok := c.sections[kind]
	if !ok {
		return View{}, errors.InvalidDatabase(kind.String())
	}
	return view, nil
}

// HasSection reports whether a kind's section is present
func (c *Catalog) HasSection(kind types.Kind) bool {
	_, ok := c.sections[kind]
	return ok
}

// Kinds returns the present sections in canonical order
func (c *Catalog) Kinds() []types.Kind {
	var kinds []types.Kind
	for _, k := range types.AllKinds {
		if c.HasSection(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Builder returns a builder pre-populated with this catalog's contents, for
// producing a modified copy.
func (c *Catalog) Builder() *Builder {
	b := NewBuilder()
	for kind, view := range c.sections {
		b.Declare(kind)
		for _, e := range view.entries {
			b.sections[kind][e.Name] = e.Component
		}
	}
	return b
}

// Stats returns catalog statistics
func (c *Catalog) Stats() Stats {
	stats := Stats{ByKind: make(map[types.Kind]int)}
	for kind, view := range c.sections {
		stats.ByKind[kind] = view.Len()
		stats.Total += view.Len()
	}
	return stats
}

// Stats holds catalog statistics
type Stats struct {
	Total  int
	ByKind map[types.Kind]int
}

// Builder accumulates components before freezing them into a Catalog.
// It is not safe for concurrent use.
type Builder struct {
	sections map[types.Kind]map[string]types.Component
}

// NewBuilder creates an empty builder with no sections declared
func NewBuilder() *Builder {
	return &Builder{sections: make(map[types.Kind]map[string]types.Component)}
}

// Declare marks a section as present even if it stays empty
func (b *Builder) Declare(kind types.Kind) *Builder {
	if _, ok := b.sections[kind]; !ok {
		b.sections[kind] = make(map[string]types.Component)
	}
	return b
}

// Add registers a component under name in its kind's section
func (b *Builder) Add(name string, comp types.Component) error {
	if name == "" {
		return errors.Input("component name must not be empty")
	}
	kind := comp.Kind()
	b.Declare(kind)
	if _, exists := b.sections[kind][name]; exists {
		return errors.Newf(errors.TypeInput, "duplicate %s component %q", kind, name)
	}
	b.sections[kind][name] = comp
	return nil
}

// Set registers or replaces a component
func (b *Builder) Set(name string, comp types.Component) {
	b.Declare(comp.Kind())
	b.sections[comp.Kind()][name] = comp
}

// MustAdd is Add for tests and static tables
func (b *Builder) MustAdd(name string, comp types.Component) *Builder {
	if err := b.Add(name, comp); err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return b
}

// Build freezes the builder's contents into an immutable Catalog. The
// builder may be reused afterwards without affecting the result.
func (b *Builder) Build() *Catalog {
	c := &Catalog{sections: make(map[types.Kind]View, len(b.sections))}
	for kind, items := range b.sections {
		entries := make([]Entry, 0, len(items))
		for name, comp := range items {
			entries = append(entries, Entry{Name: name, Component: comp})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
		c.sections[kind] = View{kind: kind, entries: entries}
	}
	return c
}
