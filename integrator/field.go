package integrator

import (
	"fmt"

	"github.com/katalvlaran/amr/fab"
)

// Field is a registered quantity: one MultiFab per level. The engine owns
// the storage; physics modules read and write it through Level.
// A Field must not be copied after registration.
type Field struct {
	mf []*fab.MultiFab // indexed by level, nil where no level exists
	e  *entry
}

// Level returns the data of lev, or nil if the level does not exist.
func (f *Field) Level(lev int) *fab.MultiFab {
	if lev < 0 || lev >= len(f.mf) {
		return nil
	}
	return f.mf[lev]
}

// Name returns the registered name ("" before registration).
func (f *Field) Name() string {
	if f.e == nil {
		return ""
	}
	return f.e.name
}

// NComp returns the component count (0 before registration).
func (f *Field) NComp() int {
	if f.e == nil {
		return 0
	}
	return f.e.ncomp
}

// NGhost returns the effective ghost depth (0 before registration).
func (f *Field) NGhost() int {
	if f.e == nil {
		return 0
	}
	return f.e.nghost
}

// entry is the registry record of one field.
type entry struct {
	f        *Field
	bndry    Boundary
	ncomp    int
	nghost   int
	name     string
	conserve bool
	index    int
}

// RegisterField adds f to the registry. Every level of f will hold ncomp
// components with nghost ghost layers; bndry fills ghosts outside the
// domain (nil leaves them untouched); conserve fields are averaged down
// from finer levels after every subcycle.
//
// Stage 1 (Validate): f non-nil and new, ncomp >= 1, nghost >= 0, name
// non-empty and unique, registry still open.
// Stage 2 (Record): append; storage is allocated when levels are built.
// Complexity: O(1).
func (it *Integrator) RegisterField(f *Field, bndry Boundary, ncomp, nghost int, name string, conserve bool) error {
	switch {
	case it.closed:
		return fmt.Errorf("RegisterField(%q): %w", name, ErrRegistryClosed)
	case f == nil:
		return fmt.Errorf("RegisterField(%q): %w", name, ErrNilField)
	case name == "":
		return fmt.Errorf("RegisterField: %w", ErrEmptyName)
	case ncomp < 1:
		return fmt.Errorf("RegisterField(%q, ncomp=%d): %w", name, ncomp, ErrBadComponents)
	case nghost < 0:
		return fmt.Errorf("RegisterField(%q, nghost=%d): %w", name, nghost, ErrBadGhost)
	case f.e != nil:
		return fmt.Errorf("RegisterField(%q): field already registered as %q: %w", name, f.e.name, ErrDuplicateField)
	}
	if _, ok := it.byName[name]; ok {
		return fmt.Errorf("RegisterField(%q): %w", name, ErrDuplicateField)
	}

	e := &entry{f: f, bndry: bndry, ncomp: ncomp, nghost: nghost, name: name, conserve: conserve, index: len(it.fields)}
	f.e = e
	f.mf = make([]*fab.MultiFab, it.cfg.MaxLevel+1)
	it.fields = append(it.fields, e)
	it.byName[name] = e
	it.log.Debug().Str("field", name).Int("ncomp", ncomp).Int("nghost", nghost).Bool("conserve", conserve).Msg("field registered")
	return nil
}

// RequireGhost raises the ghost depth of a registered field to at least n.
// Consumers that need a wider stencil than the registering module call it
// before InitData.
func (it *Integrator) RequireGhost(f *Field, n int) error {
	switch {
	case it.closed:
		return fmt.Errorf("RequireGhost: %w", ErrRegistryClosed)
	case f == nil:
		return fmt.Errorf("RequireGhost: %w", ErrNilField)
	case f.e == nil || it.byName[f.e.name] != f.e:
		return fmt.Errorf("RequireGhost: %w", ErrUnknownField)
	case n < 0:
		return fmt.Errorf("RequireGhost(%q, %d): %w", f.e.name, n, ErrBadGhost)
	}
	f.e.nghost = max(f.e.nghost, n)
	return nil
}

// Fields returns the registered fields in registration order.
func (it *Integrator) Fields() []*Field {
	out := make([]*Field, len(it.fields))
	for i, e := range it.fields {
		out[i] = e.f
	}
	return out
}

// FieldByName returns the registered field called name, or nil.
func (it *Integrator) FieldByName(name string) *Field {
	if e, ok := it.byName[name]; ok {
		return e.f
	}
	return nil
}
