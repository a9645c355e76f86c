// SPDX-License-Identifier: MIT

package integrator

import "errors"

// Sentinel errors for integrator operations. Callers match them with errors.Is.
var (
	// ErrDuplicateField indicates a field pointer or name registered twice.
	ErrDuplicateField = errors.New("integrator: field already registered")

	// ErrBadComponents indicates a component count below 1.
	ErrBadComponents = errors.New("integrator: component count must be >= 1")

	// ErrBadGhost indicates a negative ghost depth.
	ErrBadGhost = errors.New("integrator: ghost depth must be >= 0")

	// ErrNilField indicates a nil field pointer.
	ErrNilField = errors.New("integrator: field is nil")

	// ErrEmptyName indicates an empty field name.
	ErrEmptyName = errors.New("integrator: field name is empty")

	// ErrUnknownField indicates a field that was never registered.
	ErrUnknownField = errors.New("integrator: field not registered")

	// ErrRegistryClosed indicates registration after InitData.
	ErrRegistryClosed = errors.New("integrator: registry closed after InitData")

	// ErrBadConfig indicates an invalid Config.
	ErrBadConfig = errors.New("integrator: invalid config")

	// ErrTimeBracket indicates a fill requested at a time outside the
	// [TOld, TNew] window of the level providing the data.
	ErrTimeBracket = errors.New("integrator: time outside level bracket")

	// ErrLevelNotActive indicates an operation on a level that does not exist.
	ErrLevelNotActive = errors.New("integrator: level not active")

	// ErrNoCoarseData indicates a cell inside the domain that no level covers.
	ErrNoCoarseData = errors.New("integrator: no data covers cell")

	// ErrNoPhysics indicates a nil Physics passed to New.
	ErrNoPhysics = errors.New("integrator: physics is nil")

	// ErrNotInitialized indicates Evolve or Snapshot before InitData.
	ErrNotInitialized = errors.New("integrator: InitData not called")
)
