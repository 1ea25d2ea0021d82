package engine

import (
	"errors"
	"fmt"

	"mfm/internal/core"
)

var (
	// Window contract violations. They abort the current event only.
	ErrOutOfBounds    = errors.New("engine: site outside event window")
	ErrReadOnlyRegion = errors.New("engine: site is in the read-only halo")
	ErrWindowClosed   = errors.New("engine: event window is closed")

	// ErrRegionBusy is transient: another event holds an overlapping region.
	// The scheduler consumes it; it never reaches callers of Run.
	ErrRegionBusy = errors.New("engine: region busy")

	// Registry misconfiguration.
	ErrDuplicateType  = errors.New("engine: type already registered")
	ErrUnknownType    = errors.New("engine: no behavior registered for type")
	ErrInvalidType    = errors.New("engine: behavior default atom does not match type")
	ErrRegistrySealed = errors.New("engine: registry is sealed")

	ErrInvalidConfig = errors.New("engine: invalid configuration")
	ErrGridRunning   = errors.New("engine: grid is running")
	ErrNotInGrid     = errors.New("engine: site outside grid")
	ErrNotInTile     = errors.New("engine: site outside tile core")
)

// EventError describes a failed event.
type EventError struct {
	Tile core.Offset
	Site core.Offset
	Type uint32
	Err  error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("event at %v in tile %v (type %d): %v", e.Site, e.Tile, e.Type, e.Err)
}

func (e *EventError) Unwrap() error { return e.Err }

// IsFatal reports whether err must stop the driver rather than just the event.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnknownType)
}
