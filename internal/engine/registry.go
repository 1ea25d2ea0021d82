package engine

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"mfm/internal/atom"
)

// Registry maps atom types to behaviors. It is written during startup and
// sealed before tiles run; sealed lookups take no lock.
type Registry struct {
	mu     sync.RWMutex
	sealed atomic.Bool
	byType map[uint32]Behavior
	byUUID map[uuid.UUID]uint32
}

// NewRegistry returns a registry with the Empty behavior bound to type 0.
func NewRegistry() *Registry {
	r := &Registry{
		byType: make(map[uint32]Behavior),
		byUUID: make(map[uuid.UUID]uint32),
	}
	if err := r.Register(atom.Empty, EmptyBehavior()); err != nil {
		panic(err)
	}
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() { defaultRegistry = NewRegistry() })
	return defaultRegistry
}

// Register binds typ to b.
func (r *Registry) Register(typ uint32, b Behavior) error {
	if b == nil {
		return fmt.Errorf("%w: nil behavior for type %d", ErrInvalidType, typ)
	}
	if got, err := b.DefaultAtom().DecodeType(); err != nil || got != typ {
		return fmt.Errorf("%w: %s default atom has type %d, want %d", ErrInvalidType, b.Info().Name, got, typ)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed.Load() {
		return fmt.Errorf("%w: cannot register type %d", ErrRegistrySealed, typ)
	}
	if prev, ok := r.byType[typ]; ok {
		return fmt.Errorf("%w: type %d bound to %s", ErrDuplicateType, typ, prev.Info().Name)
	}
	r.byType[typ] = b
	if id := b.Info().UUID; id != uuid.Nil {
		r.byUUID[id] = typ
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(typ uint32, b Behavior) {
	if err := r.Register(typ, b); err != nil {
		panic(err)
	}
}

// Lookup returns the behavior bound to typ.
func (r *Registry) Lookup(typ uint32) (Behavior, error) {
	if !r.sealed.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}
	b, ok := r.byType[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, typ)
	}
	return b, nil
}

// LookupUUID returns the type bound to the behavior with the given UUID.
func (r *Registry) LookupUUID(id uuid.UUID) (uint32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	typ, ok := r.byUUID[id]
	return typ, ok
}

// Types returns the registered types in ascending order.
func (r *Registry) Types() []uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]uint32, 0, len(r.byType))
	for typ := range r.byType {
		out = append(out, typ)
	}
	slices.Sort(out)
	return out
}

// Seal forbids further registration.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed.Store(true)
	r.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool { return r.sealed.Load() }
