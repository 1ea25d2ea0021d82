package engine

import (
	"errors"
	"slices"
	"testing"

	"mfm/internal/atom"
)

func TestRegistryRegisterLookup(t *testing.T) {
	reg := testRegistry(t, walker())
	b, err := reg.Lookup(typeWalker)
	if err != nil || b.Info().Name != "Walker" {
		t.Fatalf("Lookup = %v, %v", b, err)
	}
	if e, err := reg.Lookup(atom.Empty); err != nil || e.Info().Name != "Empty" {
		t.Fatalf("Empty not pre-registered: %v", err)
	}
	if _, err := reg.Lookup(123); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
	typ, ok := reg.LookupUUID(BehaviorUUID("Walker", 1))
	if !ok || typ != typeWalker {
		t.Fatalf("LookupUUID = %d, %v", typ, ok)
	}
	if got := reg.Types(); !slices.Equal(got, []uint32{atom.Empty, typeWalker}) {
		t.Fatalf("Types = %v", got)
	}
}

func TestRegistryErrors(t *testing.T) {
	reg := testRegistry(t, walker())
	if err := reg.Register(typeWalker, walker()); !errors.Is(err, ErrDuplicateType) {
		t.Fatalf("duplicate err = %v", err)
	}
	if err := reg.Register(typeCopier, walker()); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("mismatched default atom err = %v", err)
	}
	if err := reg.Register(typeCopier, nil); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("nil behavior err = %v", err)
	}
	reg.Seal()
	if err := reg.Register(typeCopier, copier()); !errors.Is(err, ErrRegistrySealed) {
		t.Fatalf("sealed err = %v", err)
	}
	if _, err := reg.Lookup(typeWalker); err != nil {
		t.Fatalf("sealed lookup: %v", err)
	}
}

func TestBehaviorUUIDStable(t *testing.T) {
	a := BehaviorUUID("Res", 1)
	if a != BehaviorUUID("Res", 1) {
		t.Fatal("UUID not deterministic")
	}
	if a == BehaviorUUID("Res", 2) || a == BehaviorUUID("Dreg", 1) {
		t.Fatal("UUID collision across name or version")
	}
	if a.Version() != 5 {
		t.Fatalf("version = %d, want name-based SHA1 (5)", a.Version())
	}
}

func TestDefaultRegistryShared(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Fatal("DefaultRegistry returned different instances")
	}
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(typeWalker, walker())
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate MustRegister did not panic")
		}
	}()
	reg.MustRegister(typeWalker, walker())
}
