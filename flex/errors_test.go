// Copyright © 2026 The flextools authors.

package flex

import (
	"errors"
	"io"
	"testing"
)

func TestErrorPredicatesMatchOnlyTheirOwnKind(t *testing.T) {
	kinds := []struct {
		name string
		err  error
		is   func(error) bool
	}{
		{"BadAddress", BadAddressf("x"), IsBadAddress},
		{"BadGeometry", BadGeometryf("x"), IsBadGeometry},
		{"CorruptChain", CorruptChainf("x"), IsCorruptChain},
		{"OutOfSpace", OutOfSpacef("x"), IsOutOfSpace},
		{"DirectoryFull", DirectoryFullf("x"), IsDirectoryFull},
		{"NotFound", NotFoundf("x"), IsNotFound},
		{"DateOutOfRange", DateOutOfRangef("x"), IsDateOutOfRange},
		{"IoError", IoErrorf(io.EOF, "x"), IsIoError},
	}
	for _, k := range kinds {
		if !k.is(k.err) {
			t.Errorf("%s predicate returned false for its own constructor", k.name)
		}
		for _, other := range kinds {
			if other.name == k.name {
				continue
			}
			if other.is(k.err) {
				t.Errorf("%s predicate returned true for a %s error", other.name, k.name)
			}
		}
	}
}

func TestIoErrorUnwraps(t *testing.T) {
	err := IoErrorf(io.EOF, "reading image")
	if !errors.Is(err, io.EOF) {
		t.Errorf("errors.Is(IoError wrapping io.EOF, io.EOF) = false, want true")
	}
}

func TestKind(t *testing.T) {
	if got, want := Kind(NotFoundf("x")), "NotFound"; got != want {
		t.Errorf("Kind(NotFound) = %q, want %q", got, want)
	}
	if got, want := Kind(errors.New("plain")), "Error"; got != want {
		t.Errorf("Kind(plain error) = %q, want %q", got, want)
	}
}
