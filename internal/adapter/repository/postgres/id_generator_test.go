package postgres

import (
	"testing"

	"github.com/oklog/ulid/v2"
)

func TestULIDGeneratorIsMonotonic(t *testing.T) {
	gen := NewULIDGenerator()

	prev := gen.Generate()
	for i := 0; i < 1000; i++ {
		next := gen.Generate()
		if _, err := ulid.ParseStrict(next); err != nil {
			t.Fatalf("invalid ULID %q: %v", next, err)
		}
		if next <= prev {
			t.Fatalf("expected %q to sort after %q", next, prev)
		}
		prev = next
	}
}
