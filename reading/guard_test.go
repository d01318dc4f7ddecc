package reading_test

import (
	"testing"

	"github.com/recite-cli/recite/reading"
)

// TestGuardAcquireDisplacesPrevious verifies that acquiring the engine
// cancels the previous owner and invalidates its token.
func TestGuardAcquireDisplacesPrevious(t *testing.T) {
	g := reading.NewGuard()

	cancelled := 0
	first := g.Acquire(func() { cancelled++ })
	if !first.Valid() {
		t.Fatal("fresh token should be valid")
	}
	if cancelled != 0 {
		t.Fatalf("first acquire ran a cancel function, count = %d", cancelled)
	}

	second := g.Acquire(func() {})
	if cancelled != 1 {
		t.Errorf("previous owner cancel count = %d, want 1", cancelled)
	}
	if first.Valid() {
		t.Error("displaced token should be invalid")
	}
	if !second.Valid() {
		t.Error("new token should be valid")
	}
}

// TestGuardRelease verifies that releasing ownership invalidates the token.
func TestGuardRelease(t *testing.T) {
	g := reading.NewGuard()

	token := g.Acquire(func() {})
	g.Release(token)
	if token.Valid() {
		t.Error("released token should be invalid")
	}

	// Releasing must not leave a stale cancel behind.
	cancelled := false
	next := g.Acquire(func() { cancelled = true })
	if cancelled {
		t.Error("acquire after release ran a stale cancel function")
	}
	if !next.Valid() {
		t.Error("token acquired after release should be valid")
	}
}

// TestGuardStaleRelease verifies that releasing a displaced token does not
// disturb the current owner.
func TestGuardStaleRelease(t *testing.T) {
	g := reading.NewGuard()

	old := g.Acquire(func() {})
	current := g.Acquire(func() {})

	g.Release(old)
	if !current.Valid() {
		t.Error("stale release invalidated the current owner")
	}
}

// TestGuardNilToken verifies nil tokens are inert.
func TestGuardNilToken(t *testing.T) {
	g := reading.NewGuard()
	g.Release(nil) // must not panic

	var token *reading.Token
	if token.Valid() {
		t.Error("nil token should be invalid")
	}
}

// TestGuardReacquireAfterCancel verifies an owner can call back into the
// guard from its own cancel function without deadlocking.
func TestGuardReacquireAfterCancel(t *testing.T) {
	g := reading.NewGuard()

	var first *reading.Token
	first = g.Acquire(func() {
		g.Release(first)
	})

	second := g.Acquire(func() {})
	if !second.Valid() {
		t.Error("token should be valid after displacing a self-releasing owner")
	}
}
