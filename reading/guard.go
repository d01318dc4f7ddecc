package reading

import "sync"

// Guard arbitrates exclusive ownership of a speech engine. The engine is a
// single shared resource with no arbitration of its own: starting a new
// session must first cancel whoever held it before. Acquire hands out a
// token and invalidates the previous one, running the previous owner's
// cancel function outside the guard lock so owners may call back into the
// guard while being cancelled.
type Guard struct {
	mu         sync.Mutex
	generation uint64
	cancel     func()
}

// Token proves ownership of the engine for one session.
type Token struct {
	guard      *Guard
	generation uint64
}

// NewGuard creates an engine ownership guard.
func NewGuard() *Guard {
	return &Guard{}
}

// Acquire invalidates the previous owner, cancels its session, and returns a
// fresh token. cancel is invoked if a later Acquire displaces this owner.
func (g *Guard) Acquire(cancel func()) *Token {
	g.mu.Lock()
	prev := g.cancel
	g.generation++
	g.cancel = cancel
	token := &Token{guard: g, generation: g.generation}
	g.mu.Unlock()

	if prev != nil {
		prev()
	}
	return token
}

// Release gives up ownership. Stale tokens release nothing.
func (g *Guard) Release(t *Token) {
	if t == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if t.generation == g.generation {
		g.cancel = nil
		g.generation++
	}
}

// Valid reports whether the token still owns the engine.
func (t *Token) Valid() bool {
	if t == nil {
		return false
	}
	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()
	return t.generation == t.guard.generation
}
