package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator mints deterministic identifiers for tests. Production wiring
// hands services uuid.NewString; tests hand them a generator whose output
// carries a scope label and a fixed-width sequence number, so a stray row
// in a failure dump names the fixture that created it and IDs sort in mint
// order.
type IDGenerator struct {
	mu    sync.Mutex
	scope string
	seq   uint64
}

// NewIDGenerator returns a generator scoped by label. An empty label falls
// back to "fixture".
func NewIDGenerator(scope string) *IDGenerator {
	if scope == "" {
		scope = "fixture"
	}
	return &IDGenerator{scope: scope}
}

// Next mints the next identifier, e.g. "wallet-00000001".
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%08d", g.scope, g.seq)
}

// NextFunc adapts the generator to the idGenerator func the service
// constructors take. A nil generator yields empty identifiers, matching
// the constructors' own nil fallback.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}
