// Package chain holds the Markov chain state: the complex being sampled, the
// current per-vertex spin assignment, and the step counter. Models read a
// Chain; only the driver commits transitions.
package chain

import (
	"fmt"

	"pottsmc/internal/lattice"
)

// State is one field element per vertex, indexed by vertex index.
type State []uint64

// Clone returns a copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	copy(out, s)
	return out
}

// Chain is the chain state holder. Models must treat State() as read-only;
// transitions go through Commit and Reject.
type Chain struct {
	complex *lattice.Complex
	state   State
	step    int
}

// New seeds a chain at step 0 with the given initial assignment.
func New(c *lattice.Complex, initial State) (*Chain, error) {
	if c == nil {
		return nil, fmt.Errorf("chain: complex is required")
	}
	if len(initial) != c.NumCells(0) {
		return nil, fmt.Errorf("chain: state length %d does not match %d vertices", len(initial), c.NumCells(0))
	}
	return &Chain{complex: c, state: initial}, nil
}

// Complex returns the complex the chain walks over.
func (c *Chain) Complex() *lattice.Complex { return c.complex }

// Step returns the current iteration index.
func (c *Chain) Step() int { return c.step }

// State returns the current assignment. The slice is shared with the chain;
// callers must not modify it.
func (c *Chain) State() State { return c.state }

// Commit installs an accepted proposal and advances the step counter.
func (c *Chain) Commit(next State) error {
	if len(next) != len(c.state) {
		return fmt.Errorf("chain: proposal length %d does not match %d vertices", len(next), len(c.state))
	}
	c.state = next
	c.step++
	return nil
}

// Reject advances the step counter without changing the state.
func (c *Chain) Reject() {
	c.step++
}
