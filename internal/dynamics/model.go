// Package dynamics implements the sampling models that evolve a Potts chain:
// the algebraic Swendsen-Wang cluster update and the simpler classical graph
// variants, plus the injected strategy functions they depend on.
package dynamics

import (
	"context"
	"errors"

	"pottsmc/internal/chain"
	"pottsmc/internal/lattice"
)

var (
	// ErrUnimplemented is returned by a model operation the variant does
	// not provide.
	ErrUnimplemented = errors.New("model operation not implemented")
)

// Proposal is one candidate transition. Bonds marks the edges frozen for
// this proposal, one flag per 1-cell; it is nil for variants without a bond
// structure. Bonds is freshly allocated per call and never written back into
// the complex.
type Proposal struct {
	State chain.State
	Bonds []bool
}

// BondCount returns the number of frozen edges.
func (p Proposal) BondCount() int {
	n := 0
	for _, b := range p.Bonds {
		if b {
			n++
		}
	}
	return n
}

// Model is the capability contract all sampling variants share. Variants
// embed Unimplemented to default the operations they do not provide.
type Model interface {
	Name() string
	Initial(c *lattice.Complex, draw Distribution) (chain.State, error)
	Proposal(ctx context.Context, ch *chain.Chain) (Proposal, error)
	Accept(ch *chain.Chain) bool
}

// Unimplemented is the embeddable no-op base for Model variants. Initial and
// Proposal report ErrUnimplemented; Accept defaults to always accepting.
type Unimplemented struct{}

func (Unimplemented) Initial(*lattice.Complex, Distribution) (chain.State, error) {
	return nil, ErrUnimplemented
}

func (Unimplemented) Proposal(context.Context, *chain.Chain) (Proposal, error) {
	return Proposal{}, ErrUnimplemented
}

func (Unimplemented) Accept(*chain.Chain) bool {
	return true
}

// uniformInitial draws one independent field element per vertex.
func uniformInitial(c *lattice.Complex, draw Distribution) (chain.State, error) {
	if draw == nil {
		return nil, errors.New("dynamics: distribution is required")
	}
	order := int(c.FieldOrder())
	state := make(chain.State, c.NumCells(0))
	for i := range state {
		v := draw(0, order)
		if v < 0 || v >= order {
			return nil, errors.New("dynamics: distribution returned value outside field range")
		}
		state[i] = uint64(v)
	}
	return state, nil
}
