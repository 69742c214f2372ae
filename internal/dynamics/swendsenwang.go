package dynamics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"pottsmc/internal/chain"
	"pottsmc/internal/field"
	"pottsmc/internal/lattice"
)

// SwendsenWang is the generalized cluster update on the Potts model. Instead
// of flipping graph clusters directly, it freezes a random subset of
// same-spin edges, restricts the complex's boundary operator to those edges,
// and draws the next assignment uniformly from the null space of the induced
// coboundary. Constant-on-cluster assignments are exactly that null space,
// so this reproduces the classical cluster re-randomization while extending
// to any prime spin field and to higher-dimensional complexes.
type SwendsenWang struct {
	Unimplemented

	// Schedule supplies the temperature per step. The inclusion probability
	// is 1-exp(Schedule(step)), used unclamped: a positive temperature
	// degenerates to never including, a very negative one to always
	// including.
	Schedule Schedule

	// AcceptPolicy decides commits; defaults to always accepting.
	AcceptPolicy AcceptFunc

	// Draw samples integers in [low, high); used for the initial assignment
	// and for the null-space coefficients.
	Draw Distribution

	// Rand supplies the uniform [0,1) edge-inclusion draws.
	Rand *rand.Rand

	// Testing switches Initial to the deterministic all-ones fixture, under
	// which no edge is ever excluded for differing endpoint spins.
	Testing bool

	// Observer, when set, receives per-edge decisions and proposal
	// snapshots.
	Observer Observer
}

// NewSwendsenWang validates the strategy wiring and returns the model.
func NewSwendsenWang(schedule Schedule, accept AcceptFunc, draw Distribution, rng *rand.Rand) (*SwendsenWang, error) {
	if schedule == nil {
		return nil, errors.New("dynamics: schedule is required")
	}
	if draw == nil {
		return nil, errors.New("dynamics: distribution is required")
	}
	if rng == nil {
		return nil, errors.New("dynamics: random source is required")
	}
	if accept == nil {
		accept = AlwaysAccept()
	}
	return &SwendsenWang{
		Schedule:     schedule,
		AcceptPolicy: accept,
		Draw:         draw,
		Rand:         rng,
	}, nil
}

func (m *SwendsenWang) Name() string { return "swendsen_wang" }

// Initial draws one independent field element per vertex, or the all-ones
// assignment in testing mode.
func (m *SwendsenWang) Initial(c *lattice.Complex, draw Distribution) (chain.State, error) {
	if m.Testing {
		state := make(chain.State, c.NumCells(0))
		one := 1 % c.FieldOrder()
		for i := range state {
			state[i] = one
		}
		return state, nil
	}
	if draw == nil {
		draw = m.Draw
	}
	return uniformInitial(c, draw)
}

// Proposal produces the candidate next assignment. The chain is read-only;
// the selector, induced boundary, coboundary, and basis are all transient to
// this call.
func (m *SwendsenWang) Proposal(_ context.Context, ch *chain.Chain) (Proposal, error) {
	c := ch.Complex()
	f := c.Field()
	state := ch.State()
	edges := c.Skeleton(1)

	selector := field.NewMatrix(f, len(edges), len(edges))
	bonds := make([]bool, len(edges))
	p := 1 - math.Exp(m.Schedule(ch.Step()))

	for i, e := range edges {
		u, v := e.Faces[0], e.Faces[1]

		// A frozen bond may only join equal spins; differing endpoints
		// exclude the edge outright.
		if state[u] != state[v] {
			continue
		}
		draw := m.Rand.Float64()
		if draw < p {
			selector.Set(i, i, 1)
			bonds[i] = true
		}
		if m.Observer != nil {
			m.Observer.ObserveBond(ch.Step(), i, u, v, p, draw, bonds[i])
		}
	}

	boundary, err := c.Boundary(1)
	if err != nil {
		return Proposal{}, err
	}
	induced, err := boundary.Mul(selector)
	if err != nil {
		return Proposal{}, fmt.Errorf("dynamics: induced boundary: %w", err)
	}

	if m.Observer != nil {
		m.Observer.ObserveProposal(ch.Step(), state, induced)
	}

	coboundary := induced.Transpose()
	basis := coboundary.NullSpace()

	// A uniform element of the kernel's span; the empty basis yields the
	// zero assignment, which is a legitimate (degenerate) proposal.
	order := int(f.Order())
	proposed := make([]uint64, len(state))
	for _, vec := range basis {
		coeff := m.Draw(0, order)
		if coeff < 0 || coeff >= order {
			return Proposal{}, errors.New("dynamics: distribution returned value outside field range")
		}
		proposed = f.VecAdd(proposed, f.VecScale(uint64(coeff), vec))
	}

	return Proposal{State: chain.State(proposed), Bonds: bonds}, nil
}

// Accept delegates to the injected policy.
func (m *SwendsenWang) Accept(ch *chain.Chain) bool {
	if m.AcceptPolicy == nil {
		return true
	}
	return m.AcceptPolicy(ch)
}
