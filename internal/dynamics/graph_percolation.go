package dynamics

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"pottsmc/internal/chain"
	"pottsmc/internal/lattice"
)

// GraphPercolation is pure bond percolation: every edge is included with
// probability 1-exp(temperature) regardless of spins, and the vertex
// assignment never changes. Only the bond structure of its proposals is
// interesting; it exists for percolation diagnostics against the cluster
// models.
type GraphPercolation struct {
	Unimplemented

	Schedule Schedule
	Draw     Distribution
	Rand     *rand.Rand
}

func NewGraphPercolation(schedule Schedule, draw Distribution, rng *rand.Rand) (*GraphPercolation, error) {
	if schedule == nil {
		return nil, errors.New("dynamics: schedule is required")
	}
	if draw == nil {
		return nil, errors.New("dynamics: distribution is required")
	}
	if rng == nil {
		return nil, errors.New("dynamics: random source is required")
	}
	return &GraphPercolation{Schedule: schedule, Draw: draw, Rand: rng}, nil
}

func (m *GraphPercolation) Name() string { return "graph_percolation" }

func (m *GraphPercolation) Initial(c *lattice.Complex, draw Distribution) (chain.State, error) {
	if draw == nil {
		draw = m.Draw
	}
	return uniformInitial(c, draw)
}

func (m *GraphPercolation) Proposal(_ context.Context, ch *chain.Chain) (Proposal, error) {
	edges := ch.Complex().Skeleton(1)
	bonds := make([]bool, len(edges))
	p := 1 - math.Exp(m.Schedule(ch.Step()))
	for i := range edges {
		if m.Rand.Float64() < p {
			bonds[i] = true
		}
	}
	return Proposal{State: ch.State().Clone(), Bonds: bonds}, nil
}
