package dynamics

import (
	"context"
	"errors"
	"math/rand"

	"pottsmc/internal/chain"
	"pottsmc/internal/lattice"
)

// GraphIsing is the single-site update: each proposal picks one vertex and
// assigns it a fresh uniform spin. Acceptance is the injected policy's
// business (a Metropolis rule or the always-accept default for heat-bath
// style experiments).
type GraphIsing struct {
	Unimplemented

	AcceptPolicy AcceptFunc
	Draw         Distribution
	Rand         *rand.Rand
}

func NewGraphIsing(accept AcceptFunc, draw Distribution, rng *rand.Rand) (*GraphIsing, error) {
	if draw == nil {
		return nil, errors.New("dynamics: distribution is required")
	}
	if rng == nil {
		return nil, errors.New("dynamics: random source is required")
	}
	if accept == nil {
		accept = AlwaysAccept()
	}
	return &GraphIsing{AcceptPolicy: accept, Draw: draw, Rand: rng}, nil
}

func (m *GraphIsing) Name() string { return "graph_ising" }

func (m *GraphIsing) Initial(c *lattice.Complex, draw Distribution) (chain.State, error) {
	if draw == nil {
		draw = m.Draw
	}
	return uniformInitial(c, draw)
}

func (m *GraphIsing) Proposal(_ context.Context, ch *chain.Chain) (Proposal, error) {
	state := ch.State()
	if len(state) == 0 {
		return Proposal{}, errors.New("dynamics: chain state is empty")
	}
	order := int(ch.Complex().FieldOrder())

	site := m.Rand.Intn(len(state))
	spin := m.Draw(0, order)
	if spin < 0 || spin >= order {
		return Proposal{}, errors.New("dynamics: distribution returned value outside field range")
	}

	proposed := state.Clone()
	proposed[site] = uint64(spin)
	return Proposal{State: proposed}, nil
}

func (m *GraphIsing) Accept(ch *chain.Chain) bool {
	if m.AcceptPolicy == nil {
		return true
	}
	return m.AcceptPolicy(ch)
}
