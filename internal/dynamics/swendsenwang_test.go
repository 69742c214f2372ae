package dynamics

import (
	"context"
	"math/rand"
	"testing"

	"pottsmc/internal/chain"
	"pottsmc/internal/field"
	"pottsmc/internal/lattice"
)

func newTestComplex(t *testing.T, q uint64) *lattice.Complex {
	t.Helper()
	f, err := field.New(q)
	if err != nil {
		t.Fatalf("new field: %v", err)
	}
	c, err := lattice.NewGrid(4, 4, f)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	return c
}

func newTestModel(t *testing.T, temperature float64, seed int64) *SwendsenWang {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	m, err := NewSwendsenWang(
		ConstantSchedule(temperature),
		AlwaysAccept(),
		UniformDistribution(rand.New(rand.NewSource(seed+1))),
		rng,
	)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m
}

func TestNewSwendsenWangValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	draw := UniformDistribution(rng)

	if _, err := NewSwendsenWang(nil, nil, draw, rng); err == nil {
		t.Fatal("expected error for missing schedule")
	}
	if _, err := NewSwendsenWang(ConstantSchedule(-1), nil, nil, rng); err == nil {
		t.Fatal("expected error for missing distribution")
	}
	if _, err := NewSwendsenWang(ConstantSchedule(-1), nil, draw, nil); err == nil {
		t.Fatal("expected error for missing random source")
	}

	m, err := NewSwendsenWang(ConstantSchedule(-1), nil, draw, rng)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	if m.AcceptPolicy == nil {
		t.Fatal("expected default accept policy")
	}
}

func TestInitialShapeAndRange(t *testing.T) {
	c := newTestComplex(t, 5)
	m := newTestModel(t, -0.7, 7)

	state, err := m.Initial(c, m.Draw)
	if err != nil {
		t.Fatalf("initial: %v", err)
	}
	if len(state) != c.NumCells(0) {
		t.Fatalf("initial state length: got=%d want=%d", len(state), c.NumCells(0))
	}
	for i, v := range state {
		if v >= c.FieldOrder() {
			t.Fatalf("spin %d at vertex %d outside field of order %d", v, i, c.FieldOrder())
		}
	}
}

func TestInitialTestingFixtureIsAllOnes(t *testing.T) {
	c := newTestComplex(t, 3)
	m := newTestModel(t, -0.7, 7)
	m.Testing = true

	state, err := m.Initial(c, nil)
	if err != nil {
		t.Fatalf("initial: %v", err)
	}
	for i, v := range state {
		if v != 1 {
			t.Fatalf("testing fixture: vertex %d has spin %d, want 1", i, v)
		}
	}
}

func TestProposalExcludesMismatchedEdgesDeterministically(t *testing.T) {
	c := newTestComplex(t, 2)
	// Very negative temperature: inclusion probability is effectively 1,
	// so every surviving exclusion is the spin-mismatch branch.
	m := newTestModel(t, -50, 11)

	// Checkerboard state: every edge joins differing spins.
	vertices := c.Skeleton(0)
	state := make(chain.State, len(vertices))
	for i, cell := range vertices {
		state[i] = uint64((cell.Encoding[0] + cell.Encoding[1]) % 2)
	}
	ch, err := chain.New(c, state)
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}

	proposal, err := m.Proposal(context.Background(), ch)
	if err != nil {
		t.Fatalf("proposal: %v", err)
	}
	for i, bonded := range proposal.Bonds {
		if bonded {
			t.Fatalf("edge %d frozen across a spin boundary", i)
		}
	}
}

func TestProposalClusterConsistency(t *testing.T) {
	c := newTestComplex(t, 3)
	m := newTestModel(t, -0.7, 13)

	state, err := m.Initial(c, m.Draw)
	if err != nil {
		t.Fatalf("initial: %v", err)
	}
	ch, err := chain.New(c, state)
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}

	for trial := 0; trial < 25; trial++ {
		proposal, err := m.Proposal(context.Background(), ch)
		if err != nil {
			t.Fatalf("proposal: %v", err)
		}
		for i, bonded := range proposal.Bonds {
			if !bonded {
				continue
			}
			u, v, err := c.Endpoints(i)
			if err != nil {
				t.Fatalf("endpoints: %v", err)
			}
			if proposal.State[u] != proposal.State[v] {
				t.Fatalf("trial %d: frozen edge %d has %d != %d", trial, i, proposal.State[u], proposal.State[v])
			}
		}
		if err := ch.Commit(proposal.State); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}
}

func TestProposalRespectsFieldOrder(t *testing.T) {
	for _, q := range []uint64{2, 3, 5, 7} {
		c := newTestComplex(t, q)
		m := newTestModel(t, -0.7, int64(q))

		state, err := m.Initial(c, m.Draw)
		if err != nil {
			t.Fatalf("q=%d initial: %v", q, err)
		}
		ch, err := chain.New(c, state)
		if err != nil {
			t.Fatalf("q=%d new chain: %v", q, err)
		}
		proposal, err := m.Proposal(context.Background(), ch)
		if err != nil {
			t.Fatalf("q=%d proposal: %v", q, err)
		}
		for i, v := range proposal.State {
			if v >= q {
				t.Fatalf("q=%d: proposed spin %d at vertex %d outside field", q, v, i)
			}
		}
	}
}

func TestFixtureModeNeverExcludesOnSpins(t *testing.T) {
	c := newTestComplex(t, 2)
	m := newTestModel(t, -50, 17)
	m.Testing = true

	state, err := m.Initial(c, nil)
	if err != nil {
		t.Fatalf("initial: %v", err)
	}
	ch, err := chain.New(c, state)
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}

	// All spins equal and p effectively 1: every edge must freeze.
	proposal, err := m.Proposal(context.Background(), ch)
	if err != nil {
		t.Fatalf("proposal: %v", err)
	}
	if got := proposal.BondCount(); got != c.NumCells(1) {
		t.Fatalf("bond count: got=%d want=%d", got, c.NumCells(1))
	}
}

func TestAllEdgesFrozenProposesConstantState(t *testing.T) {
	c := newTestComplex(t, 3)
	m := newTestModel(t, -50, 19)
	m.Testing = true

	state, err := m.Initial(c, nil)
	if err != nil {
		t.Fatalf("initial: %v", err)
	}
	ch, err := chain.New(c, state)
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}
	proposal, err := m.Proposal(context.Background(), ch)
	if err != nil {
		t.Fatalf("proposal: %v", err)
	}

	// A connected complex with every edge frozen has a one-dimensional
	// kernel: the proposal must be constant.
	first := proposal.State[0]
	for i, v := range proposal.State {
		if v != first {
			t.Fatalf("vertex %d has spin %d, want constant %d", i, v, first)
		}
	}
}

func TestZeroCoefficientsYieldZeroProposal(t *testing.T) {
	c := newTestComplex(t, 3)
	m := newTestModel(t, -0.7, 23)
	// Force every null-space coefficient to zero: the linear combination
	// collapses to the zero assignment, which is a legitimate proposal.
	m.Draw = func(low, high int) int { return 0 }

	state := make(chain.State, c.NumCells(0))
	for i := range state {
		state[i] = 1
	}
	ch, err := chain.New(c, state)
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}
	proposal, err := m.Proposal(context.Background(), ch)
	if err != nil {
		t.Fatalf("proposal: %v", err)
	}
	for i, v := range proposal.State {
		if v != 0 {
			t.Fatalf("vertex %d has spin %d, want 0", i, v)
		}
	}
}

func TestPositiveTemperatureNeverFreezes(t *testing.T) {
	c := newTestComplex(t, 2)
	// Positive temperature gives p < 0; unclamped, so no edge is ever
	// included regardless of spins.
	m := newTestModel(t, 0.7, 29)
	m.Testing = true

	state, err := m.Initial(c, nil)
	if err != nil {
		t.Fatalf("initial: %v", err)
	}
	ch, err := chain.New(c, state)
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}
	proposal, err := m.Proposal(context.Background(), ch)
	if err != nil {
		t.Fatalf("proposal: %v", err)
	}
	if got := proposal.BondCount(); got != 0 {
		t.Fatalf("bond count: got=%d want=0", got)
	}
}
