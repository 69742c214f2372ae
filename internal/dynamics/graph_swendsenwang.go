package dynamics

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"pottsmc/internal/chain"
	"pottsmc/internal/lattice"
)

// GraphSwendsenWang is the classical cluster update: it freezes same-spin
// edges with probability 1-exp(temperature), finds the connected components
// of the frozen subgraph with union-find, and relabels each component with
// one uniform field element. It is the pure-graph counterpart of the
// algebraic SwendsenWang model and samples the same transition kernel on
// one-dimensional complexes.
type GraphSwendsenWang struct {
	Unimplemented

	Schedule     Schedule
	AcceptPolicy AcceptFunc
	Draw         Distribution
	Rand         *rand.Rand
}

func NewGraphSwendsenWang(schedule Schedule, accept AcceptFunc, draw Distribution, rng *rand.Rand) (*GraphSwendsenWang, error) {
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
	return &GraphSwendsenWang{Schedule: schedule, AcceptPolicy: accept, Draw: draw, Rand: rng}, nil
}

func (m *GraphSwendsenWang) Name() string { return "graph_swendsen_wang" }

func (m *GraphSwendsenWang) Initial(c *lattice.Complex, draw Distribution) (chain.State, error) {
	if draw == nil {
		draw = m.Draw
	}
	return uniformInitial(c, draw)
}

func (m *GraphSwendsenWang) Proposal(_ context.Context, ch *chain.Chain) (Proposal, error) {
	c := ch.Complex()
	state := ch.State()
	edges := c.Skeleton(1)

	bonds := make([]bool, len(edges))
	p := 1 - math.Exp(m.Schedule(ch.Step()))

	uf := newUnionFind(c.NumCells(0))
	for i, e := range edges {
		u, v := e.Faces[0], e.Faces[1]
		if state[u] != state[v] {
			continue
		}
		if m.Rand.Float64() < p {
			bonds[i] = true
			uf.union(u, v)
		}
	}

	// One fresh uniform label per cluster root.
	order := int(c.FieldOrder())
	labels := make(map[int]uint64, len(state))
	proposed := make(chain.State, len(state))
	for v := range proposed {
		root := uf.find(v)
		label, ok := labels[root]
		if !ok {
			draw := m.Draw(0, order)
			if draw < 0 || draw >= order {
				return Proposal{}, errors.New("dynamics: distribution returned value outside field range")
			}
			label = uint64(draw)
			labels[root] = label
		}
		proposed[v] = label
	}

	return Proposal{State: proposed, Bonds: bonds}, nil
}

func (m *GraphSwendsenWang) Accept(ch *chain.Chain) bool {
	if m.AcceptPolicy == nil {
		return true
	}
	return m.AcceptPolicy(ch)
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent, rank: make([]int, n)}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}
