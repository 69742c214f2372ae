package dynamics

import (
	"context"
	"fmt"

	"pottsmc/internal/chain"
	"pottsmc/internal/lattice"
	"pottsmc/internal/model"
)

// RunnerConfig wires a model to a complex for a fixed number of steps. Draw
// seeds the initial assignment; the model owns its own randomness thereafter.
type RunnerConfig struct {
	Complex *lattice.Complex
	Model   Model
	Steps   int
	Draw    Distribution
}

// RunResult is what one chain run produces.
type RunResult struct {
	FinalState    chain.State
	AcceptedSteps int
	Diagnostics   []model.StepDiagnostics
}

// Runner drives the Markov chain: seed with Initial, then repeatedly obtain
// a proposal and let the model's accept policy decide the transition. The
// runner owns the chain; models only read it.
type Runner struct {
	cfg RunnerConfig
}

func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Complex == nil {
		return nil, fmt.Errorf("dynamics: complex is required")
	}
	if cfg.Model == nil {
		return nil, fmt.Errorf("dynamics: model is required")
	}
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("dynamics: steps must be > 0")
	}
	if cfg.Draw == nil {
		return nil, fmt.Errorf("dynamics: distribution is required")
	}
	return &Runner{cfg: cfg}, nil
}

func (r *Runner) Run(ctx context.Context) (RunResult, error) {
	initial, err := r.cfg.Model.Initial(r.cfg.Complex, r.cfg.Draw)
	if err != nil {
		return RunResult{}, fmt.Errorf("dynamics: initial state: %w", err)
	}
	ch, err := chain.New(r.cfg.Complex, initial)
	if err != nil {
		return RunResult{}, err
	}

	accepted := 0
	diagnostics := make([]model.StepDiagnostics, 0, r.cfg.Steps)
	order := int(r.cfg.Complex.FieldOrder())

	for i := 0; i < r.cfg.Steps; i++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}

		proposal, err := r.cfg.Model.Proposal(ctx, ch)
		if err != nil {
			return RunResult{}, fmt.Errorf("dynamics: proposal at step %d: %w", ch.Step(), err)
		}

		step := ch.Step()
		ok := r.cfg.Model.Accept(ch)
		if ok {
			if err := ch.Commit(proposal.State); err != nil {
				return RunResult{}, err
			}
			accepted++
		} else {
			ch.Reject()
		}

		diagnostics = append(diagnostics, model.StepDiagnostics{
			Step:         step,
			Accepted:     ok,
			Bonds:        proposal.BondCount(),
			ZeroProposal: isZero(proposal.State),
			SpinCounts:   spinCounts(ch.State(), order),
		})
	}

	return RunResult{
		FinalState:    ch.State().Clone(),
		AcceptedSteps: accepted,
		Diagnostics:   diagnostics,
	}, nil
}

func isZero(s chain.State) bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

func spinCounts(s chain.State, order int) []int {
	counts := make([]int, order)
	for _, v := range s {
		if int(v) < order {
			counts[v]++
		}
	}
	return counts
}
