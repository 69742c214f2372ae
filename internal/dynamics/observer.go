package dynamics

import (
	"context"
	"fmt"
	"io"

	"pottsmc/internal/chain"
	"pottsmc/internal/field"
	"pottsmc/internal/model"
)

// Observer receives the diagnostic side channel of a proposal: per-edge
// inclusion decisions and a snapshot of the state and induced operator. It is
// optional and purely observational; models never act on it.
type Observer interface {
	ObserveBond(step, edge, u, v int, p, draw float64, included bool)
	ObserveProposal(step int, state chain.State, operator *field.Matrix)
}

// TraceSink persists proposal snapshots keyed by run and step.
// storage.Store satisfies it.
type TraceSink interface {
	SaveTraceSnapshot(ctx context.Context, runID string, snapshot model.TraceSnapshot) error
}

// TraceObserver writes human-readable bond decisions to Log and persists
// proposal snapshots through Sink. Either may be nil. Persistence failures do
// not interrupt sampling; the first one is retained and exposed via Err.
type TraceObserver struct {
	Sink  TraceSink
	RunID string
	Log   io.Writer

	err error
}

func (o *TraceObserver) ObserveBond(step, edge, u, v int, p, draw float64, included bool) {
	if o.Log == nil {
		return
	}
	if included {
		fmt.Fprintf(o.Log, "step %d: included edge %d (%d,%d) with probability %v<%v\n", step, edge, u, v, draw, p)
	} else {
		fmt.Fprintf(o.Log, "step %d: excluded edge %d (%d,%d) with probability %v>=%v\n", step, edge, u, v, draw, p)
	}
}

func (o *TraceObserver) ObserveProposal(step int, state chain.State, operator *field.Matrix) {
	if o.Sink == nil {
		return
	}
	rows := make([][]uint64, operator.Rows())
	for i := range rows {
		rows[i] = operator.Row(i)
	}
	snapshot := model.TraceSnapshot{
		VersionedRecord: model.CurrentVersion(),
		Step:            step,
		State:           append([]uint64(nil), state...),
		Operator:        rows,
	}
	if err := o.Sink.SaveTraceSnapshot(context.Background(), o.RunID, snapshot); err != nil && o.err == nil {
		o.err = err
	}
}

// Err reports the first persistence failure, if any.
func (o *TraceObserver) Err() error { return o.err }
