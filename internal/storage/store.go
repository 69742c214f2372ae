package storage

import (
	"context"

	"pottsmc/internal/model"
)

// Store defines transaction-like persistence operations for sampling runs.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveDiagnostics(ctx context.Context, runID string, diagnostics []model.StepDiagnostics) error
	GetDiagnostics(ctx context.Context, runID string) ([]model.StepDiagnostics, bool, error)
	SaveTraceSnapshot(ctx context.Context, runID string, snapshot model.TraceSnapshot) error
	GetTraceSnapshots(ctx context.Context, runID string) ([]model.TraceSnapshot, bool, error)
}
