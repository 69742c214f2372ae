package pottsmc

import (
	"context"
	"strings"
	"testing"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{
		StoreKind:     "memory",
		BenchmarksDir: t.TempDir(),
		ExportsDir:    t.TempDir(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestRunProducesSummaryAndArtifacts(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	summary, err := client.Run(ctx, RunRequest{
		Model:       "swendsen_wang",
		Width:       4,
		Height:      4,
		FieldOrder:  3,
		Steps:       10,
		Seed:        42,
		Temperature: -0.7,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id")
	}
	if summary.AcceptedSteps != 10 {
		t.Fatalf("accepted steps: got=%d want=10", summary.AcceptedSteps)
	}
	if len(summary.FinalState) != 16 {
		t.Fatalf("final state length: got=%d want=16", len(summary.FinalState))
	}
	if summary.ArtifactsDir == "" {
		t.Fatal("expected artifacts dir")
	}

	runs, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != summary.RunID {
		t.Fatalf("unexpected run list: %+v", runs)
	}
	if runs[0].Model != "swendsen_wang" || runs[0].FieldOrder != 3 {
		t.Fatalf("unexpected run item: %+v", runs[0])
	}

	diagnostics, err := client.Diagnostics(ctx, DiagnosticsRequest{RunID: summary.RunID})
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	if len(diagnostics) != 10 {
		t.Fatalf("diagnostics length: got=%d want=10", len(diagnostics))
	}
}

func TestRunAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	// Small overrides keep the default 16x16, q=2, 100-step run affordable.
	summary, err := client.Run(ctx, RunRequest{Width: 3, Height: 3, Steps: 5})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	runs, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("run count: got=%d want=1", len(runs))
	}
	if runs[0].Model != "swendsen_wang" || runs[0].FieldOrder != 2 || runs[0].Temperature != -0.7 {
		t.Fatalf("defaults not applied: %+v", runs[0])
	}
	if summary.AcceptedSteps != 5 {
		t.Fatalf("accepted steps: got=%d want=5", summary.AcceptedSteps)
	}
}

func TestRunRejectsUnknownModelAndSchedule(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	if _, err := client.Run(ctx, RunRequest{Model: "wolff", Width: 3, Height: 3, Steps: 2}); err == nil {
		t.Fatal("expected unsupported model error")
	}
	if _, err := client.Run(ctx, RunRequest{Schedule: "cosine", Width: 3, Height: 3, Steps: 2}); err == nil {
		t.Fatal("expected unsupported schedule error")
	}
	if _, err := client.Run(ctx, RunRequest{FieldOrder: 6, Width: 3, Height: 3, Steps: 2}); err == nil {
		t.Fatal("expected non-prime field error")
	}
}

func TestTraceRunPersistsSnapshots(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	var log strings.Builder
	summary, err := client.Run(ctx, RunRequest{
		Width:    3,
		Height:   3,
		Steps:    4,
		Seed:     7,
		Testing:  true,
		Trace:    true,
		TraceLog: &log,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	snapshots, err := client.Trace(ctx, TraceRequest{RunID: summary.RunID})
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if len(snapshots) != 4 {
		t.Fatalf("snapshot count: got=%d want=4", len(snapshots))
	}
	for i, snapshot := range snapshots {
		if snapshot.Step != i {
			t.Fatalf("snapshot %d has step %d", i, snapshot.Step)
		}
		if len(snapshot.State) != 9 {
			t.Fatalf("snapshot %d state length %d", i, len(snapshot.State))
		}
	}
	if log.Len() == 0 {
		t.Fatal("expected trace log lines")
	}

	limited, err := client.Trace(ctx, TraceRequest{RunID: summary.RunID, Limit: 2})
	if err != nil {
		t.Fatalf("trace limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limited snapshot count: got=%d want=2", len(limited))
	}
}

func TestTraceRejectedForGraphVariants(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	for _, name := range []string{"graph_swendsen_wang", "graph_ising", "graph_percolation"} {
		_, err := client.Run(ctx, RunRequest{
			Model:  name,
			Width:  3,
			Height: 3,
			Steps:  2,
			Trace:  true,
		})
		if err == nil {
			t.Fatalf("%s: expected trace rejection", name)
		}
	}
}

func TestGraphVariantsRun(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	for _, name := range []string{"graph_swendsen_wang", "graph_ising", "graph_percolation"} {
		summary, err := client.Run(ctx, RunRequest{
			Model:  name,
			Width:  3,
			Height: 3,
			Steps:  5,
			Seed:   11,
		})
		if err != nil {
			t.Fatalf("%s run: %v", name, err)
		}
		if summary.AcceptedSteps != 5 {
			t.Fatalf("%s accepted steps: got=%d want=5", name, summary.AcceptedSteps)
		}
	}
}

func TestExportLatestRun(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	summary, err := client.Run(ctx, RunRequest{Width: 3, Height: 3, Steps: 3})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	exported, err := client.Export(ctx, ExportRequest{Latest: true})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exported.RunID != summary.RunID {
		t.Fatalf("exported run id: got=%s want=%s", exported.RunID, summary.RunID)
	}
	if exported.Directory == "" {
		t.Fatal("expected export directory")
	}

	if _, err := client.Export(ctx, ExportRequest{}); err == nil {
		t.Fatal("expected error without run id or latest")
	}
	if _, err := client.Export(ctx, ExportRequest{RunID: summary.RunID, Latest: true}); err == nil {
		t.Fatal("expected error for both run id and latest")
	}
}

func TestDiagnosticsFallBackToArtifactFiles(t *testing.T) {
	ctx := context.Background()
	benchmarks := t.TempDir()

	first, err := New(Options{
		StoreKind:     "memory",
		BenchmarksDir: benchmarks,
		ExportsDir:    t.TempDir(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	summary, err := first.Run(ctx, RunRequest{Width: 3, Height: 3, Steps: 4})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// A fresh client starts with an empty memory store, as a new process
	// would; diagnostics must come from the run's artifact files.
	second, err := New(Options{
		StoreKind:     "memory",
		BenchmarksDir: benchmarks,
		ExportsDir:    t.TempDir(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = second.Close()
	})

	diagnostics, err := second.Diagnostics(ctx, DiagnosticsRequest{RunID: summary.RunID})
	if err != nil {
		t.Fatalf("diagnostics from artifacts: %v", err)
	}
	if len(diagnostics) != 4 {
		t.Fatalf("diagnostics length: got=%d want=4", len(diagnostics))
	}

	if _, err := second.Diagnostics(ctx, DiagnosticsRequest{RunID: "missing"}); err == nil {
		t.Fatal("expected error for unknown run id")
	}
}

func TestBondSeriesFromArtifacts(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	summary, err := client.Run(ctx, RunRequest{Width: 3, Height: 3, Steps: 5})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	series, err := client.BondSeries(ctx, DiagnosticsRequest{RunID: summary.RunID})
	if err != nil {
		t.Fatalf("bond series: %v", err)
	}
	if len(series) != 5 {
		t.Fatalf("series length: got=%d want=5", len(series))
	}

	limited, err := client.BondSeries(ctx, DiagnosticsRequest{Latest: true, Limit: 2})
	if err != nil {
		t.Fatalf("bond series latest: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limited series length: got=%d want=2", len(limited))
	}

	if _, err := client.BondSeries(ctx, DiagnosticsRequest{RunID: "missing"}); err == nil {
		t.Fatal("expected error for unknown run id")
	}
}

func TestDiagnosticsLatestResolution(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	if _, err := client.Diagnostics(ctx, DiagnosticsRequest{Latest: true}); err == nil {
		t.Fatal("expected error with no runs")
	}

	if _, err := client.Run(ctx, RunRequest{Width: 3, Height: 3, Steps: 3}); err != nil {
		t.Fatalf("run: %v", err)
	}

	diagnostics, err := client.Diagnostics(ctx, DiagnosticsRequest{Latest: true, Limit: 2})
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	if len(diagnostics) != 2 {
		t.Fatalf("diagnostics length: got=%d want=2", len(diagnostics))
	}
}
