package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"pottsmc/internal/storage"
	api "pottsmc/pkg/pottsmc"
)

const (
	benchmarksDir = "benchmarks"
	exportsDir    = "exports"
	defaultDBPath = "pottsmc.db"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "trace":
		return runTrace(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := api.New(api.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	modelName := fs.String("model", "swendsen_wang", "model: swendsen_wang|graph_swendsen_wang|graph_ising|graph_percolation")
	width := fs.Int("width", 16, "lattice width in vertices")
	height := fs.Int("height", 16, "lattice height in vertices")
	fieldOrder := fs.Uint64("q", 2, "spin field order (prime)")
	steps := fs.Int("steps", 100, "chain steps")
	seed := fs.Int64("seed", 1, "rng seed")
	temperature := fs.Float64("temperature", -0.7, "temperature (non-positive for a usable bond probability)")
	scheduleName := fs.String("schedule", "constant", "temperature schedule: constant|linear")
	testing := fs.Bool("testing", false, "start from the deterministic all-ones state")
	trace := fs.Bool("trace", false, "log per-edge decisions and persist proposal snapshots")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = api.RunRequest{
			Model:       *modelName,
			Width:       *width,
			Height:      *height,
			FieldOrder:  *fieldOrder,
			Steps:       *steps,
			Seed:        *seed,
			Temperature: *temperature,
			Schedule:    *scheduleName,
			Testing:     *testing,
			Trace:       *trace,
		}
	} else {
		overrideFromFlags(&req, setFlags, map[string]any{
			"model":       *modelName,
			"width":       *width,
			"height":      *height,
			"q":           *fieldOrder,
			"steps":       *steps,
			"seed":        *seed,
			"temperature": *temperature,
			"schedule":    *scheduleName,
			"testing":     *testing,
			"trace":       *trace,
		})
	}
	if req.Trace {
		req.TraceLog = os.Stderr
	}

	client, err := api.New(api.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run_id=%s accepted=%d zero_proposals=%d mean_bonds=%.2f artifacts=%s\n",
		summary.RunID,
		summary.AcceptedSteps,
		summary.ZeroProposals,
		summary.MeanBonds,
		summary.ArtifactsDir,
	)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to print")
	jsonOut := fs.Bool("json", false, "emit runs as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := api.New(api.Options{
		StoreKind:     "memory",
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, api.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	for _, r := range runs {
		fmt.Printf("run_id=%s created=%s model=%s grid=%dx%d q=%d steps=%d seed=%d temperature=%.4f accepted=%d\n",
			r.RunID,
			r.CreatedAtUTC,
			r.Model,
			r.Width,
			r.Height,
			r.FieldOrder,
			r.Steps,
			r.Seed,
			r.Temperature,
			r.AcceptedSteps,
		)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show diagnostics for the most recent run from run index")
	limit := fs.Int("limit", 50, "max steps to print (<=0 for all)")
	bonds := fs.Bool("bonds", false, "print per-step bond counts from the run's artifacts")
	jsonOut := fs.Bool("json", false, "emit diagnostics as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("diagnostics requires --run-id or --latest")
	}

	client, err := api.New(api.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if *bonds {
		series, err := client.BondSeries(ctx, api.DiagnosticsRequest{
			RunID:  *runID,
			Latest: *latest,
			Limit:  *limit,
		})
		if err != nil {
			return err
		}
		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(series)
		}
		for step, count := range series {
			fmt.Printf("step=%d bonds=%d\n", step, count)
		}
		return nil
	}

	diagnostics, err := client.Diagnostics(ctx, api.DiagnosticsRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(diagnostics) == 0 {
		fmt.Println("no diagnostics")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(diagnostics)
	}

	for _, d := range diagnostics {
		fmt.Printf("step=%d accepted=%t bonds=%d zero_proposal=%t spin_counts=%v\n",
			d.Step,
			d.Accepted,
			d.Bonds,
			d.ZeroProposal,
			d.SpinCounts,
		)
	}
	return nil
}

func runTrace(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("trace", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show trace for the most recent run from run index")
	limit := fs.Int("limit", 10, "max snapshots to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit snapshots as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("trace requires --run-id or --latest")
	}

	client, err := api.New(api.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	snapshots, err := client.Trace(ctx, api.TraceRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Println("no trace snapshots")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshots)
	}

	for _, s := range snapshots {
		fmt.Printf("step=%d state=%v operator_rows=%d\n", s.Step, s.State, len(s.Operator))
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from run index")
	outDir := fs.String("out", exportsDir, "export output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := api.New(api.Options{
		StoreKind:     "memory",
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Export(ctx, api.ExportRequest{
		RunID:  *runID,
		Latest: *latest,
		OutDir: *outDir,
	})
	if err != nil {
		return err
	}

	fmt.Printf("exported run_id=%s to=%s\n", summary.RunID, summary.Directory)
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: pottsmcctl <init|run|runs|diagnostics|trace|export> [flags]", msg)
}
