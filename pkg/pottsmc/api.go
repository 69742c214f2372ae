package pottsmc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"pottsmc/internal/dynamics"
	"pottsmc/internal/field"
	"pottsmc/internal/lattice"
	"pottsmc/internal/model"
	"pottsmc/internal/stats"
	"pottsmc/internal/storage"
)

const (
	defaultBenchmarksDir = "benchmarks"
	defaultExportsDir    = "exports"
	defaultDBPath        = "pottsmc.db"
)

type Options struct {
	StoreKind     string
	DBPath        string
	BenchmarksDir string
	ExportsDir    string
}

// Client is the embedding surface of the sampler: it owns the store and the
// artifact directories, and exposes run/inspect/export operations.
type Client struct {
	store       storage.Store
	initialized bool

	benchmarksDir string
	exportsDir    string
}

type RunRequest struct {
	Model       string
	Width       int
	Height      int
	FieldOrder  uint64
	Steps       int
	Seed        int64
	Temperature float64
	Schedule    string
	Testing     bool
	Trace       bool

	// TraceLog, when set with Trace, receives the per-edge decision lines.
	TraceLog io.Writer
}

type RunSummary struct {
	RunID         string
	ArtifactsDir  string
	AcceptedSteps int
	FinalState    []uint64
	ZeroProposals int
	MeanBonds     float64
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID         string
	CreatedAtUTC  string
	Model         string
	Width         int
	Height        int
	FieldOrder    uint64
	Steps         int
	Seed          int64
	Temperature   float64
	AcceptedSteps int
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type TraceRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	benchmarksDir := opts.BenchmarksDir
	if benchmarksDir == "" {
		benchmarksDir = defaultBenchmarksDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:         store,
		benchmarksDir: benchmarksDir,
		exportsDir:    exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.ensureStore(ctx)
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Model == "" {
		req.Model = "swendsen_wang"
	}
	if req.Width <= 0 {
		req.Width = 16
	}
	if req.Height <= 0 {
		req.Height = 16
	}
	if req.FieldOrder == 0 {
		req.FieldOrder = 2
	}
	if req.Steps <= 0 {
		req.Steps = 100
	}
	if req.Temperature == 0 {
		req.Temperature = -0.7
	}
	if req.Schedule == "" {
		req.Schedule = "constant"
	}

	f, err := field.New(req.FieldOrder)
	if err != nil {
		return RunSummary{}, err
	}
	grid, err := lattice.NewGrid(req.Width, req.Height, f)
	if err != nil {
		return RunSummary{}, err
	}

	schedule, err := scheduleFromName(req.Schedule, req.Temperature, req.Steps)
	if err != nil {
		return RunSummary{}, err
	}

	if err := c.ensureStore(ctx); err != nil {
		return RunSummary{}, err
	}

	now := time.Now().UTC()
	runID := uuid.NewString()

	draw := dynamics.UniformDistribution(rand.New(rand.NewSource(req.Seed + 1)))
	m, observer, err := modelFromName(req, runID, schedule, draw, c.store)
	if err != nil {
		return RunSummary{}, err
	}

	runner, err := dynamics.NewRunner(dynamics.RunnerConfig{
		Complex: grid,
		Model:   m,
		Steps:   req.Steps,
		Draw:    draw,
	})
	if err != nil {
		return RunSummary{}, err
	}

	result, err := runner.Run(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	if observer != nil {
		if err := observer.Err(); err != nil {
			return RunSummary{}, fmt.Errorf("trace persistence: %w", err)
		}
	}

	record := model.RunRecord{
		VersionedRecord: model.CurrentVersion(),
		ID:              runID,
		Model:           req.Model,
		Width:           req.Width,
		Height:          req.Height,
		FieldOrder:      req.FieldOrder,
		Steps:           req.Steps,
		Seed:            req.Seed,
		Temperature:     req.Temperature,
		Schedule:        req.Schedule,
		Testing:         req.Testing,
		AcceptedSteps:   result.AcceptedSteps,
		FinalState:      result.FinalState,
		CreatedAtUTC:    now.Format(time.RFC3339Nano),
	}
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveDiagnostics(ctx, runID, result.Diagnostics); err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.benchmarksDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:       runID,
			Model:       req.Model,
			Width:       req.Width,
			Height:      req.Height,
			FieldOrder:  req.FieldOrder,
			Steps:       req.Steps,
			Seed:        req.Seed,
			Temperature: req.Temperature,
			Schedule:    req.Schedule,
			Testing:     req.Testing,
			Trace:       req.Trace,
		},
		Diagnostics:   result.Diagnostics,
		FinalState:    result.FinalState,
		AcceptedSteps: result.AcceptedSteps,
	})
	if err != nil {
		return RunSummary{}, err
	}

	if err := stats.AppendRunIndex(c.benchmarksDir, stats.RunIndexEntry{
		RunID:         runID,
		Model:         req.Model,
		Width:         req.Width,
		Height:        req.Height,
		FieldOrder:    req.FieldOrder,
		Steps:         req.Steps,
		Seed:          req.Seed,
		Temperature:   req.Temperature,
		AcceptedSteps: result.AcceptedSteps,
		CreatedAtUTC:  now.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	zeroProposals := 0
	totalBonds := 0
	for _, d := range result.Diagnostics {
		if d.ZeroProposal {
			zeroProposals++
		}
		totalBonds += d.Bonds
	}
	meanBonds := 0.0
	if len(result.Diagnostics) > 0 {
		meanBonds = float64(totalBonds) / float64(len(result.Diagnostics))
	}

	return RunSummary{
		RunID:         runID,
		ArtifactsDir:  filepath.Clean(runDir),
		AcceptedSteps: result.AcceptedSteps,
		FinalState:    append([]uint64(nil), result.FinalState...),
		ZeroProposals: zeroProposals,
		MeanBonds:     meanBonds,
	}, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:         e.RunID,
			CreatedAtUTC:  e.CreatedAtUTC,
			Model:         e.Model,
			Width:         e.Width,
			Height:        e.Height,
			FieldOrder:    e.FieldOrder,
			Steps:         e.Steps,
			Seed:          e.Seed,
			Temperature:   e.Temperature,
			AcceptedSteps: e.AcceptedSteps,
		})
	}
	return out, nil
}

func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]model.StepDiagnostics, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, req.Limit)
	if err != nil {
		return nil, err
	}

	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}
	diagnostics, ok, err := c.store.GetDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The memory store does not survive the process; fall back to the
		// run's artifact files.
		diagnostics, ok, err = stats.ReadDiagnostics(c.benchmarksDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		if _, found, err := stats.ReadRunConfig(c.benchmarksDir, runID); err != nil {
			return nil, err
		} else if found {
			return nil, fmt.Errorf("run %s has no recorded diagnostics", runID)
		}
		return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	out := make([]model.StepDiagnostics, len(diagnostics))
	copy(out, diagnostics)
	return out, nil
}

// BondSeries reads the per-step frozen-bond counts from the run's artifact
// files.
func (c *Client) BondSeries(_ context.Context, req DiagnosticsRequest) ([]int, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, req.Limit)
	if err != nil {
		return nil, err
	}

	series, ok, err := stats.ReadBondSeries(c.benchmarksDir, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("bond series not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(series) > req.Limit {
		series = series[:req.Limit]
	}
	return series, nil
}

func (c *Client) Trace(ctx context.Context, req TraceRequest) ([]model.TraceSnapshot, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, req.Limit)
	if err != nil {
		return nil, err
	}

	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}
	snapshots, ok, err := c.store.GetTraceSnapshots(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("trace not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(snapshots) > req.Limit {
		snapshots = snapshots[:req.Limit]
	}
	out := make([]model.TraceSnapshot, len(snapshots))
	copy(out, snapshots)
	return out, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(entries) == 0 {
			return ExportSummary{}, errors.New("no runs available to export")
		}
		runID = entries[0].RunID
	}

	exportedDir, err := stats.ExportRunArtifacts(c.benchmarksDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) resolveRunID(runID string, latest bool, limit int) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if limit < 0 {
		return "", errors.New("limit must be >= 0")
	}
	if latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return "", err
		}
		if len(entries) == 0 {
			return "", errors.New("no runs available")
		}
		return entries[0].RunID, nil
	}
	if runID == "" {
		return "", errors.New("run id or latest is required")
	}
	return runID, nil
}

func (c *Client) ensureStore(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

func scheduleFromName(name string, temperature float64, steps int) (dynamics.Schedule, error) {
	switch name {
	case "constant":
		return dynamics.ConstantSchedule(temperature), nil
	case "linear":
		// Anneal from zero to the requested temperature over the run.
		if steps <= 0 {
			return nil, errors.New("linear schedule requires steps > 0")
		}
		return dynamics.LinearSchedule(0, temperature/float64(steps)), nil
	default:
		return nil, fmt.Errorf("unsupported schedule: %s", name)
	}
}

func modelFromName(req RunRequest, runID string, schedule dynamics.Schedule, draw dynamics.Distribution, store storage.Store) (dynamics.Model, *dynamics.TraceObserver, error) {
	rng := rand.New(rand.NewSource(req.Seed))

	// Only the algebraic model emits per-edge decisions and operator
	// snapshots; the other variants reject a trace request.
	var observer *dynamics.TraceObserver
	if req.Trace {
		if req.Model != "swendsen_wang" {
			return nil, nil, fmt.Errorf("trace is only supported by the swendsen_wang model, got %s", req.Model)
		}
		observer = &dynamics.TraceObserver{Sink: store, RunID: runID, Log: req.TraceLog}
	}

	switch req.Model {
	case "swendsen_wang":
		m, err := dynamics.NewSwendsenWang(schedule, nil, draw, rng)
		if err != nil {
			return nil, nil, err
		}
		m.Testing = req.Testing
		if observer != nil {
			m.Observer = observer
		}
		return m, observer, nil
	case "graph_swendsen_wang":
		m, err := dynamics.NewGraphSwendsenWang(schedule, nil, draw, rng)
		if err != nil {
			return nil, nil, err
		}
		return m, nil, nil
	case "graph_ising":
		m, err := dynamics.NewGraphIsing(nil, draw, rng)
		if err != nil {
			return nil, nil, err
		}
		return m, nil, nil
	case "graph_percolation":
		m, err := dynamics.NewGraphPercolation(schedule, draw, rng)
		if err != nil {
			return nil, nil, err
		}
		return m, nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported model: %s", req.Model)
	}
}
