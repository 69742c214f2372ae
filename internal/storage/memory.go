package storage

import (
	"context"
	"sort"
	"sync"

	"pottsmc/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	diagnostics map[string][]model.StepDiagnostics
	traces      map[string][]model.TraceSnapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.diagnostics = make(map[string][]model.StepDiagnostics)
	s.traces = make(map[string][]model.TraceSnapshot)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.FinalState = append([]uint64(nil), run.FinalState...)
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return model.RunRecord{}, false, nil
	}
	run.FinalState = append([]uint64(nil), run.FinalState...)
	return run, true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		run.FinalState = append([]uint64(nil), run.FinalState...)
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC != runs[j].CreatedAtUTC {
			return runs[i].CreatedAtUTC < runs[j].CreatedAtUTC
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

func (s *MemoryStore) SaveDiagnostics(_ context.Context, runID string, diagnostics []model.StepDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.StepDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	s.diagnostics[runID] = copied
	return nil
}

func (s *MemoryStore) GetDiagnostics(_ context.Context, runID string) ([]model.StepDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diagnostics, ok := s.diagnostics[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.StepDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	return copied, true, nil
}

func (s *MemoryStore) SaveTraceSnapshot(_ context.Context, runID string, snapshot model.TraceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot.State = append([]uint64(nil), snapshot.State...)
	rows := make([][]uint64, len(snapshot.Operator))
	for i, row := range snapshot.Operator {
		rows[i] = append([]uint64(nil), row...)
	}
	snapshot.Operator = rows
	s.traces[runID] = append(s.traces[runID], snapshot)
	return nil
}

func (s *MemoryStore) GetTraceSnapshots(_ context.Context, runID string) ([]model.TraceSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots, ok := s.traces[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.TraceSnapshot, len(snapshots))
	copy(copied, snapshots)
	return copied, true, nil
}
