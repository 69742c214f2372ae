package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// CurrentVersion stamps a record with the versions this build writes.
func CurrentVersion() VersionedRecord {
	return VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}

// RunRecord is one completed sampling run.
type RunRecord struct {
	VersionedRecord
	ID            string   `json:"id"`
	Model         string   `json:"model"`
	Width         int      `json:"width"`
	Height        int      `json:"height"`
	FieldOrder    uint64   `json:"field_order"`
	Steps         int      `json:"steps"`
	Seed          int64    `json:"seed"`
	Temperature   float64  `json:"temperature"`
	Schedule      string   `json:"schedule"`
	Testing       bool     `json:"testing"`
	AcceptedSteps int      `json:"accepted_steps"`
	FinalState    []uint64 `json:"final_state"`
	CreatedAtUTC  string   `json:"created_at_utc"`
}

// StepDiagnostics summarizes one chain step.
type StepDiagnostics struct {
	Step         int    `json:"step"`
	Accepted     bool   `json:"accepted"`
	Bonds        int    `json:"bonds"`
	ZeroProposal bool   `json:"zero_proposal"`
	SpinCounts   []int  `json:"spin_counts"`
	Model        string `json:"model,omitempty"`
}

// TraceSnapshot is the diagnostic side channel of one proposal: the state
// vector going in and the induced boundary operator, keyed by step.
type TraceSnapshot struct {
	VersionedRecord
	Step     int        `json:"step"`
	State    []uint64   `json:"state"`
	Operator [][]uint64 `json:"operator"`
}
