package pipeline

import (
	"time"

	"scholarmap/bibnet/internal/export"
)

// Stage identifies a pipeline step
type Stage string

const (
	StageCoupling  Stage = "coupling"
	StageGraph     Stage = "graph"
	StagePartition Stage = "partition"
	StageMetrics   Stage = "metrics"
	StageAssemble  Stage = "assemble"
	StageExport    Stage = "export"
)

func (s Stage) String() string { return string(s) }

// RunStatus is the outcome of a run
type RunStatus string

const (
	StatusSuccess RunStatus = "success"
	StatusPartial RunStatus = "partial" // some cluster metrics failed
	StatusFailed  RunStatus = "failed"
)

// StageResult captures the outcome of one stage
type StageResult struct {
	Stage    Stage         `json:"stage"`
	Duration time.Duration `json:"duration"`
	Count    int           `json:"count"` // items produced: nodes, edges, clusters...
}

// Result is the full outcome of a run
type Result struct {
	RunID   string         `json:"run_id"`
	Status  RunStatus      `json:"status"`
	Stages  []StageResult  `json:"stages"`
	Outputs []string       `json:"outputs,omitempty"`
	Report  *export.Report `json:"report"`
}

// Duration sums the stage durations.
func (r *Result) Duration() time.Duration {
	var d time.Duration
	for _, s := range r.Stages {
		d += s.Duration
	}
	return d
}
