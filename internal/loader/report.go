package loader

import (
	"time"

	"github.com/google/uuid"
)

// Status is the overall outcome of a run. Stage failures ahead of the apply
// loop (readiness, provisioning, discovery) are set by the workflow runner.
type Status string

const (
	StatusSucceeded          Status = "succeeded"
	StatusReadyTimeout       Status = "ready-timeout"
	StatusProvisioningFailed Status = "provisioning-failed"
	StatusCatalogFailed      Status = "catalog-failed"
	StatusDriftDetected      Status = "drift-detected"
	StatusApplyFailed        Status = "apply-failed"
	StatusConflict           Status = "concurrent-run-conflict"
)

// Outcome is the per-artifact result of the apply loop
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped-already-applied"
	OutcomeDrift   Outcome = "drift-detected"
	OutcomeFailed  Outcome = "failed"
)

// ArtifactResult records the outcome for one attempted artifact
type ArtifactResult struct {
	Name     string  `json:"name"`
	Outcome  Outcome `json:"outcome"`
	Checksum string  `json:"checksum,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// RunReport is the engine's sole output artifact. It covers every artifact
// attempted (not the full catalog when processing halted early) and is
// produced fresh per invocation, never persisted.
type RunReport struct {
	RunID        string           `json:"run_id"`
	Status       Status           `json:"status"`
	Results      []ArtifactResult `json:"results"`
	Completed    bool             `json:"completed"`
	FirstFailure string           `json:"first_failure,omitempty"`
	Error        string           `json:"error,omitempty"`
	StartedAt    time.Time        `json:"started_at"`
	FinishedAt   time.Time        `json:"finished_at"`
}

// NewReport creates an empty report with a fresh run ID so CI logs can
// correlate output across stages.
func NewReport() *RunReport {
	return &RunReport{
		RunID:     uuid.New().String(),
		Results:   []ArtifactResult{},
		StartedAt: time.Now().UTC(),
	}
}

// Finish stamps the end time and records the terminal status
func (r *RunReport) Finish(status Status) *RunReport {
	r.Status = status
	r.FinishedAt = time.Now().UTC()
	return r
}

// Fail records a stage failure with its underlying error
func (r *RunReport) Fail(status Status, err error) *RunReport {
	if err != nil {
		r.Error = err.Error()
	}
	return r.Finish(status)
}

// Applied counts artifacts applied in this run
func (r *RunReport) Applied() int {
	return r.count(OutcomeApplied)
}

// Skipped counts artifacts already applied before this run
func (r *RunReport) Skipped() int {
	return r.count(OutcomeSkipped)
}

func (r *RunReport) count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}
