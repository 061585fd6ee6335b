package deploy

import "time"

// Run is the record of a single pipeline execution.
type Run struct {
	// ID uniquely identifies the run in logs and reports.
	ID string `yaml:"id"`
	// StartedAt is when the first stage was started.
	StartedAt time.Time `yaml:"started_at"`
	// FinishedAt is when the last executed stage returned.
	FinishedAt time.Time `yaml:"finished_at"`
	// Stages holds results of the stages that ran, in order.
	Stages []StageResult `yaml:"stages"`
	// FailedStage names the stage that aborted the run, if any.
	FailedStage string `yaml:"failed_stage,omitempty"`
	// ExitCode is the overall exit status of the run.
	ExitCode int `yaml:"exit_code"`
}

// Succeeded reports whether every stage completed.
func (r *Run) Succeeded() bool {
	return r.FailedStage == "" && r.ExitCode == 0
}

// Clone returns a deep copy of the run.
func (r *Run) Clone() *Run {
	if r == nil {
		return nil
	}

	cloned := *r
	cloned.Stages = append([]StageResult(nil), r.Stages...)

	return &cloned
}
