package benchmarks

import (
	"fmt"
)

// Stages of one grid point, in execution order.
type Tstage string

const (
	STAGE_DEPLOY      Tstage = "deploy"
	STAGE_WARMUP             = "warmup"
	STAGE_READY_START        = "ready-start"
	STAGE_WINDOW             = "window"
	STAGE_READY_END          = "ready-end"
)

// StageErr is a fatal failure of one grid point.
type StageErr struct {
	Stage      Tstage
	Count      int
	Difficulty int
	Err        error
}

func newStageErr(stage Tstage, cfg *ExperimentConfig, err error) *StageErr {
	return &StageErr{Stage: stage, Count: cfg.Count, Difficulty: cfg.Difficulty, Err: err}
}

func (e *StageErr) Error() string {
	return fmt.Sprintf("%v failed (COUNT=%d, DIFFICULTY=%d): %v", e.Stage, e.Count, e.Difficulty, e.Err)
}

func (e *StageErr) Unwrap() error {
	return e.Err
}
