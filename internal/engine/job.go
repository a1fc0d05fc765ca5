package engine

import (
	"context"
	"sync"
)

// RunJob adapts the engine to the worker pool's Job interface and keeps the
// latest result available for the reporting API.
type RunJob struct {
	engine *Engine

	mu   sync.RWMutex
	last *RunResult
}

// NewRunJob creates the scheduled job wrapper.
func NewRunJob(e *Engine) *RunJob {
	return &RunJob{engine: e}
}

// Process implements worker.Job.
func (j *RunJob) Process(ctx context.Context) error {
	result, err := j.engine.Run(ctx)
	if err != nil {
		return err
	}

	j.mu.Lock()
	j.last = result
	j.mu.Unlock()
	return nil
}

// LastResult returns the most recent completed run, or nil before the first
// run finishes.
func (j *RunJob) LastResult() *RunResult {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.last
}
