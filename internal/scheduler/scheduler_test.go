package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/meridianfarm/bloomwatch/internal/worker"
)

type tickJob struct {
	count atomic.Int64
}

func (j *tickJob) Process(_ context.Context) error {
	j.count.Add(1)
	return nil
}

func TestScheduler_RunsJobOnInterval(t *testing.T) {
	pool := worker.NewPool(1, 2)
	pool.Start()
	defer pool.Stop()

	s := New(pool)
	job := &tickJob{}
	s.Schedule(10*time.Millisecond, job)
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return job.count.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_StopHaltsTicks(t *testing.T) {
	pool := worker.NewPool(1, 2)
	pool.Start()
	defer pool.Stop()

	s := New(pool)
	job := &tickJob{}
	s.Schedule(5*time.Millisecond, job)

	assert.Eventually(t, func() bool {
		return job.count.Load() >= 1
	}, time.Second, time.Millisecond)
	s.Stop()

	settled := job.count.Load()
	time.Sleep(30 * time.Millisecond)
	assert.LessOrEqual(t, job.count.Load(), settled+1, "at most one in-flight tick after Stop")
}
