package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type statusHistory map[string][]core.Status

// JobRunner runs a check and records its outcome on the job.
type JobRunner interface {
	RunJob(ctx context.Context, j *core.CheckJob)
}

// CheckScheduler runs submitted checks on a fixed pool of workers and keeps the
// DB copy of each check in step with its status.
type CheckScheduler struct {
	queue   *CheckQueue
	runner  JobRunner
	db      core.DBManager
	workers int

	mu            sync.Mutex
	statusHistory statusHistory
	pending       sync.WaitGroup
	onFinish      []func(*core.CheckJob)
}

type jobInScheduler struct {
	job *core.CheckJob
	// guarded by CheckScheduler.mu
	started   bool
	cancelled bool
}

func NewCheckScheduler(runner JobRunner, db core.DBManager) *CheckScheduler {
	return &CheckScheduler{
		runner: runner,
		db:     db,
	}
}

func (n *CheckScheduler) Setup(conf *core.Conf) error {
	n.queue = &CheckQueue{}
	if err := n.queue.Setup(conf); err != nil {
		return err
	}
	n.workers = conf.Workers
	if n.workers <= 0 {
		n.workers = 1
	}
	n.statusHistory = make(statusHistory)
	return nil
}

// OnFinish registers f to be called with a copy of every check that reaches a
// final status. Register before Start.
func (n *CheckScheduler) OnFinish(f func(*core.CheckJob)) {
	n.onFinish = append(n.onFinish, f)
}

func (n *CheckScheduler) finished(j *core.CheckJob) {
	for _, f := range n.onFinish {
		f(j.Clone())
	}
}

// Start runs the workers until ctx is done.
func (n *CheckScheduler) Start(ctx context.Context) error {
	zap.L().Debug(fmt.Sprintf("starting %d workers", n.workers))
	eg, ctx := errgroup.WithContext(ctx)
	for w := 0; w < n.workers; w++ {
		worker := w
		eg.Go(func() error {
			return n.work(ctx, worker)
		})
	}
	return eg.Wait()
}

func (n *CheckScheduler) work(ctx context.Context, worker int) error {
	for {
		jis, err := n.queue.Dequeue(ctx, true)
		if err != nil {
			if ctx.Err() != nil {
				zap.L().Debug(fmt.Sprintf("worker %d stopped", worker))
				return nil
			}
			zap.L().Error(fmt.Sprintf("worker %d failed to get a check from the queue. Reason:%s", worker, err))
			continue
		}
		if !n.claim(jis) {
			zap.L().Debug(fmt.Sprintf("skipping cancelled check:%s", jis.job.ID))
			continue
		}
		n.process(ctx, jis.job)
	}
}

func (n *CheckScheduler) claim(jis *jobInScheduler) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if jis.cancelled {
		return false
	}
	jis.started = true
	return true
}

func (n *CheckScheduler) process(ctx context.Context, j *core.CheckJob) {
	defer n.pending.Done()
	zap.L().Debug(fmt.Sprintf("processing check:%s", j.ID))
	j.Status = core.RUNNING
	n.record(j)
	func() {
		defer func() {
			if r := recover(); r != nil {
				j.SetFailureWithError(fmt.Errorf("check panicked: %v", r))
			}
		}()
		n.runner.RunJob(ctx, j)
	}()
	if !j.IsFinished() {
		j.SetFailureWithError(errors.New("check ended without a verdict"))
	}
	n.record(j)
	n.finished(j)
	zap.L().Debug(fmt.Sprintf("finished to process check(%s), status:%s", j.ID, j.Status))
}

func (n *CheckScheduler) record(j *core.CheckJob) {
	n.mu.Lock()
	n.statusHistory[j.ID] = append(n.statusHistory[j.ID], j.Status)
	n.mu.Unlock()
	if err := n.db.Update(j); err != nil {
		zap.L().Error(fmt.Sprintf("failed to update check(%s). Reason:%s", j.ID, err))
	}
}

// Submit stores j and queues it. A check the queue cannot take is stored as failed.
func (n *CheckScheduler) Submit(j *core.CheckJob) error {
	return n.submit(j, n.queue.Put)
}

// SubmitWait is Submit that waits for room in the queue until ctx is done.
func (n *CheckScheduler) SubmitWait(ctx context.Context, j *core.CheckJob) error {
	return n.submit(j, func(jis *jobInScheduler) error {
		return n.queue.PutWait(ctx, jis)
	})
}

func (n *CheckScheduler) submit(j *core.CheckJob, put func(*jobInScheduler) error) error {
	if j.Status != core.READY {
		return fmt.Errorf("check(%s) is %s, not ready", j.ID, j.Status)
	}
	if err := n.db.Insert(j); err != nil {
		return err
	}
	n.mu.Lock()
	n.statusHistory[j.ID] = []core.Status{j.Status}
	n.mu.Unlock()

	n.pending.Add(1)
	if err := put(&jobInScheduler{job: j}); err != nil {
		n.pending.Done()
		j.SetFailureWithError(err)
		n.record(j)
		n.finished(j)
		return err
	}
	return nil
}

// Cancel drops a check that has not started yet.
func (n *CheckScheduler) Cancel(jobID string) error {
	jis, err := n.queue.Find(jobID)
	if err != nil {
		return fmt.Errorf("check(%s) is not waiting: %w", jobID, err)
	}
	n.mu.Lock()
	if jis.started || jis.cancelled {
		n.mu.Unlock()
		return fmt.Errorf("check(%s) is not waiting", jobID)
	}
	jis.cancelled = true
	n.mu.Unlock()

	defer n.pending.Done()
	jis.job.Status = core.CANCELLED
	jis.job.Message = "cancelled before running"
	jis.job.Ended = strfmt.DateTime(time.Now())
	n.record(jis.job)
	n.finished(jis.job)
	return nil
}

// Wait blocks until every submitted check has finished or been cancelled.
func (n *CheckScheduler) Wait() {
	n.pending.Wait()
}

func (n *CheckScheduler) StatusHistory(jobID string) []core.Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]core.Status(nil), n.statusHistory[jobID]...)
}

func (n *CheckScheduler) GetCurrentQueueSize() int {
	return n.queue.GetCurrentSize()
}
