package scheduler

import (
	"context"
	"fmt"

	conq "github.com/enriquebris/goconcurrentqueue"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"go.uber.org/zap"
)

type fifo interface {
	Enqueue(*jobInScheduler) error
	Dequeue() (*jobInScheduler, error)
	DequeueOrWaitForNextElementContext(ctx context.Context) (*jobInScheduler, error)
	Get(index int) (*jobInScheduler, error)
	GetLen() int
}

type conqFIFO struct {
	*conq.FIFO
}

func newConqFIFO() *conqFIFO {
	return &conqFIFO{
		FIFO: conq.NewFIFO(),
	}
}

func (c *conqFIFO) Enqueue(js *jobInScheduler) error {
	return c.FIFO.Enqueue(js)
}

func (c *conqFIFO) Dequeue() (*jobInScheduler, error) {
	tmp, err := c.FIFO.Dequeue()
	if err != nil {
		return nil, err
	}
	return tmp.(*jobInScheduler), nil
}

func (c *conqFIFO) DequeueOrWaitForNextElementContext(ctx context.Context) (*jobInScheduler, error) {
	tmp, err := c.FIFO.DequeueOrWaitForNextElementContext(ctx)
	if err != nil {
		return nil, err
	}
	return tmp.(*jobInScheduler), nil
}

func (c *conqFIFO) Get(index int) (*jobInScheduler, error) {
	tmp, err := c.FIFO.Get(index)
	if err != nil {
		return nil, err
	}
	return tmp.(*jobInScheduler), nil
}

// CheckQueue holds the checks waiting for a worker, bounded by QueueMaxSize.
// A slot is taken on put and given back on dequeue.
type CheckQueue struct {
	fifo    fifo
	maxSize int
	slots   chan struct{}
}

func (n *CheckQueue) Setup(conf *core.Conf) error {
	if conf.QueueMaxSize <= 0 {
		return fmt.Errorf("queue max size must be positive, got %d", conf.QueueMaxSize)
	}
	n.maxSize = conf.QueueMaxSize
	n.slots = make(chan struct{}, conf.QueueMaxSize)
	n.fifo = newConqFIFO()
	return nil
}

// Put queues jis, failing when the queue is full.
func (n *CheckQueue) Put(jis *jobInScheduler) error {
	select {
	case n.slots <- struct{}{}:
	default:
		zap.L().Info(fmt.Sprintf("Failed to put %s. Check queue is full.", jis.job.ID))
		return fmt.Errorf("check queue is full (max size %d)", n.maxSize)
	}
	return n.enqueue(jis)
}

// PutWait queues jis, waiting for a free slot until ctx is done.
func (n *CheckQueue) PutWait(ctx context.Context, jis *jobInScheduler) error {
	select {
	case n.slots <- struct{}{}:
	case <-ctx.Done():
		zap.L().Info(fmt.Sprintf("Gave up putting %s to the check queue. Reason:%s", jis.job.ID, ctx.Err()))
		return ctx.Err()
	}
	return n.enqueue(jis)
}

func (n *CheckQueue) enqueue(jis *jobInScheduler) error {
	zap.L().Debug(fmt.Sprintf("Putting %s to the check queue", jis.job.ID))
	if err := n.fifo.Enqueue(jis); err != nil {
		<-n.slots
		zap.L().Error(fmt.Sprintf("Failed to put %s to the check queue. Reason:%s", jis.job.ID, err))
		return err
	}
	return nil
}

// Dequeue waits for the next check when wait is set, until ctx is done.
func (n *CheckQueue) Dequeue(ctx context.Context, wait bool) (jis *jobInScheduler, err error) {
	if wait {
		jis, err = n.fifo.DequeueOrWaitForNextElementContext(ctx)
	} else {
		jis, err = n.fifo.Dequeue()
	}
	if err != nil {
		zap.L().Debug("no check in the queue.", zap.Error(err))
		return nil, err
	}
	<-n.slots
	zap.L().Debug(fmt.Sprintf("Dequeued check:%s", jis.job.ID))
	return jis, nil
}

// Find returns the waiting entry of a check.
func (n *CheckQueue) Find(jobID string) (*jobInScheduler, error) {
	_, jis, err := n.getIdx(jobID)
	if err != nil {
		zap.L().Info(fmt.Sprintf("Failed to find %s. Reason:%s", jobID, err))
		return nil, err
	}
	return jis, nil
}

func (n *CheckQueue) GetCurrentSize() int {
	return n.fifo.GetLen()
}

func (n *CheckQueue) getIdx(jobID string) (int, *jobInScheduler, error) {
	for i := 0; i < n.fifo.GetLen(); i++ {
		js, err := n.fifo.Get(i)
		if err == nil && js.job.ID == jobID {
			return i, js, nil
		}
	}
	return 0, nil, fmt.Errorf("No entry")
}
