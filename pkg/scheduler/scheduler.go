package scheduler

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/daviszhen/matidx/pkg/util"
)

type Scheduler interface {
	// Schedule submits fn and returns at once.
	Schedule(fn func() error) Task
	// WaitForTasks blocks until every task completed and joins their errors.
	WaitForTasks(tasks []Task) error
	Close()
}

func waitForTasks(tasks []Task) error {
	var errs []error
	for _, task := range tasks {
		if err := task.Wait(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ImmediateScheduler runs every job on the calling goroutine.
type ImmediateScheduler struct{}

func NewImmediateScheduler() *ImmediateScheduler {
	return &ImmediateScheduler{}
}

func (sched *ImmediateScheduler) Schedule(fn func() error) Task {
	task := NewJobTask(fn)
	task.execute()
	return task
}

func (sched *ImmediateScheduler) WaitForTasks(tasks []Task) error {
	return waitForTasks(tasks)
}

func (sched *ImmediateScheduler) Close() {}

// NodeQueueScheduler runs jobs on a bounded worker pool.
type NodeQueueScheduler struct {
	_pool *ants.Pool
}

func NewNodeQueueScheduler(workers int) (*NodeQueueScheduler, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(v interface{}) {
		util.Error("worker panic", zap.Any("panic", v))
	}))
	if err != nil {
		return nil, err
	}
	return &NodeQueueScheduler{
		_pool: pool,
	}, nil
}

func (sched *NodeQueueScheduler) Schedule(fn func() error) Task {
	task := NewJobTask(fn)
	if err := sched._pool.Submit(task.execute); err != nil {
		task.finish(fmt.Errorf("submit task %d: %w", task.ID(), err))
	}
	return task
}

func (sched *NodeQueueScheduler) WaitForTasks(tasks []Task) error {
	return waitForTasks(tasks)
}

func (sched *NodeQueueScheduler) Workers() int {
	return sched._pool.Cap()
}

func (sched *NodeQueueScheduler) Close() {
	sched._pool.Release()
}

var gCurrent atomic.Pointer[Scheduler]

func init() {
	var sched Scheduler = NewImmediateScheduler()
	gCurrent.Store(&sched)
}

// Current returns the process wide scheduler.
func Current() Scheduler {
	return *gCurrent.Load()
}

// SetCurrent replaces the process wide scheduler and returns the previous one.
func SetCurrent(sched Scheduler) Scheduler {
	return *gCurrent.Swap(&sched)
}

// New builds a scheduler from its config.
func New(cfg *util.SchedulerConfig) (Scheduler, error) {
	switch cfg.Kind {
	case "", "immediate":
		return NewImmediateScheduler(), nil
	case "nodeQueue":
		return NewNodeQueueScheduler(cfg.Workers)
	default:
		return nil, fmt.Errorf("unknown scheduler kind %q", cfg.Kind)
	}
}
