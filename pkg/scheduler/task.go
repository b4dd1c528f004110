package scheduler

import (
	"sync"
	"sync/atomic"

	"github.com/daviszhen/matidx/pkg/util"
)

var gTaskId atomic.Uint64

type Task interface {
	ID() uint64
	// Wait blocks until the task finished and returns its error.
	Wait() error
}

// JobTask runs one function once.
type JobTask struct {
	_id   uint64
	_fn   func() error
	_done chan struct{}
	_once sync.Once
	_err  error
}

func NewJobTask(fn func() error) *JobTask {
	return &JobTask{
		_id:   gTaskId.Add(1),
		_fn:   fn,
		_done: make(chan struct{}),
	}
}

func (task *JobTask) ID() uint64 {
	return task._id
}

// execute runs the job. A panic in the job becomes the task error.
func (task *JobTask) execute() {
	defer func() {
		if r := recover(); r != nil {
			task.finish(util.ConvertPanicError(r))
		}
	}()
	task.finish(task._fn())
}

func (task *JobTask) finish(err error) {
	task._once.Do(func() {
		task._err = err
		close(task._done)
	})
}

func (task *JobTask) Wait() error {
	<-task._done
	return task._err
}
