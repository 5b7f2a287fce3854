package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wadjakorntonsri/dance-trainer/pkg/logging"
)

type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskDone    TaskStatus = "done"
	TaskFailed  TaskStatus = "failed"
)

// Task is a handle on background work started by TaskRunner.
type Task struct {
	ID   string
	Name string

	mu     sync.Mutex
	status TaskStatus
	result interface{}
	err    error
	done   chan struct{}
}

// TaskSnapshot is the JSON view of a task.
type TaskSnapshot struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Status TaskStatus  `json:"status"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-t.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}

func (t *Task) Snapshot() TaskSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := TaskSnapshot{ID: t.ID, Name: t.Name, Status: t.status, Result: t.result}
	if t.err != nil {
		snap.Error = t.err.Error()
	}
	return snap
}

// TaskRunner runs background jobs and keeps their handles around so callers
// can poll for completion.
type TaskRunner struct {
	mu     sync.Mutex
	tasks  map[string]*Task
	wg     sync.WaitGroup
	maxAge time.Duration
	log    *logrus.Entry
}

func NewTaskRunner() *TaskRunner {
	return &TaskRunner{
		tasks:  make(map[string]*Task),
		maxAge: time.Hour,
		log:    logging.LogService("TaskRunner"),
	}
}

// Go starts fn on a background context; the request that triggered it may
// finish first.
func (r *TaskRunner) Go(name string, fn func(ctx context.Context) (interface{}, error)) *Task {
	t := &Task{
		ID:     uuid.NewString(),
		Name:   name,
		status: TaskPending,
		done:   make(chan struct{}),
	}

	r.mu.Lock()
	r.tasks[t.ID] = t
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		result, err := fn(context.Background())

		t.mu.Lock()
		t.result, t.err = result, err
		if err != nil {
			t.status = TaskFailed
		} else {
			t.status = TaskDone
		}
		t.mu.Unlock()
		close(t.done)

		entry := r.log.WithFields(logrus.Fields{"task": t.ID, "name": name})
		if err != nil {
			entry.WithError(err).Warn("Task failed")
		} else {
			entry.Debug("Task finished")
		}
		r.forgetLater(t.ID)
	}()
	return t
}

func (r *TaskRunner) forgetLater(id string) {
	time.AfterFunc(r.maxAge, func() {
		r.mu.Lock()
		delete(r.tasks, id)
		r.mu.Unlock()
	})
}

func (r *TaskRunner) Get(id string) (*Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	return t, ok
}

// Shutdown waits for running tasks or until ctx is done.
func (r *TaskRunner) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
