package core

import (
	"errors"
	"sync"

	"github.com/spaghettifunk/vista/engine/containers"
)

// Task is a unit of work that must run on the render thread.
type Task func()

// TaskQueue marshals work from background goroutines (file watchers, job
// workers) onto the frame loop. Post is safe from any goroutine; Drain must
// only be called by the render thread.
type TaskQueue struct {
	mutex sync.Mutex
	queue *containers.RingQueue[Task]
}

func NewTaskQueue(capacity int) *TaskQueue {
	return &TaskQueue{queue: containers.NewRingQueue[Task](capacity)}
}

func (q *TaskQueue) Post(t Task) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if err := q.queue.Enqueue(t); err != nil {
		if errors.Is(err, containers.ErrQueueFull) {
			return ErrQueueFull
		}
		return err
	}
	return nil
}

// Drain runs every queued task in FIFO order and returns how many ran.
// Tasks posted while draining run on the next call.
func (q *TaskQueue) Drain() int {
	q.mutex.Lock()
	pending := make([]Task, 0, q.queue.Len())
	for !q.queue.IsEmpty() {
		t, _ := q.queue.Dequeue()
		pending = append(pending, t)
	}
	q.mutex.Unlock()

	for _, t := range pending {
		t()
	}
	return len(pending)
}

func (q *TaskQueue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.queue.Len()
}
