package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/vista/engine/assets"
	"github.com/spaghettifunk/vista/engine/core"
)

// JobTask is work run on a worker goroutine. Its callbacks run later on the
// render thread, when the task queue is drained.
type JobTask struct {
	Name string
	Run  func() (any, error)
	// OnComplete receives the result of a successful Run.
	OnComplete func(result any)
	OnFailure  func(err error)
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	tasks      *core.TaskQueue
	wg         sync.WaitGroup

	mutex  sync.RWMutex
	closed bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = errors.New("job system is shut down")

// NewJobSystem starts numWorkers workers. Callbacks are posted to tasks.
func NewJobSystem(numWorkers int, channelSize int, tasks *core.TaskQueue) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}
	if tasks == nil {
		return nil, core.Errorf(core.ErrInvalidConfig, "job system requires a task queue")
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
		tasks:      tasks,
	}
	js.start()
	core.LogInfo("job system started with %d workers", numWorkers)
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	result, err := job.Run()
	var callback core.Task
	if err != nil {
		core.LogError("job '%s' failed: %s", job.Name, err)
		if job.OnFailure != nil {
			callback = func() { job.OnFailure(err) }
		}
	} else if job.OnComplete != nil {
		callback = func() { job.OnComplete(result) }
	}
	if callback == nil {
		return
	}
	if err := js.tasks.Post(callback); err != nil {
		core.LogError("job '%s' dropped its callback: %s", job.Name, err)
	}
}

// Submit queues job, blocking while the queue is full.
func (js *JobSystem) Submit(job JobTask) error {
	if job.Run == nil {
		core.Violation("JobSystem.Submit", "job '%s' has nothing to run", job.Name)
	}
	js.mutex.RLock()
	defer js.mutex.RUnlock()
	if js.closed {
		return ErrJobSystemClosed
	}
	js.jobQueue <- job
	return nil
}

// AddWorkNonBlocking queues job from a new goroutine and returns immediately.
func (js *JobSystem) AddWorkNonBlocking(job JobTask) {
	go func() {
		if err := js.Submit(job); err != nil {
			core.LogError("job '%s' not queued: %s", job.Name, err)
		}
	}()
}

// LoadMaterial acquires path on a worker and hands the material to onLoaded
// on the render thread.
func (js *JobSystem) LoadMaterial(am *assets.AssetManager, path string, onLoaded func(*assets.Material), onFailure func(error)) error {
	return js.Submit(JobTask{
		Name: "load " + path,
		Run: func() (any, error) {
			return am.AcquireMaterial(path)
		},
		OnComplete: func(result any) {
			onLoaded(result.(*assets.Material))
		},
		OnFailure: onFailure,
	})
}

// Shutdown stops accepting jobs and waits for queued ones to finish.
func (js *JobSystem) Shutdown() error {
	js.mutex.Lock()
	if js.closed {
		js.mutex.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.mutex.Unlock()

	js.wg.Wait()
	return nil
}
