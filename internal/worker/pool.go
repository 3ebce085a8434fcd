package worker

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const (
	TASK_CHAN_SIZE = 100
)

type WorkerFunction = func(t *tomb.Tomb, task any) error

// Pool runs a fixed number of workers which pull tasks off a shared queue.
// Workers live as long as the tomb they were started under.
type Pool struct {
	n     int      // number of workers
	tasks chan any // task queue
}

func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		n:     size,
		tasks: make(chan any, TASK_CHAN_SIZE),
	}
}

// Start launches the workers under t. It does not block.
func (pool *Pool) Start(t *tomb.Tomb, work WorkerFunction) {
	for id := range pool.n {
		t.Go(func() error {
			return pool.worker(t, id, work)
		})
	}
}

// Submit queues a task, blocking while the queue is full. It gives up once
// the tomb starts dying.
func (pool *Pool) Submit(t *tomb.Tomb, task any) error {
	select {
	case <-t.Dying():
		return tomb.ErrDying
	default:
	}

	select {
	case <-t.Dying():
		return tomb.ErrDying
	case pool.tasks <- task:
		return nil
	}
}

// Workers wait on tasks in the task queue and action them. An error from
// work is fatal to the tomb.
func (pool *Pool) worker(t *tomb.Tomb, id int, work WorkerFunction) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-pool.tasks:
			if err := work(t, task); err != nil {
				log.Error().Err(err).Int("id", id).Msg("worker exiting")
				return err
			}
		}
	}
}
