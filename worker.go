package catering

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"goflare.io/catering/models"
)

type EventProcessor interface {
	ProcessEvent(ctx context.Context, event *models.Event) error
}

type WorkerPool struct {
	tasks     chan func()
	wg        sync.WaitGroup
	shutdown  sync.Once
	logger    *zap.Logger
	processor EventProcessor
}

func NewWorkerPool(size int, processor EventProcessor, logger *zap.Logger) *WorkerPool {
	wp := &WorkerPool{
		tasks:     make(chan func(), 1000),
		logger:    logger,
		processor: processor,
	}

	wp.wg.Add(size)
	for i := 0; i < size; i++ {
		go wp.worker()
	}

	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.tasks {
		task()
	}
}

func (wp *WorkerPool) Submit(ctx context.Context, event *models.Event) {
	wp.tasks <- func() {
		if err := wp.processor.ProcessEvent(ctx, event); err != nil {
			wp.logger.Error("Failed to process event",
				zap.Error(err),
				zap.String("event_type", string(event.Type)),
				zap.String("event_id", event.ID))
		}
	}
}

// Shutdown stops accepting tasks and waits for in-flight ones to finish.
// Safe to call more than once.
func (wp *WorkerPool) Shutdown() {
	wp.shutdown.Do(func() {
		close(wp.tasks)
		wp.wg.Wait()
	})
}
