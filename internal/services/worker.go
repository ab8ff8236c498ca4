package services

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// InferencePool runs CPU-heavy jobs, such as local speech recognition, on a
// fixed set of goroutines so request handlers only wait on the result.
type InferencePool interface {
	Start(ctx context.Context)
	Stop()
	Submit(ctx context.Context, job func(ctx context.Context)) error
}

type inferencePool struct {
	jobQueue    chan func(context.Context)
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
}

func NewInferencePool(concurrency int) InferencePool {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &inferencePool{
		jobQueue:    make(chan func(context.Context), 100),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
	}
}

// Start implements InferencePool.
func (w *inferencePool) Start(ctx context.Context) {
	log.Printf("🚀 Starting inference pool with %d workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// Stop implements InferencePool. Jobs still queued are run with a cancelled
// context so their submitters are released.
func (w *inferencePool) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping inference pool...")
		close(w.stopChan)
		w.wg.Wait()

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		for {
			select {
			case job := <-w.jobQueue:
				job(cancelled)
			default:
				log.Println("✅ Inference pool stopped")
				return
			}
		}
	})
}

// Submit implements InferencePool.
func (w *inferencePool) Submit(ctx context.Context, job func(ctx context.Context)) error {
	select {
	case <-w.stopChan:
		return fmt.Errorf("%w: inference pool stopped", ErrServiceUnavailable)
	default:
	}

	select {
	case w.jobQueue <- job:
		return nil
	case <-w.stopChan:
		return fmt.Errorf("%w: inference pool stopped", ErrServiceUnavailable)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *inferencePool) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Inference worker #%d stopped\n", workerID)
			return
		case job := <-w.jobQueue:
			w.run(ctx, workerID, job)
		}
	}
}

func (w *inferencePool) run(ctx context.Context, workerID int, job func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Inference worker #%d recovered from panic: %v\n", workerID, r)
		}
	}()
	job(ctx)
}
