// Package jobs runs the background classification sweep that retries
// documents parked in pending_classification.
package jobs

import (
	"context"
	"log"
	"time"
)

// JobProcessor is one polling pass over whatever work is queued.
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker drives a JobProcessor on a fixed interval. A failed pass is logged
// and retried on the next tick rather than stopping the loop.
type Worker struct {
	processor    JobProcessor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

func NewWorker(processor JobProcessor, pollInterval time.Duration) *Worker {
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start runs the polling loop until the context is cancelled or Stop is
// called. The first pass runs immediately so a restart does not leave
// parked documents waiting a full interval.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("classification sweep started, interval %v", w.pollInterval)

	if err := w.processor.ProcessJobs(ctx); err != nil {
		log.Printf("sweep pass failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("classification sweep stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("classification sweep stopped")
			return
		case <-ticker.C:
			if err := w.processor.ProcessJobs(ctx); err != nil {
				log.Printf("sweep pass failed: %v", err)
			}
		}
	}
}

// Stop signals the loop and waits for the in-flight pass to finish.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
}
