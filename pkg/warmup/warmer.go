// Package warmup pre-renders fragments into the cache with a worker pool.
package warmup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/html-fragment-cache/pkg/fragment"
)

// Config holds warmer configuration
type Config struct {
	// MaxConcurrency is the maximum number of fragments rendered in parallel
	MaxConcurrency int
	// Timeout per fragment render
	Timeout time.Duration
	// Refresh forgets each fragment before rendering it again
	Refresh bool
}

// DefaultConfig returns a conservative configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 10,
		Timeout:        15 * time.Second,
	}
}

// Renderer is the part of fragment.Service the warmer needs
type Renderer interface {
	RememberHTML(ctx context.Context, identifier string, build fragment.Builder, opts ...fragment.Option) (string, error)
	Forget(ctx context.Context, identifier string, opts ...fragment.Option) error
}

// Job describes one fragment to warm
type Job struct {
	Identifier string
	Build      fragment.Builder
	Options    []fragment.Option
}

// Result represents the outcome of warming a single fragment
type Result struct {
	Identifier string
	Bytes      int
	Err        error
}

// Warmer renders many fragments concurrently
type Warmer struct {
	renderer Renderer
	config   Config
}

// NewWarmer creates a new warmer
func NewWarmer(renderer Renderer, config Config) *Warmer {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 10
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &Warmer{
		renderer: renderer,
		config:   config,
	}
}

// Jobs builds one job per identifier sharing build and opts.
func Jobs(identifiers []string, build func(identifier string) fragment.Builder, opts ...fragment.Option) []Job {
	jobs := make([]Job, 0, len(identifiers))
	for _, id := range identifiers {
		jobs = append(jobs, Job{Identifier: id, Build: build(id), Options: opts})
	}
	return jobs
}

// Warm renders every job. A failing job does not stop the others.
// Results are returned in job order; the error summarizes failures.
// Jobs not started before ctx is cancelled report ctx.Err().
func (w *Warmer) Warm(ctx context.Context, jobs []Job) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(jobs))
	for i, job := range jobs {
		results[i] = Result{Identifier: job.Identifier}
	}
	if len(jobs) == 0 {
		return results, nil
	}

	log.Info().
		Int("fragments", len(jobs)).
		Int("workers", w.config.MaxConcurrency).
		Msg("Starting cache warmup")

	queue := make(chan int, len(jobs))
	for i := range jobs {
		queue <- i
	}
	close(queue)

	workers := w.config.MaxConcurrency
	if workers > len(jobs) {
		workers = len(jobs)
	}

	var (
		wg      sync.WaitGroup
		started = make([]bool, len(jobs))
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go w.worker(ctx, jobs, queue, results, started, &wg, i)
	}
	wg.Wait()

	failed := 0
	var firstErr error
	for i := range results {
		if !started[i] {
			results[i].Err = ctx.Err()
		}
		if results[i].Err != nil {
			failed++
			if firstErr == nil {
				firstErr = results[i].Err
			}
		}
	}

	log.Info().
		Int("fragments", len(jobs)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Cache warmup complete")

	if failed > 0 {
		return results, fmt.Errorf("warmup failed for %d of %d fragments: %w", failed, len(jobs), firstErr)
	}
	return results, nil
}

// worker renders jobs from the queue. Each index is written by one worker only.
func (w *Warmer) worker(ctx context.Context, jobs []Job, queue <-chan int, results []Result, started []bool, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	processed := 0

	for i := range queue {
		// Check context cancellation
		select {
		case <-ctx.Done():
			log.Debug().
				Int("worker_id", workerID).
				Int("fragments_processed", processed).
				Msg("Worker stopping (context cancelled)")
			return
		default:
		}

		started[i] = true
		results[i] = w.warm(ctx, jobs[i])
		processed++
	}

	if processed > 0 {
		log.Debug().
			Int("worker_id", workerID).
			Int("fragments_processed", processed).
			Msg("Worker completed")
	}
}

func (w *Warmer) warm(ctx context.Context, job Job) Result {
	jobCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	res := Result{Identifier: job.Identifier}
	if w.config.Refresh {
		if err := w.renderer.Forget(jobCtx, job.Identifier, job.Options...); err != nil {
			res.Err = err
			return res
		}
	}

	html, err := w.renderer.RememberHTML(jobCtx, job.Identifier, job.Build, job.Options...)
	if err != nil {
		log.Warn().
			Err(err).
			Str("identifier", job.Identifier).
			Msg("Fragment warmup failed")
		res.Err = err
		return res
	}

	res.Bytes = len(html)
	return res
}
