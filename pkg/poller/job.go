/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package poller schedules the periodic work of bindings.
package poller

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/carverauto/bindings/pkg/logger"
)

var errJobRunning = errors.New("job already running")

// JobOptions configures a Job.
type JobOptions struct {
	Name string
	// InitialDelay is waited once before the first run.
	InitialDelay time.Duration
	// Delay is waited between the end of one run and the start of the next.
	// A non-positive Delay makes the job run only once.
	Delay  time.Duration
	Clock  Clock
	Logger logger.Logger
}

// Job runs a function on a fixed-delay schedule in its own goroutine.
type Job struct {
	opts JobOptions
	fn   func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewJob creates a stopped job.
func NewJob(opts JobOptions, fn func(ctx context.Context)) *Job {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}

	if opts.Logger == nil {
		opts.Logger = logger.NewTestLogger()
	}

	return &Job{opts: opts, fn: fn}
}

// Start launches the job. The job stops when ctx is done or Stop is called.
// Runs receive a context that carries ctx's values but not its
// cancellation, so a stop never cuts off a request already in flight.
func (j *Job) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cancel != nil {
		return fmt.Errorf("%w: %s", errJobRunning, j.opts.Name)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	j.cancel = cancel
	j.done = done

	go j.loop(ctx, done)

	return nil
}

// Stop cancels the schedule and waits for an in-flight run to finish.
func (j *Job) Stop() {
	j.mu.Lock()
	cancel, done := j.cancel, j.done
	j.cancel, j.done = nil, nil
	j.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

// Running reports whether the job has been started and not stopped.
func (j *Job) Running() bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.cancel != nil
}

func (j *Job) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	if !j.wait(ctx, j.opts.InitialDelay) {
		return
	}

	for {
		j.runOnce(ctx)

		if j.opts.Delay <= 0 || !j.wait(ctx, j.opts.Delay) {
			return
		}
	}
}

func (j *Job) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 || ctx.Err() != nil {
		return ctx.Err() == nil
	}

	select {
	case <-ctx.Done():
		return false
	case <-j.opts.Clock.After(d):
		return true
	}
}

func (j *Job) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			j.opts.Logger.Error().
				Str("job", j.opts.Name).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from panic in scheduled job")
		}
	}()

	start := j.opts.Clock.Now()

	j.fn(context.WithoutCancel(ctx))

	j.opts.Logger.Debug().
		Str("job", j.opts.Name).
		Dur("duration", j.opts.Clock.Now().Sub(start)).
		Msg("Scheduled job run completed")
}
