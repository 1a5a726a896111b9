// Package remote drives providers whose backend work is asynchronous:
// submit a job, poll at a fixed interval until a terminal state, fetch
// the result to local storage.
package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"clipforge/provider"
)

// State is a remote job's lifecycle state.
type State string

const (
	StateSubmitted State = "submitted"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Terminal reports whether the state ends the job.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Status is one poll observation. Reason carries the remote-reported
// failure detail verbatim when State is failed; Result is the remote
// content location when State is succeeded.
type Status struct {
	State  State
	Reason string
	Result string
}

// Backend is the remote side of an asynchronous job.
type Backend interface {
	Submit(ctx context.Context) (id string, err error)
	Poll(ctx context.Context, id string) (Status, error)
	Fetch(ctx context.Context, result, destination string) error
}

const (
	DefaultInterval = 4 * time.Second
	DefaultBudget   = 4 * time.Minute
)

// Poller runs the submit → poll → fetch state machine for one provider.
// The clock and sleep are injectable so the machine is testable without
// wall-clock waits.
type Poller struct {
	provider string
	interval time.Duration
	budget   time.Duration
	log      *logrus.Entry

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// New builds a poller for the named provider. Zero interval or budget
// select the defaults; video jobs typically want a larger budget than
// image jobs.
func New(providerName string, interval, budget time.Duration, log *logrus.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Poller{
		provider: providerName,
		interval: interval,
		budget:   budget,
		log:      log.WithField("stage", "poll").WithField("provider", providerName),
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run executes one job to completion. It returns only after the result
// has been fetched and durably stored at destination; a job is not done
// until its output exists locally. A job that reports failure yields a
// GenerationError carrying the remote reason; a job that never reaches a
// terminal state within the budget yields a TimeoutError.
func (p *Poller) Run(ctx context.Context, backend Backend, destination string) error {
	id, err := backend.Submit(ctx)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	p.log.WithField("job", id).Info("job submitted")

	deadline := p.now().Add(p.budget)
	for {
		if !p.now().Before(deadline) {
			return &provider.TimeoutError{Provider: p.provider, Budget: p.budget}
		}
		if err := p.sleep(ctx, p.interval); err != nil {
			return err
		}

		status, err := backend.Poll(ctx, id)
		if err != nil {
			return fmt.Errorf("poll job %s: %w", id, err)
		}

		switch status.State {
		case StateSucceeded:
			if err := backend.Fetch(ctx, status.Result, destination); err != nil {
				return fmt.Errorf("fetch job %s result: %w", id, err)
			}
			p.log.WithField("job", id).WithField("dest", destination).Info("job result stored")
			return nil
		case StateFailed:
			return &provider.GenerationError{Provider: p.provider, Reason: status.Reason}
		case StateSubmitted, StateRunning:
			p.log.WithField("job", id).WithField("state", string(status.State)).Debug("still waiting")
		default:
			return &provider.GenerationError{Provider: p.provider, Reason: fmt.Sprintf("unknown job state %q", status.State)}
		}
	}
}
