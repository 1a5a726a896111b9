// Package resolve centralizes provider fallback policy: one ordered
// preference walk per capability, deterministic and fully logged, so a
// rerun with identical configuration reproduces the identical choice.
package resolve

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"clipforge/provider"
)

// Policy decides what happens when a configured provider fails with a
// non-auth error. Auth failures always demote to the next preference
// regardless of policy.
type Policy int

const (
	// SurfaceErrors propagates the first non-auth failure to the caller.
	SurfaceErrors Policy = iota
	// UsePlaceholder demotes to the chain's placeholder on any failure,
	// guaranteeing completion.
	UsePlaceholder
)

// Chain is an ordered provider preference list for one capability, with
// an optional always-available placeholder at the end.
type Chain[T provider.Provider] struct {
	capability  provider.Capability
	prefs       []T
	placeholder T
	hasFallback bool
	policy      Policy
	log         *logrus.Entry
}

// NewChain builds a resolver for one capability. prefs are tried in
// order; the first whose Configured() reports true is attempted.
func NewChain[T provider.Provider](capability provider.Capability, policy Policy, log *logrus.Logger, prefs ...T) *Chain[T] {
	return &Chain[T]{
		capability: capability,
		prefs:      prefs,
		policy:     policy,
		log:        log.WithField("capability", string(capability)),
	}
}

// Add appends a preference to the end of the chain.
func (c *Chain[T]) Add(p T) *Chain[T] {
	c.prefs = append(c.prefs, p)
	return c
}

// WithPlaceholder attaches the synthetic no-credential substitute used
// when every real preference is unusable.
func (c *Chain[T]) WithPlaceholder(p T) *Chain[T] {
	c.placeholder = p
	c.hasFallback = true
	return c
}

// Placeholder exposes the chain's placeholder so a caller running under
// SurfaceErrors can fall back explicitly after inspecting a failure.
func (c *Chain[T]) Placeholder() (T, bool) {
	return c.placeholder, c.hasFallback
}

// Do walks the preference list and runs attempt against the first usable
// provider. Unconfigured providers are skipped; a provider failing with
// an AuthError is treated as unconfigured and the next preference is
// tried. Any other failure is surfaced or, under UsePlaceholder,
// retried once against the placeholder. When no preference is usable at
// all, the placeholder runs if present.
func (c *Chain[T]) Do(ctx context.Context, attempt func(context.Context, T) error) error {
	for _, p := range c.prefs {
		if !p.Configured() {
			c.log.WithField("provider", p.Name()).Info("skipping unconfigured provider")
			continue
		}
		c.log.WithField("provider", p.Name()).Info("attempting provider")
		err := attempt(ctx, p)
		if err == nil {
			return nil
		}
		if provider.IsAuth(err) {
			c.log.WithField("provider", p.Name()).WithError(err).Warn("credentials rejected, trying next preference")
			continue
		}
		if c.policy == UsePlaceholder && c.hasFallback {
			c.log.WithField("provider", p.Name()).WithError(err).Warn("provider failed, demoting to placeholder")
			return c.runPlaceholder(ctx, attempt)
		}
		return err
	}
	if c.hasFallback {
		c.log.Info("no configured provider, using placeholder")
		return c.runPlaceholder(ctx, attempt)
	}
	return &provider.AuthError{
		Provider: string(c.capability),
		Reason:   fmt.Sprintf("no configured %s provider and no placeholder", c.capability),
	}
}

func (c *Chain[T]) runPlaceholder(ctx context.Context, attempt func(context.Context, T) error) error {
	c.log.WithField("provider", c.placeholder.Name()).Info("attempting placeholder")
	return attempt(ctx, c.placeholder)
}
