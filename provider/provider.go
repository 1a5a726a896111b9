// Package provider defines the capability contracts satisfied by every
// concrete generation backend. The orchestrator and compositor only ever
// see these interfaces; which provider satisfied a capability is opaque
// to them.
package provider

import (
	"context"

	"clipforge/types"
)

// Capability names a provider role. Used for resolver logging and stage
// error reporting only — never branched on inside orchestration logic.
type Capability string

const (
	CapScript Capability = "script"
	CapVisual Capability = "visual"
	CapSpeech Capability = "speech"
)

// Provider is the part of the contract common to every capability.
// Configured reports whether the credentials or local tooling the
// provider needs are present; it is the only availability signal the
// fallback resolver consults.
type Provider interface {
	Name() string
	Configured() bool
}

// ScriptProvider turns a topic into a validated scene script. Every call
// is independent and safely retryable; implementations hold no shared
// state between calls.
type ScriptProvider interface {
	Provider
	GenerateScript(ctx context.Context, topic, style string, targetDuration float64) (*types.Script, error)
}

// VisualProvider produces a visual asset for one scene prompt. The
// rendered duration must land close to targetDuration; providers that
// emit fixed-length clips record the real probed duration on the asset.
type VisualProvider interface {
	Provider
	GenerateVisual(ctx context.Context, prompt string, targetDuration float64, destination string) (*types.GeneratedAsset, error)
}

// SpeechProvider synthesizes the full narration text to destination.
// Duration is always measured from the physical artifact, never
// estimated from text length.
type SpeechProvider interface {
	Provider
	SynthesizeSpeech(ctx context.Context, text, destination, voice string) (*types.GeneratedAsset, error)
}
