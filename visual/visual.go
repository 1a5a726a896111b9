// Package visual holds the visual-generation providers: an asynchronous
// remote video generator driven by the job poller, a synchronous image
// generator converted to motion clips, and a local placeholder.
package visual

import "context"

// Clipper converts a still image into a motion clip of a fixed duration.
// Satisfied by the encoder collaborator.
type Clipper interface {
	StillToClip(ctx context.Context, imagePath string, duration, zoom float64, destination string) error
}

// Prober measures the playable duration of a physical asset.
type Prober interface {
	Probe(ctx context.Context, path string) (float64, error)
}
