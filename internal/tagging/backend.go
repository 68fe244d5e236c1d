package tagging

import "context"

// Backend is the narrow interface over the external tagging toolkit. The
// transport (subprocess, RPC, library) stays swappable without touching the
// scanning and scheduling logic that depends on it.
type Backend interface {
	// SetTag attaches key=value metadata to the file at path.
	SetTag(ctx context.Context, path, key, value string) error

	// ListTags returns the tags currently attached to path.
	ListTags(ctx context.Context, path string) (map[string]string, error)

	// ApplyObjective attaches a named storage-placement directive to path.
	ApplyObjective(ctx context.Context, objective, path string) error

	// RemoveObjective detaches a named storage-placement directive from path.
	RemoveObjective(ctx context.Context, objective, path string) error

	// ListObjectives returns the placement directives active on path.
	ListObjectives(ctx context.Context, path string) ([]string, error)

	// FindByTag returns all files under root carrying the key=value tag.
	FindByTag(ctx context.Context, key, value, root string) ([]string, error)
}
