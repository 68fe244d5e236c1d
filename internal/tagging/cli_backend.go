package tagging

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aleister1102/sharewatch/internal/common/cmdrunner"
	"github.com/aleister1102/sharewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sharewatch/internal/config"
)

// staleHandleMarker is the substring the toolkit prints to stderr when an
// NFS handle has gone stale.
const staleHandleMarker = "Stale file handle"

// CLIBackend implements Backend by shelling out to the storage toolkit.
// A stale file handle triggers a mount refresh and exactly one retry of the
// failed invocation.
type CLIBackend struct {
	cfg       config.TaggingConfig
	runner    cmdrunner.CommandRunner
	refresher MountRefresher
	logger    zerolog.Logger
}

// NewCLIBackend creates a CLIBackend.
func NewCLIBackend(cfg config.TaggingConfig, runner cmdrunner.CommandRunner, refresher MountRefresher, logger zerolog.Logger) *CLIBackend {
	return &CLIBackend{
		cfg:       cfg,
		runner:    runner,
		refresher: refresher,
		logger:    logger.With().Str("component", "CLIBackend").Logger(),
	}
}

// SetTag runs `hs tag set key=value path`.
func (b *CLIBackend) SetTag(ctx context.Context, path, key, value string) error {
	_, err := b.runToolkit(ctx, "tag", "set", fmt.Sprintf("%s=%s", key, value), path)
	return err
}

// ListTags runs `hs tag list path` and parses key=value lines. Lines the
// toolkit emits in another shape are skipped.
func (b *CLIBackend) ListTags(ctx context.Context, path string) (map[string]string, error) {
	stdout, err := b.runToolkit(ctx, "tag", "list", path)
	if err != nil {
		return nil, err
	}

	tags := make(map[string]string)
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, "=")
		if !found || key == "" {
			continue
		}
		tags[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return tags, nil
}

// ApplyObjective runs `hs objective add name path`.
func (b *CLIBackend) ApplyObjective(ctx context.Context, objective, path string) error {
	_, err := b.runToolkit(ctx, "objective", "add", objective, path)
	return err
}

// RemoveObjective runs `hs objective delete name path`.
func (b *CLIBackend) RemoveObjective(ctx context.Context, objective, path string) error {
	_, err := b.runToolkit(ctx, "objective", "delete", objective, path)
	return err
}

// ListObjectives runs `hs objective list path` and returns non-empty lines.
func (b *CLIBackend) ListObjectives(ctx context.Context, path string) ([]string, error) {
	stdout, err := b.runToolkit(ctx, "objective", "list", path)
	if err != nil {
		return nil, err
	}

	var objectives []string
	for _, line := range strings.Split(stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			objectives = append(objectives, line)
		}
	}
	return objectives, nil
}

// FindByTag walks the files under root and evaluates
// `hs eval path -e has_tag('key=value')` against each. The toolkit prints
// TRUE when the tag is present.
func (b *CLIBackend) FindByTag(ctx context.Context, key, value, root string) ([]string, error) {
	var matches []string
	predicate := fmt.Sprintf("has_tag('%s=%s')", key, value)

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			b.logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable entry during tag search")
			return nil
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		stdout, err := b.runToolkit(ctx, "eval", path, "-e", predicate)
		if err != nil {
			b.logger.Warn().Err(err).Str("path", path).Msg("Tag evaluation failed, skipping file")
			return nil
		}
		if strings.TrimSpace(stdout) == "TRUE" {
			matches = append(matches, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, errorwrapper.WrapError(walkErr, "tag search failed under "+root)
	}
	return matches, nil
}

// runToolkit executes one toolkit invocation with the configured timeout.
// On a stale file handle it refreshes mounts and retries exactly once; the
// retry's outcome is final.
func (b *CLIBackend) runToolkit(ctx context.Context, args ...string) (string, error) {
	stdout, stderr, err := b.invoke(ctx, args)
	if !strings.Contains(stderr, staleHandleMarker) {
		return stdout, b.wrapFailure(args, stderr, err)
	}

	b.logger.Warn().
		Strs("args", args).
		Msg("Stale file handle detected, refreshing mounts before retry")

	if refreshErr := b.refresher.Refresh(ctx); refreshErr != nil {
		b.logger.Error().Err(refreshErr).Msg("Mount refresh failed")
		return "", errorwrapper.WrapError(errorwrapper.ErrStaleHandle, "mount refresh failed")
	}

	stdout, stderr, err = b.invoke(ctx, args)
	if strings.Contains(stderr, staleHandleMarker) {
		return "", errorwrapper.WrapError(errorwrapper.ErrStaleHandle, "handle still stale after refresh")
	}
	return stdout, b.wrapFailure(args, stderr, err)
}

func (b *CLIBackend) invoke(ctx context.Context, args []string) (string, string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, b.cfg.CommandTimeout())
	defer cancel()
	return b.runner.Run(cmdCtx, nil, b.cfg.HSCLIPath, args...)
}

func (b *CLIBackend) wrapFailure(args []string, stderr string, err error) error {
	if err == nil {
		return nil
	}
	return errorwrapper.NewCommandError(b.cfg.HSCLIPath+" "+strings.Join(args, " "), stderr, err)
}
