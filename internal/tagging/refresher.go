package tagging

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/sharewatch/internal/common/cmdrunner"
	"github.com/aleister1102/sharewatch/internal/common/errorwrapper"
)

const refreshTimeout = 2 * time.Minute

// MountRefresher re-establishes filesystem mounts after a stale handle.
type MountRefresher interface {
	Refresh(ctx context.Context) error
}

// ScriptRefresher runs an operator-provided shell script that remounts the
// watched shares.
type ScriptRefresher struct {
	scriptPath string
	runner     cmdrunner.CommandRunner
	logger     zerolog.Logger
}

// NewScriptRefresher creates a ScriptRefresher. An empty scriptPath yields a
// refresher whose Refresh reports that no script is configured.
func NewScriptRefresher(scriptPath string, runner cmdrunner.CommandRunner, logger zerolog.Logger) *ScriptRefresher {
	return &ScriptRefresher{
		scriptPath: scriptPath,
		runner:     runner,
		logger:     logger.With().Str("component", "ScriptRefresher").Logger(),
	}
}

// Refresh invokes the remount script with MOUNT_TYPE=all.
func (sr *ScriptRefresher) Refresh(ctx context.Context) error {
	if sr.scriptPath == "" {
		return errorwrapper.NewError("no mount refresh script configured")
	}

	refreshCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	sr.logger.Warn().Str("script", sr.scriptPath).Msg("Refreshing mounts")
	_, stderr, err := sr.runner.Run(refreshCtx, []string{"MOUNT_TYPE=all"}, sr.scriptPath)
	if err != nil {
		return errorwrapper.NewCommandError(sr.scriptPath, stderr, err)
	}
	sr.logger.Info().Msg("Mounts refreshed")
	return nil
}
