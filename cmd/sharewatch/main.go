package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/sharewatch/internal/common/cmdrunner"
	"github.com/aleister1102/sharewatch/internal/config"
	"github.com/aleister1102/sharewatch/internal/dedup"
	"github.com/aleister1102/sharewatch/internal/discovery"
	"github.com/aleister1102/sharewatch/internal/eventlog"
	"github.com/aleister1102/sharewatch/internal/fingerprint"
	"github.com/aleister1102/sharewatch/internal/ingest"
	"github.com/aleister1102/sharewatch/internal/logger"
	"github.com/aleister1102/sharewatch/internal/monitor"
	"github.com/aleister1102/sharewatch/internal/tagging"
	"github.com/aleister1102/sharewatch/internal/tiering"
)

func main() {
	fmt.Println("ShareWatch starting...")

	// Flags
	globalConfigFile := flag.String("globalconfig", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := flag.String("gc", "", "Alias for --globalconfig")

	promoteTag := flag.String("promote-tag", "", "One-shot: apply the tier-0 placement objective to every file carrying key=value, then exit.")
	promoteTagAlias := flag.String("pt", "", "Alias for --promote-tag")

	demoteTag := flag.String("demote-tag", "", "One-shot: remove the tier-0 placement objective from every file carrying key=value, then exit.")
	demoteTagAlias := flag.String("dt", "", "Alias for --demote-tag")

	queryEvents := flag.Bool("query-events", false, "One-shot: print matching events from the event log as JSON lines, then exit.")
	queryLimit := flag.Int("limit", 20, "Maximum number of events returned by --query-events.")
	queryEventType := flag.String("event-type", "", "Exact event type filter for --query-events (e.g. NEW_FILE).")
	queryFilePattern := flag.String("file-pattern", "", "Case-insensitive file name substring filter for --query-events.")
	querySince := flag.String("since", "", "Inclusive RFC3339 lower bound on event timestamps for --query-events.")
	flag.Parse()

	// Consolidate alias flags
	if *globalConfigFile == "" && *globalConfigFileAlias != "" {
		*globalConfigFile = *globalConfigFileAlias
	}
	if *promoteTag == "" && *promoteTagAlias != "" {
		*promoteTag = *promoteTagAlias
	}
	if *demoteTag == "" && *demoteTagAlias != "" {
		*demoteTag = *demoteTagAlias
	}

	// Load Global Configuration (path determined by globalConfigFile flag)
	gCfg, err := config.LoadGlobalConfig(*globalConfigFile)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not load global config using path '%s': %v", *globalConfigFile, err)
	}

	// Initialize zerolog logger
	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not initialize logger: %v", err)
	}

	// Validate the loaded configuration
	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Fatal().Err(err).Msg("Configuration validation failed")
	}
	zLogger.Info().Msg("Configuration validated successfully")

	// Shared toolkit plumbing: one runner for hs, kubectl and the remount script.
	runner := cmdrunner.NewExecRunner()
	refresher := tagging.NewScriptRefresher(gCfg.TaggingConfig.MountRefreshScript, runner, zLogger)
	backend := tagging.NewCLIBackend(gCfg.TaggingConfig, runner, refresher, zLogger)

	eventLog, err := eventlog.NewEventLog(gCfg.EventLogConfig, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to open event log")
	}

	// One-shot modes exit before the monitor service is built.
	if *queryEvents {
		runEventQuery(eventLog, *queryLimit, *queryEventType, *queryFilePattern, *querySince, zLogger)
		return
	}
	if *promoteTag != "" || *demoteTag != "" {
		runTierOperation(gCfg, backend, eventLog, *promoteTag, *demoteTag, zLogger)
		return
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	discoverer := discovery.NewDiscoverer(gCfg.DiscoveryConfig, zLogger)
	shares, err := discoverer.DiscoverShares(ctx)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Share discovery failed")
	}
	if len(shares) == 0 {
		// Shares can appear later (automount); start anyway and idle.
		zLogger.Warn().Str("mount_root", gCfg.DiscoveryConfig.MountRootPrefix).Msg("No shares to watch, service will idle")
	}

	tracker, err := dedup.NewTracker(gCfg.DedupConfig, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to initialize dedup tracker")
	}

	submitter := ingest.NewKubectlSubmitter(gCfg.IngestConfig, runner, zLogger)
	trigger := ingest.NewTrigger(gCfg.IngestConfig, gCfg.DiscoveryConfig.MountRootPrefix, submitter, eventLog, zLogger)
	completion := ingest.NewCompletionChecker(gCfg.IngestConfig, runner, eventLog, zLogger)
	trigger.AttachCompletionChecker(completion)

	processor := monitor.NewProcessor(
		fingerprint.NewFingerprinter(zLogger),
		backend,
		tracker,
		eventLog,
		trigger,
		gCfg.TaggingConfig,
		gCfg.MonitorConfig.MaxConcurrentDispatches,
		zLogger,
	)

	sampler, err := monitor.NewCPUSampler(gCfg.ResourceConfig, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("CPU sampler unavailable, resource stats disabled")
		sampler = nil
	}

	service := monitor.NewService(gCfg, shares, monitor.ServiceDependencies{
		Poller:     monitor.NewPoller(shares, tracker, zLogger),
		Batcher:    monitor.NewBatcher(gCfg.MonitorConfig.BatchFlushThreshold, gCfg.MonitorConfig.BatchInterval()),
		Processor:  processor,
		Retro:      monitor.NewRetroScanner(gCfg.MonitorConfig, shares, tracker, processor.Process, zLogger),
		Sampler:    sampler,
		Archiver:   eventlog.NewArchiver(eventLog, gCfg.EventLogConfig, zLogger),
		Tracker:    tracker,
		Completion: completion,
	}, zLogger)

	if err := service.Start(ctx); err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to start monitor service")
	}

	sig := <-sigChan
	zLogger.Info().Str("signal", sig.String()).Msg("Received interrupt signal, initiating graceful shutdown...")
	cancel()
	service.Stop()
	zLogger.Info().Msg("ShareWatch finished")
}

// runTierOperation handles the -promote-tag / -demote-tag one-shot modes.
// The argument is a key=value tag expression.
func runTierOperation(gCfg *config.GlobalConfig, backend *tagging.CLIBackend, eventLog *eventlog.EventLog, promoteTag, demoteTag string, zLogger zerolog.Logger) {
	operator := tiering.NewOperator(gCfg.TieringConfig, backend, eventLog, zLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	expr := promoteTag
	if expr == "" {
		expr = demoteTag
	}
	key, value, ok := strings.Cut(expr, "=")
	if !ok || key == "" {
		zLogger.Fatal().Str("tag", expr).Msg("Tag expression must be key=value")
	}

	var result *tiering.Result
	var err error
	if promoteTag != "" {
		result, err = operator.PromoteByTag(ctx, key, value, gCfg.TieringConfig.PromoteObjective)
	} else {
		result, err = operator.DemoteByTag(ctx, key, value, gCfg.TieringConfig.PromoteObjective)
	}
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Tier operation failed")
	}
	zLogger.Info().
		Int("matched", result.Matched).
		Int("affected", result.Affected).
		Int("failed", result.Failed).
		Msg("Tier operation finished")
}

// runEventQuery handles the -query-events one-shot mode, printing one JSON
// object per matching event.
func runEventQuery(eventLog *eventlog.EventLog, limit int, eventType, filePattern, since string, zLogger zerolog.Logger) {
	opts := eventlog.QueryOptions{
		Limit:       limit,
		EventType:   eventType,
		FilePattern: filePattern,
	}
	if since != "" {
		ts, err := time.Parse(time.RFC3339, since)
		if err != nil {
			zLogger.Fatal().Err(err).Str("since", since).Msg("Invalid --since timestamp")
		}
		opts.Since = ts
	}

	events, err := eventLog.Query(opts)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Event query failed")
	}

	enc := json.NewEncoder(os.Stdout)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			zLogger.Fatal().Err(err).Msg("Failed to encode event")
		}
	}
	zLogger.Info().Int("count", len(events)).Msg("Event query finished")
}
