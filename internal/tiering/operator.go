package tiering

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/sharewatch/internal/config"
	"github.com/aleister1102/sharewatch/internal/models"
	"github.com/aleister1102/sharewatch/internal/tagging"
)

// EventAppender records the summary event of a bulk operation.
type EventAppender interface {
	Append(event models.FileEvent) error
}

// Result summarizes one bulk tier operation.
type Result struct {
	Matched  int
	Affected int
	Failed   int
}

// Operator applies or removes a storage-tier placement directive across all
// paths matching a tag predicate. One summary event is emitted per
// operation, not one per file.
type Operator struct {
	cfg     config.TieringConfig
	backend tagging.Backend
	events  EventAppender
	logger  zerolog.Logger
}

// NewOperator creates an Operator.
func NewOperator(cfg config.TieringConfig, backend tagging.Backend, events EventAppender, logger zerolog.Logger) *Operator {
	return &Operator{
		cfg:     cfg,
		backend: backend,
		events:  events,
		logger:  logger.With().Str("component", "TierOperator").Logger(),
	}
}

// PromoteByTag applies the placement objective to every file carrying the
// key=value tag under the search root. An empty objective uses the
// configured promotion objective.
func (o *Operator) PromoteByTag(ctx context.Context, key, value, objective string) (*Result, error) {
	if objective == "" {
		objective = o.cfg.PromoteObjective
	}
	return o.run(ctx, key, value, objective, models.EventTypeTierPromotionByTag, "promote", o.backend.ApplyObjective)
}

// DemoteByTag removes the placement objective from every file carrying the
// key=value tag under the search root.
func (o *Operator) DemoteByTag(ctx context.Context, key, value, objective string) (*Result, error) {
	if objective == "" {
		objective = o.cfg.PromoteObjective
	}
	return o.run(ctx, key, value, objective, models.EventTypeTierDemotionByTag, "demote", o.backend.RemoveObjective)
}

func (o *Operator) run(
	ctx context.Context,
	key, value, objective, eventType, operation string,
	apply func(ctx context.Context, objective, path string) error,
) (*Result, error) {
	matches, err := o.backend.FindByTag(ctx, key, value, o.cfg.SearchRoot)
	if err != nil {
		o.emitSummary(eventType, operation, key, value, 0, false)
		return nil, err
	}

	result := &Result{Matched: len(matches)}
	for _, path := range matches {
		if err := apply(ctx, objective, path); err != nil {
			o.logger.Error().Err(err).Str("path", path).Str("objective", objective).Msg("Tier operation failed for path")
			result.Failed++
			continue
		}
		result.Affected++
	}

	o.logger.Info().
		Str("operation", operation).
		Str("tag", fmt.Sprintf("%s=%s", key, value)).
		Str("objective", objective).
		Int("matched", result.Matched).
		Int("affected", result.Affected).
		Int("failed", result.Failed).
		Msg("Tier bulk operation finished")

	o.emitSummary(eventType, operation, key, value, result.Affected, result.Failed == 0)
	return result, nil
}

func (o *Operator) emitSummary(eventType, operation, key, value string, affected int, success bool) {
	status := models.JobStatusSuccess
	if !success {
		status = models.JobStatusFailure
	}
	event := models.FileEvent{
		Timestamp:     time.Now(),
		EventType:     eventType,
		TagName:       fmt.Sprintf("%s=%s", key, value),
		FilesAffected: affected,
		Status:        status,
		Operation:     operation,
	}
	if err := o.events.Append(event); err != nil {
		o.logger.Error().Err(err).Msg("Failed to record tier operation event")
	}
}
