package tiering

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/sharewatch/internal/config"
	"github.com/aleister1102/sharewatch/internal/models"
)

type objectiveCall struct {
	objective string
	path      string
}

// fakeBackend implements tagging.Backend for tier operations.
type fakeBackend struct {
	matches     []string
	findErr     error
	applyErr    map[string]error
	applied     []objectiveCall
	removed     []objectiveCall
	searchRoots []string
}

func (f *fakeBackend) SetTag(context.Context, string, string, string) error { return nil }

func (f *fakeBackend) ListTags(context.Context, string) (map[string]string, error) {
	return nil, nil
}

func (f *fakeBackend) ApplyObjective(_ context.Context, objective, path string) error {
	f.applied = append(f.applied, objectiveCall{objective: objective, path: path})
	return f.applyErr[path]
}

func (f *fakeBackend) RemoveObjective(_ context.Context, objective, path string) error {
	f.removed = append(f.removed, objectiveCall{objective: objective, path: path})
	return f.applyErr[path]
}

func (f *fakeBackend) ListObjectives(context.Context, string) ([]string, error) {
	return nil, nil
}

func (f *fakeBackend) FindByTag(_ context.Context, _, _, root string) ([]string, error) {
	f.searchRoots = append(f.searchRoots, root)
	return f.matches, f.findErr
}

type captureAppender struct {
	events []models.FileEvent
}

func (c *captureAppender) Append(event models.FileEvent) error {
	c.events = append(c.events, event)
	return nil
}

func newTestOperator(backend *fakeBackend, appender *captureAppender) *Operator {
	return NewOperator(config.NewDefaultTieringConfig(), backend, appender, zerolog.Nop())
}

func TestPromoteByTagAppliesObjectiveToAllMatches(t *testing.T) {
	backend := &fakeBackend{matches: []string{"/mnt/anvil/modelstore/a", "/mnt/anvil/modelstore/b"}}
	appender := &captureAppender{}
	operator := newTestOperator(backend, appender)

	result, err := operator.PromoteByTag(context.Background(), "project", "gtc", "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Matched)
	assert.Equal(t, 2, result.Affected)
	assert.Zero(t, result.Failed)

	require.Len(t, backend.applied, 2)
	// Empty objective falls back to the configured promotion objective.
	assert.Equal(t, "Place-on-tier0", backend.applied[0].objective)
	assert.Equal(t, []string{config.NewDefaultTieringConfig().SearchRoot}, backend.searchRoots)

	require.Len(t, appender.events, 1)
	event := appender.events[0]
	assert.Equal(t, models.EventTypeTierPromotionByTag, event.EventType)
	assert.Equal(t, "project=gtc", event.TagName)
	assert.Equal(t, 2, event.FilesAffected)
	assert.Equal(t, models.JobStatusSuccess, event.Status)
	assert.Equal(t, "promote", event.Operation)
}

func TestDemoteByTagRemovesObjective(t *testing.T) {
	backend := &fakeBackend{matches: []string{"/mnt/anvil/modelstore/a"}}
	appender := &captureAppender{}
	operator := newTestOperator(backend, appender)

	result, err := operator.DemoteByTag(context.Background(), "project", "gtc", "Place-on-tier0")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Affected)
	require.Len(t, backend.removed, 1)
	assert.Empty(t, backend.applied)

	require.Len(t, appender.events, 1)
	assert.Equal(t, models.EventTypeTierDemotionByTag, appender.events[0].EventType)
	assert.Equal(t, "demote", appender.events[0].Operation)
}

func TestPromoteByTagPartialFailure(t *testing.T) {
	backend := &fakeBackend{
		matches:  []string{"/a", "/b", "/c"},
		applyErr: map[string]error{"/b": errors.New("stale handle")},
	}
	appender := &captureAppender{}
	operator := newTestOperator(backend, appender)

	result, err := operator.PromoteByTag(context.Background(), "project", "gtc", "")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Matched)
	assert.Equal(t, 2, result.Affected)
	assert.Equal(t, 1, result.Failed)

	require.Len(t, appender.events, 1)
	assert.Equal(t, models.JobStatusFailure, appender.events[0].Status)
	assert.Equal(t, 2, appender.events[0].FilesAffected)
}

func TestPromoteByTagSearchFailure(t *testing.T) {
	backend := &fakeBackend{findErr: errors.New("search failed")}
	appender := &captureAppender{}
	operator := newTestOperator(backend, appender)

	_, err := operator.PromoteByTag(context.Background(), "project", "gtc", "")
	require.Error(t, err)

	require.Len(t, appender.events, 1)
	assert.Equal(t, models.JobStatusFailure, appender.events[0].Status)
	assert.Zero(t, appender.events[0].FilesAffected)
}

func TestPromoteByTagNoMatches(t *testing.T) {
	backend := &fakeBackend{}
	appender := &captureAppender{}
	operator := newTestOperator(backend, appender)

	result, err := operator.PromoteByTag(context.Background(), "project", "none", "")
	require.NoError(t, err)
	assert.Zero(t, result.Matched)

	require.Len(t, appender.events, 1)
	assert.Equal(t, models.JobStatusSuccess, appender.events[0].Status)
}
