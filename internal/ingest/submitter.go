package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aleister1102/sharewatch/internal/common/cmdrunner"
	"github.com/aleister1102/sharewatch/internal/common/errorwrapper"
	"github.com/aleister1102/sharewatch/internal/config"
)

// JobSubmitter hands rendered manifests to the cluster.
type JobSubmitter interface {
	Submit(ctx context.Context, manifests *Manifests) error
	NextCollectionName(ctx context.Context) string
}

// KubectlSubmitter applies manifests with the kubectl CLI, writing them to
// temporary files the way an operator would.
type KubectlSubmitter struct {
	cfg    config.IngestConfig
	runner cmdrunner.CommandRunner
	logger zerolog.Logger
}

// NewKubectlSubmitter creates a KubectlSubmitter.
func NewKubectlSubmitter(cfg config.IngestConfig, runner cmdrunner.CommandRunner, logger zerolog.Logger) *KubectlSubmitter {
	return &KubectlSubmitter{
		cfg:    cfg,
		runner: runner,
		logger: logger.With().Str("component", "KubectlSubmitter").Logger(),
	}
}

// Submit applies the file-list ConfigMap first, then the Job.
func (s *KubectlSubmitter) Submit(ctx context.Context, manifests *Manifests) error {
	submitCtx, cancel := context.WithTimeout(ctx, s.cfg.SubmitTimeout())
	defer cancel()

	tmpDir, err := os.MkdirTemp("", "sharewatch-ingest-")
	if err != nil {
		return errorwrapper.WrapError(err, "failed to create manifest directory")
	}
	defer os.RemoveAll(tmpDir)

	cmPath := filepath.Join(tmpDir, "configmap.yaml")
	jobPath := filepath.Join(tmpDir, "job.yaml")
	if err := os.WriteFile(cmPath, manifests.ConfigMapYAML, 0o644); err != nil {
		return errorwrapper.WrapError(err, "failed to write file-list manifest")
	}
	if err := os.WriteFile(jobPath, manifests.JobYAML, 0o644); err != nil {
		return errorwrapper.WrapError(err, "failed to write job manifest")
	}

	for _, path := range []string{cmPath, jobPath} {
		_, stderr, err := s.runner.Run(submitCtx, nil, s.cfg.KubectlPath, "apply", "-f", path)
		if err != nil {
			return errorwrapper.NewCommandError(s.cfg.KubectlPath+" apply -f "+path, stderr, err)
		}
	}

	s.logger.Info().Str("configmap", manifests.ConfigMapName).Msg("Ingest job submitted")
	return nil
}

// NextCollectionName picks the lowest unused <prefix>_<n> name by inspecting
// existing file-list ConfigMaps. Cluster errors fall back to a uuid-derived
// name so submission still proceeds.
func (s *KubectlSubmitter) NextCollectionName(ctx context.Context) string {
	stdout, _, err := s.runner.Run(ctx, nil, s.cfg.KubectlPath, "get", "configmaps", "-n", s.cfg.JobNamespace, "-o", "name")
	if err != nil {
		fallback := fmt.Sprintf("%s_%s", s.cfg.CollectionPrefix, uuid.NewString()[:8])
		s.logger.Warn().Err(err).Str("collection", fallback).Msg("Collection lookup failed, using fallback name")
		return fallback
	}

	marker := s.cfg.CollectionPrefix + "_"
	taken := make(map[int]struct{})
	for _, line := range strings.Split(stdout, "\n") {
		idx := strings.Index(line, marker)
		if idx == -1 {
			continue
		}
		numberPart := line[idx+len(marker):]
		if cut := strings.IndexAny(numberPart, "-/"); cut != -1 {
			numberPart = numberPart[:cut]
		}
		if n, err := strconv.Atoi(numberPart); err == nil {
			taken[n] = struct{}{}
		}
	}

	next := 1
	for {
		if _, ok := taken[next]; !ok {
			break
		}
		next++
	}
	return fmt.Sprintf("%s_%d", s.cfg.CollectionPrefix, next)
}
