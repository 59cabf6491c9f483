package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kingrea/rulebind/internal/config"
	"github.com/kingrea/rulebind/internal/logging"
	"github.com/kingrea/rulebind/internal/workspace"
)

// session bundles what every resolving command needs.
type session struct {
	ws     *workspace.Workspace
	logger *logging.Logger
}

func openSession(flags *globalFlags, metrics prometheus.Registerer) (*session, error) {
	cfg, err := config.NewConfig(flags.projectDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel()
	if flags.logLevel != "" {
		level = config.ParseLevel(flags.logLevel)
	}
	logger, err := logging.New(cfg.LogsDir(), level)
	if err != nil {
		return nil, err
	}
	if metrics != nil {
		cfg.Project.Metrics.Enabled = true
	}
	ws, err := workspace.Open(cfg, workspace.Options{Logger: logger.Logger, Metrics: metrics})
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	logger.Debug("Workspace opened",
		"project", cfg.ProjectDir,
		"namespace", cfg.Namespace(),
		"dirs", cfg.ArtifactDirs())
	return &session{ws: ws, logger: logger}, nil
}

func (s *session) Close() {
	s.ws.Close()
	_ = s.logger.Close()
}
