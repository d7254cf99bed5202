package main

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/wilhg/github-mcp/pkg/agent"
	"github.com/wilhg/github-mcp/pkg/agent/tools"
	"github.com/wilhg/github-mcp/pkg/config"
	"github.com/wilhg/github-mcp/pkg/ghapi"
	"github.com/wilhg/github-mcp/pkg/logging"
	"github.com/wilhg/github-mcp/pkg/otel"
	"github.com/wilhg/github-mcp/pkg/repo"
)

// app holds the wired components shared by serve and create.
type app struct {
	cfg      config.Config
	log      *logrus.Logger
	registry *agent.Registry
	shutdown func(context.Context) error
}

func newApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*app, error) {
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, logOut)
	if err != nil {
		return nil, err
	}
	shutdown := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		shutdown, err = otel.Init(ctx, otel.Config{ServiceVersion: version, UseStdout: cfg.Tracing.Stdout, Writer: logOut})
		if err != nil {
			return nil, err
		}
	}
	base, err := ghapi.ParseBaseURL(cfg.GitHub.APIBaseURL)
	if err != nil {
		return nil, err
	}
	api := ghapi.New(
		ghapi.WithBaseURL(base),
		ghapi.WithUserAgent(cfg.GitHub.UserAgent),
		ghapi.WithTimeout(cfg.GitHub.Timeout),
	)
	h := repo.NewHandler(cfg.GitHub, api, log)
	reg := agent.NewRegistry()
	if err := reg.Register(tools.CreateRepositoryTool{Creator: h}); err != nil {
		return nil, err
	}
	if !cfg.GitHub.HasToken() {
		log.Warnf("%s is not set; create-repository calls will fail until it is configured", config.EnvToken)
	}
	return &app{cfg: cfg, log: log, registry: reg, shutdown: shutdown}, nil
}

// permissions grants every permission a registered tool declares.
func (a *app) permissions() map[string]bool {
	var names []string
	a.registry.Range(func(_ string, t agent.Tool) {
		names = append(names, t.Describe().PermissionNames()...)
	})
	return agent.Allow(names...)
}

func (a *app) close(ctx context.Context) {
	if err := a.shutdown(ctx); err != nil {
		a.log.WithError(err).Warn("tracer shutdown")
	}
}
