package main

import (
	"github.com/spf13/cobra"

	"github.com/wilhg/github-mcp/pkg/agent"
	"github.com/wilhg/github-mcp/pkg/config"
	"github.com/wilhg/github-mcp/pkg/mcpserver"
)

const instructions = "Call create-repository to create a repository owned by the authenticated GitHub user. " +
	"A failed call returns the reason as text; GitHub's own error body is passed through unchanged."

func newServeCmd(configPath *string) *cobra.Command {
	var transport, addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if transport != "" {
				cfg.Server.Transport = transport
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close(ctx)

			srv, err := mcpserver.New(ctx,
				mcpserver.WithVersion(version),
				mcpserver.WithInstructions(instructions),
				mcpserver.WithLogger(a.log),
			)
			if err != nil {
				return err
			}
			if err := srv.RegisterFromRegistry(a.registry, a.permissions(), agent.JSONSchemaValidator); err != nil {
				return err
			}
			return srv.Serve(ctx, cfg.Server.Transport, cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "", "stdio or http (default $"+config.EnvTransport+" or stdio)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address for the http transport (default $"+config.EnvAddr+" or :8080)")
	return cmd
}
