package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wilhg/github-mcp/pkg/agent"
	"github.com/wilhg/github-mcp/pkg/agent/tools"
	"github.com/wilhg/github-mcp/pkg/config"
)

// newCreateCmd runs one create-repository call through the local registry,
// without an MCP session.
func newCreateCmd(configPath *string) *cobra.Command {
	var args tools.CreateRepositoryArgs
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a repository once and print the outcome",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close(ctx)

			t, ok := a.registry.Resolve(tools.CreateRepositoryName)
			if !ok {
				return fmt.Errorf("tool %q not registered", tools.CreateRepositoryName)
			}
			in := map[string]any{"name": args.Name, "description": args.Description, "private": args.Private}
			out, err := agent.SafeInvoke(ctx, t, in, a.permissions(), agent.JSONSchemaValidator)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out["text"])
			if ok, _ := out["ok"].(bool); !ok {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&args.Name, "name", "", "repository name")
	cmd.Flags().StringVar(&args.Description, "description", "", "repository description")
	cmd.Flags().BoolVar(&args.Private, "private", false, "create a private repository")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
