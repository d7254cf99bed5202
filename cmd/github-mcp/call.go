package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wilhg/github-mcp/pkg/agent/tools"
	"github.com/wilhg/github-mcp/pkg/mcpclient"
)

type endpointFlags struct {
	url     string
	command string
}

func (f *endpointFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "", "streamable HTTP endpoint, e.g. http://localhost:8080/mcp")
	cmd.Flags().StringVar(&f.command, "command", "", "server binary to spawn on stdio (default: this executable)")
}

// dial connects over HTTP when --url is set, otherwise spawns a stdio server.
func (f *endpointFlags) dial(ctx context.Context) (mcpclient.Client, error) {
	opt := mcpclient.WithImplementation("github-mcp-cli", version)
	if f.url != "" {
		return mcpclient.New(ctx, f.url, opt)
	}
	bin := f.command
	if bin == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, err
		}
		bin = exe
	}
	return mcpclient.Spawn(ctx, bin, []string{"serve", "--transport", "stdio"}, opt)
}

func newCallCmd() *cobra.Command {
	var ep endpointFlags
	var args tools.CreateRepositoryArgs
	cmd := &cobra.Command{
		Use:   "call",
		Short: "Call create-repository through an MCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cli, err := ep.dial(ctx)
			if err != nil {
				return err
			}
			defer cli.Close()
			in := map[string]any{"name": args.Name}
			if cmd.Flags().Changed("description") {
				in["description"] = args.Description
			}
			if cmd.Flags().Changed("private") {
				in["private"] = args.Private
			}
			res, err := cli.CallTool(ctx, tools.CreateRepositoryName, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			if res.IsError {
				return errFailed
			}
			return nil
		},
	}
	ep.bind(cmd)
	cmd.Flags().StringVar(&args.Name, "name", "", "repository name")
	cmd.Flags().StringVar(&args.Description, "description", "", "repository description")
	cmd.Flags().BoolVar(&args.Private, "private", false, "create a private repository")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newToolsCmd() *cobra.Command {
	var ep endpointFlags
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools an MCP server advertises",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cli, err := ep.dial(ctx)
			if err != nil {
				return err
			}
			defer cli.Close()
			list, err := cli.ListTools(ctx)
			if err != nil {
				return err
			}
			for _, t := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t.Name, t.Description)
			}
			return nil
		},
	}
	ep.bind(cmd)
	return cmd
}
