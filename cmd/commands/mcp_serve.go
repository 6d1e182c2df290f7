package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	scribemcp "github.com/scribekit/scribe/internal/mcp"
	"github.com/scribekit/scribe/internal/skills"
)

// NewMCPServeCommand returns the mcp-serve subcommand.
func NewMCPServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp-serve",
		Usage: "Expose Scribe skills as an MCP server (stdio)",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "filter",
				UsageText: "Skill name to expose (empty = all)",
			},
		},
		Action: runMCPServe,
	}
}

func runMCPServe(ctx context.Context, cmd *cli.Command) error {
	// Log to stderr only; stdout carries the MCP stdio transport.
	level := slog.LevelWarn
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	registry := skills.NewRegistry()
	defer registry.Close(ctx)

	if err := skills.RegisterBuiltins(ctx, registry); err != nil {
		return err
	}
	for _, dir := range cfg.Skills.Dirs {
		if err := registry.Discover(ctx, dir); err != nil {
			return err
		}
	}

	filter := cmd.StringArg("filter")
	slog.Debug("starting MCP server", "filter", filter, "skills", len(registry.List()))

	server := scribemcp.NewServer(registry, filter)
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}
