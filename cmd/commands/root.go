// Package commands defines the scribe CLI.
package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/scribekit/scribe/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "scribe",
		Usage: "A skill-extensible conversational agent",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewWakeCommand(),
			NewChatCommand(),
			NewConversationsCommand(),
			NewSkillsCommand(),
			NewServeCommand(),
			NewMCPServeCommand(),
		},
	}
}
