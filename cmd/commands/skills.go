package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/scribekit/scribe/internal/skills"
)

// NewSkillsCommand returns the skills subcommand.
func NewSkillsCommand() *cli.Command {
	return &cli.Command{
		Name:   "skills",
		Usage:  "List discovered skills",
		Action: runSkillsList,
	}
}

func runSkillsList(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

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

	list := registry.List()
	if len(list) == 0 {
		fmt.Println("No skills registered.")
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPARAMS\tDESCRIPTION")
		for _, d := range list {
			fmt.Fprintf(w, "%s\t%d\t%s\n", d.Name, len(d.Parameters), d.Description)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if warnings := registry.Warnings(); len(warnings) > 0 {
		fmt.Println("\nSkipped packages:")
		for _, warn := range warnings {
			fmt.Printf("  %s: %s\n", warn.Path, warn.Reason)
		}
	}

	return nil
}
