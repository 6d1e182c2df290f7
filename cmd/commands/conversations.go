package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/scribekit/scribe/internal/config"
	"github.com/scribekit/scribe/internal/ledger"
)

// NewConversationsCommand returns the conversations subcommand.
func NewConversationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "conversations",
		Usage: "Manage persisted conversations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all conversations",
				Action: runConversationsList,
			},
			{
				Name:      "show",
				Usage:     "Show the turns of a conversation",
				ArgsUsage: "<conversation_id>",
				Action:    runConversationsShow,
			},
			{
				Name:      "delete",
				Usage:     "Delete a conversation",
				ArgsUsage: "<conversation_id>",
				Action:    runConversationsDelete,
			},
		},
		DefaultCommand: "list",
	}
}

func newStore() *ledger.FileStore {
	return ledger.NewFileStore(config.ConversationsPath())
}

func runConversationsList(_ context.Context, _ *cli.Command) error {
	list, err := newStore().List()
	if err != nil {
		return fmt.Errorf("list conversations: %w", err)
	}

	if len(list) == 0 {
		fmt.Println("No conversations found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTURNS\tCREATED\tUPDATED")
	for _, m := range list {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			m.ID,
			m.TurnCount,
			m.CreatedAt.Format("2006-01-02 15:04"),
			m.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}

func runConversationsShow(_ context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: scribe conversations show <conversation_id>")
	}

	conv, err := newStore().Load(id)
	if err != nil {
		return err
	}

	if len(conv.Turns) == 0 {
		fmt.Println("No turns in this conversation.")
		return nil
	}

	for _, turn := range conv.Turns {
		fmt.Printf("--- turn %d (%s) ---\n", turn.TurnNumber, turn.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Printf("you> %s\n", turn.UserInput)
		for _, pair := range turn.ToolCalls {
			outcome := pair.Result.Output
			if !pair.Result.OK {
				outcome = "error: " + pair.Result.Error
			}
			fmt.Printf("  tool %s -> %s\n", pair.Request.Name, outcome)
		}
		fmt.Printf("scribe> %s\n", turn.FinalResponse)
	}
	return nil
}

func runConversationsDelete(_ context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: scribe conversations delete <conversation_id>")
	}

	if err := newStore().Delete(id); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", id)
	return nil
}
