package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/scribekit/scribe/internal/ledger"
)

// NewChatCommand returns the interactive chat subcommand.
func NewChatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Chat with the agent in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "conversation",
				Aliases: []string{"r"},
				Usage:   "Conversation ID to resume (empty = new conversation)",
			},
			&cli.BoolFlag{
				Name:  "show-tools",
				Usage: "Print tool calls as they happen",
			},
		},
		Action: runChat,
	}
}

func runChat(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	rt, err := setupRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.close(ctx)

	id := cmd.String("conversation")
	if id == "" {
		id, err = rt.engine.StartConversation()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "conversation: %s\n", id)
	} else {
		// Resuming: replay prior turns so the user sees where they left off.
		turns, err := rt.engine.History(id)
		if err != nil {
			return err
		}
		for _, turn := range turns {
			fmt.Printf("you> %s\n", turn.UserInput)
			fmt.Printf("scribe> %s\n", turn.FinalResponse)
		}
	}

	showTools := cmd.Bool("show-tools")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/quit" || input == "/exit" {
			break
		}

		turn, err := rt.engine.Submit(ctx, id, input)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		if showTools {
			printToolCalls(turn.ToolCalls)
		}
		fmt.Printf("scribe> %s\n", turn.FinalResponse)
	}

	return scanner.Err()
}

func printToolCalls(pairs []ledger.ToolCallPair) {
	for _, pair := range pairs {
		status := "ok"
		detail := pair.Result.Output
		if !pair.Result.OK {
			status = "failed"
			detail = pair.Result.Error
		}
		if len(detail) > 120 {
			detail = detail[:120] + "..."
		}
		fmt.Fprintf(os.Stderr, "  [%s] %s -> %s\n", status, pair.Request.Name, detail)
	}
}
