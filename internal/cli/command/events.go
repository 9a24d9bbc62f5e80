package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nftmesh/nftmesh-go/internal/cli/connection"
	"github.com/nftmesh/nftmesh-go/internal/cli/output"
	"github.com/nftmesh/nftmesh-go/internal/notify"
)

// EventsCommand returns the events subcommand group.
func EventsCommand() *cli.Command {
	return &cli.Command{
		Name:    "events",
		Aliases: []string{"ev"},
		Usage:   "Inspect the ledger event feed",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent ledger events",
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:    "after",
						Aliases: []string{"a"},
						Usage:   "Only events with a sequence greater than this",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Value:   100,
						Usage:   "Maximum number of events (max 1000)",
					},
				},
				Action: eventsList,
			},
		},
	}
}

func eventsList(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	path := fmt.Sprintf("/v1/events?limit=%d", c.Int("limit"))
	if after := c.Uint64("after"); after > 0 {
		path += fmt.Sprintf("&after=%d", after)
	}

	resp, err := client.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		Events  []notify.Event `json:"events"`
		LastSeq uint64         `json:"last_seq"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	switch output.Format(flags.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
		return formatter.Format(os.Stdout, result)
	default:
		table := &output.Table{
			Headers: []string{"SEQ", "TYPE", "TOKEN", "FROM", "TO", "AT"},
		}
		for _, ev := range result.Events {
			token := "-"
			if ev.TokenID != nil {
				token = fmt.Sprintf("%d", *ev.TokenID)
			}
			from, to := ev.From, ev.To
			if ev.Type == notify.TypeApprovalForAll {
				from, to = ev.Owner, ev.Operator
			}
			table.AddRow(
				fmt.Sprintf("%d", ev.Seq),
				ev.Type,
				token,
				dashIfEmpty(from),
				dashIfEmpty(to),
				time.UnixMilli(ev.At).UTC().Format("2006-01-02 15:04:05"),
			)
		}
		if err := table.Render(os.Stdout); err != nil {
			return err
		}
		fmt.Printf("\nLast sequence: %d\n", result.LastSeq)
		return nil
	}
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
