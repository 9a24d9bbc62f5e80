package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nftmesh/nftmesh-go/internal/cli/connection"
	"github.com/nftmesh/nftmesh-go/internal/cli/output"
)

// BackupCommand returns the backup subcommand group.
func BackupCommand() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Manage ledger snapshots",
		Subcommands: []*cli.Command{
			{
				Name:   "create",
				Usage:  "Create a snapshot of the current ledger state",
				Action: backupCreate,
			},
			{
				Name:   "list",
				Usage:  "List available snapshots",
				Action: backupList,
			},
			{
				Name:  "prune",
				Usage: "Remove snapshots beyond the retention policy",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: backupPrune,
			},
		},
	}
}

type snapshotRow struct {
	ID         string `json:"id"`
	TokenCount uint64 `json:"token_count"`
	CreatedAt  int64  `json:"created_at"`
	Size       int64  `json:"size"`
	Checksum   string `json:"checksum"`
}

func backupCreate(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Post(ctx, "/admin/v1/backups/snapshots", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result snapshotRow
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	fmt.Printf("Snapshot created:\n")
	fmt.Printf("  ID:     %s\n", result.ID)
	fmt.Printf("  Tokens: %d\n", result.TokenCount)
	fmt.Printf("  Size:   %.2f KB\n", float64(result.Size)/1024)
	return nil
}

func backupList(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, "/admin/v1/backups/snapshots")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		Snapshots []snapshotRow `json:"snapshots"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	switch output.Format(flags.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
		return formatter.Format(os.Stdout, result.Snapshots)
	default:
		table := &output.Table{
			Headers: []string{"ID", "TOKENS", "SIZE", "CREATED"},
		}
		for _, s := range result.Snapshots {
			table.AddRow(
				s.ID,
				fmt.Sprintf("%d", s.TokenCount),
				fmt.Sprintf("%.2f KB", float64(s.Size)/1024),
				time.UnixMilli(s.CreatedAt).UTC().Format("2006-01-02 15:04:05"),
			)
		}
		if err := table.Render(os.Stdout); err != nil {
			return err
		}
		fmt.Printf("\nTotal: %d snapshots\n", len(result.Snapshots))
		return nil
	}
}

func backupPrune(c *cli.Context) error {
	if !c.Bool("force") {
		fmt.Print("This removes snapshots beyond the server's retention policy. Continue? [y/N]: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Post(ctx, "/admin/v1/backups/snapshots/prune", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}

	fmt.Println("Snapshots pruned.")
	return nil
}
