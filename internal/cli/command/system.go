package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nftmesh/nftmesh-go/internal/cli/connection"
	"github.com/nftmesh/nftmesh-go/internal/cli/output"
	"github.com/nftmesh/nftmesh-go/internal/infra/buildinfo"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "System management commands",
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show server status summary",
				Action: systemStatus,
			},
			{
				Name:   "health",
				Usage:  "Check server health",
				Action: systemHealth,
			},
			{
				Name:   "version",
				Usage:  "Show CLI build information",
				Action: systemVersion,
			},
		},
	}
}

func systemStatus(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, "/admin/v1/status/summary")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result map[string]any
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	switch output.Format(flags.Output) {
	case output.FormatJSON, output.FormatYAML:
		formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
		return formatter.Format(os.Stdout, result)
	default:
		fmt.Printf("Server Status\n")
		fmt.Printf("=============\n\n")

		if status, ok := result["status"].(string); ok {
			fmt.Printf("Status:   %s\n", status)
		}
		if version, ok := result["version"].(string); ok {
			fmt.Printf("Version:  %s\n", version)
		}
		if tokens, ok := result["tokens"].(float64); ok {
			fmt.Printf("Tokens:   %.0f\n", tokens)
		}
		if events, ok := result["events"].(map[string]any); ok {
			if lastSeq, ok := events["last_seq"].(float64); ok {
				fmt.Printf("Last seq: %.0f\n", lastSeq)
			}
		}
		if storage, ok := result["storage"].(map[string]any); ok {
			if size, ok := storage["total_size"].(float64); ok {
				fmt.Printf("Storage:  %.2f KB\n", size/1024)
			}
		}
		return nil
	}
}

func systemHealth(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, "/health")
	if err != nil {
		PrintError("Health check failed: %v", err)
		return fmt.Errorf("server unhealthy")
	}

	var result struct {
		Status string `json:"status"`
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
		if result.Status == "healthy" {
			fmt.Printf("Server is healthy\n")
			fmt.Printf("  Target: %s\n", client.BaseURL())
		} else {
			fmt.Printf("Server is unhealthy: %s\n", result.Status)
		}
		return nil
	}
}

func systemVersion(c *cli.Context) error {
	fmt.Println(buildinfo.String())
	return nil
}
