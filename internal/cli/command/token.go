package command

import (
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/nftmesh/nftmesh-go/internal/cli/connection"
	"github.com/nftmesh/nftmesh-go/internal/cli/output"
)

// TokenCommand returns the token subcommand group.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:    "token",
		Aliases: []string{"tok"},
		Usage:   "Manage tokens",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Show a token's ownership row",
				ArgsUsage: "TOKEN_ID",
				Action:    tokenGet,
			},
			{
				Name:      "owner",
				Usage:     "Show a token's owner",
				ArgsUsage: "TOKEN_ID",
				Action:    tokenOwner,
			},
			{
				Name:      "approved",
				Usage:     "Show a token's approved account",
				ArgsUsage: "TOKEN_ID",
				Action:    tokenApproved,
			},
			{
				Name:      "balance",
				Usage:     "Show how many tokens an account owns",
				ArgsUsage: "ACCOUNT",
				Action:    tokenBalance,
			},
			{
				Name:   "supply",
				Usage:  "Show the total number of tokens",
				Action: tokenSupply,
			},
			{
				Name:      "mint",
				Usage:     "Mint a token to the caller account",
				ArgsUsage: "TOKEN_ID",
				Action:    tokenMint,
			},
			{
				Name:      "burn",
				Usage:     "Burn a token owned by the caller",
				ArgsUsage: "TOKEN_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: tokenBurn,
			},
			{
				Name:      "approve",
				Usage:     "Approve an account for one token",
				ArgsUsage: "TOKEN_ID [ACCOUNT]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "Clear the outstanding approval",
					},
				},
				Action: tokenApprove,
			},
			{
				Name:      "transfer",
				Usage:     "Transfer a caller-owned token",
				ArgsUsage: "TOKEN_ID TO",
				Action:    tokenTransfer,
			},
			{
				Name:      "transfer-from",
				Usage:     "Transfer a token on behalf of its owner",
				ArgsUsage: "TOKEN_ID FROM TO",
				Action:    tokenTransferFrom,
			},
		},
	}
}

// parseTokenArg parses a positional token ID argument.
func parseTokenArg(s string) (uint32, error) {
	if s == "" {
		return 0, fmt.Errorf("token ID required")
	}
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid token ID %q", s)
	}
	return uint32(id), nil
}

func tokenGet(c *cli.Context) error {
	id, err := parseTokenArg(c.Args().First())
	if err != nil {
		return err
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, fmt.Sprintf("/v1/tokens/%d", id))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		ID       uint32 `json:"id"`
		Owner    string `json:"owner"`
		Approved string `json:"approved"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
	return formatter.Format(os.Stdout, result)
}

func tokenOwner(c *cli.Context) error {
	id, err := parseTokenArg(c.Args().First())
	if err != nil {
		return err
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, fmt.Sprintf("/v1/tokens/%d/owner", id))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		ID    uint32 `json:"id"`
		Owner string `json:"owner"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	if output.Format(flags.Output) == output.FormatTable {
		fmt.Printf("%s\n", result.Owner)
		return nil
	}
	formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
	return formatter.Format(os.Stdout, result)
}

func tokenApproved(c *cli.Context) error {
	id, err := parseTokenArg(c.Args().First())
	if err != nil {
		return err
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, fmt.Sprintf("/v1/tokens/%d/approved", id))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		ID       uint32 `json:"id"`
		Approved string `json:"approved"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	if output.Format(flags.Output) == output.FormatTable {
		if result.Approved == "" {
			fmt.Println("(none)")
		} else {
			fmt.Printf("%s\n", result.Approved)
		}
		return nil
	}
	formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
	return formatter.Format(os.Stdout, result)
}

func tokenBalance(c *cli.Context) error {
	account := c.Args().First()
	if account == "" {
		return fmt.Errorf("account required")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, "/v1/accounts/"+account+"/balance")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		Account string `json:"account"`
		Balance uint32 `json:"balance"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	if output.Format(flags.Output) == output.FormatTable {
		fmt.Printf("%d\n", result.Balance)
		return nil
	}
	formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
	return formatter.Format(os.Stdout, result)
}

func tokenSupply(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, "/v1/supply")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		Tokens uint64 `json:"tokens"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	if output.Format(flags.Output) == output.FormatTable {
		fmt.Printf("%d\n", result.Tokens)
		return nil
	}
	formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
	return formatter.Format(os.Stdout, result)
}

func tokenMint(c *cli.Context) error {
	id, err := parseTokenArg(c.Args().First())
	if err != nil {
		return err
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Post(ctx, "/v1/tokens/mint", map[string]any{"token_id": id})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		ID    uint32 `json:"id"`
		Owner string `json:"owner"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	fmt.Printf("Token %d minted to %s.\n", result.ID, result.Owner)
	return nil
}

func tokenBurn(c *cli.Context) error {
	id, err := parseTokenArg(c.Args().First())
	if err != nil {
		return err
	}

	if !c.Bool("force") {
		fmt.Printf("Are you sure you want to burn token %d? [y/N]: ", id)
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

	resp, err := client.Post(ctx, fmt.Sprintf("/v1/tokens/%d/burn", id), nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}

	fmt.Printf("Token %d burned.\n", id)
	return nil
}

func tokenApprove(c *cli.Context) error {
	id, err := parseTokenArg(c.Args().First())
	if err != nil {
		return err
	}

	to := c.Args().Get(1)
	if to == "" && !c.Bool("clear") {
		return fmt.Errorf("account required (or use --clear)")
	}
	if to != "" && c.Bool("clear") {
		return fmt.Errorf("cannot combine an account with --clear")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Post(ctx, fmt.Sprintf("/v1/tokens/%d/approve", id), map[string]any{"to": to})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}

	if to == "" {
		fmt.Printf("Approval cleared for token %d.\n", id)
	} else {
		fmt.Printf("Account %s approved for token %d.\n", to, id)
	}
	return nil
}

func tokenTransfer(c *cli.Context) error {
	id, err := parseTokenArg(c.Args().First())
	if err != nil {
		return err
	}

	to := c.Args().Get(1)
	if to == "" {
		return fmt.Errorf("destination account required")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Post(ctx, fmt.Sprintf("/v1/tokens/%d/transfer", id), map[string]any{"to": to})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		ID    uint32 `json:"id"`
		Owner string `json:"owner"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	fmt.Printf("Token %d transferred to %s.\n", id, to)
	return nil
}

func tokenTransferFrom(c *cli.Context) error {
	id, err := parseTokenArg(c.Args().First())
	if err != nil {
		return err
	}

	from := c.Args().Get(1)
	to := c.Args().Get(2)
	if from == "" || to == "" {
		return fmt.Errorf("source and destination accounts required")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	body := map[string]any{"from": from, "to": to}
	resp, err := client.Post(ctx, fmt.Sprintf("/v1/tokens/%d/transfer-from", id), body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}

	fmt.Printf("Token %d transferred from %s to %s.\n", id, from, to)
	return nil
}
