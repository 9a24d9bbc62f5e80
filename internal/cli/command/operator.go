package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nftmesh/nftmesh-go/internal/cli/connection"
	"github.com/nftmesh/nftmesh-go/internal/cli/output"
)

// OperatorCommand returns the operator subcommand group.
func OperatorCommand() *cli.Command {
	return &cli.Command{
		Name:    "operator",
		Aliases: []string{"op"},
		Usage:   "Manage operator approvals",
		Subcommands: []*cli.Command{
			{
				Name:      "grant",
				Usage:     "Grant an operator approval over all caller-owned tokens",
				ArgsUsage: "OPERATOR",
				Action:    operatorGrant,
			},
			{
				Name:      "revoke",
				Usage:     "Revoke an operator approval",
				ArgsUsage: "OPERATOR",
				Action:    operatorRevoke,
			},
			{
				Name:      "check",
				Usage:     "Check whether an operator is approved for an owner",
				ArgsUsage: "OWNER OPERATOR",
				Action:    operatorCheck,
			},
		},
	}
}

func operatorGrant(c *cli.Context) error {
	return setOperator(c, true)
}

func operatorRevoke(c *cli.Context) error {
	return setOperator(c, false)
}

func setOperator(c *cli.Context, approved bool) error {
	operator := c.Args().First()
	if operator == "" {
		return fmt.Errorf("operator account required")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	body := map[string]any{"operator": operator, "approved": approved}
	resp, err := client.Post(ctx, "/v1/operators", body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		Owner    string `json:"owner"`
		Operator string `json:"operator"`
		Approved bool   `json:"approved"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	if approved {
		fmt.Printf("Operator %s granted for %s.\n", result.Operator, result.Owner)
	} else {
		fmt.Printf("Operator %s revoked for %s.\n", result.Operator, result.Owner)
	}
	return nil
}

func operatorCheck(c *cli.Context) error {
	owner := c.Args().First()
	operator := c.Args().Get(1)
	if owner == "" || operator == "" {
		return fmt.Errorf("owner and operator accounts required")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Get(ctx, "/v1/accounts/"+owner+"/operators/"+operator)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		Owner    string `json:"owner"`
		Operator string `json:"operator"`
		Approved bool   `json:"approved"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	if output.Format(flags.Output) == output.FormatTable {
		fmt.Printf("%t\n", result.Approved)
		return nil
	}
	formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
	return formatter.Format(os.Stdout, result)
}
