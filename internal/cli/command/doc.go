// Package command provides CLI command definitions for nftmesh-cli.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: Root command and global flags
//   - token.go: Token subcommand group (mint, burn, transfer, queries)
//   - operator.go: Operator approval subcommand group
//   - events.go: Event feed subcommand group
//   - backup.go: Snapshot subcommand group
//   - system.go: System subcommand group
//
// Commands follow a consistent pattern of parsing flags,
// calling the server API, and formatting output.
package command
