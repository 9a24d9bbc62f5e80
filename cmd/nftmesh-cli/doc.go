// Package main provides the entry point for nftmesh-cli.
//
// The CLI tool provides command-line access to nftmesh-server for:
//
//   - Token management (mint, burn, transfer, approvals, queries)
//   - Operator approval management
//   - Event feed inspection
//   - Snapshot operations
//   - System administration
//
// Usage:
//
//	nftmesh-cli [command] [flags]
//	nftmesh-cli token supply
//	nftmesh-cli --caller alice token mint 42
//	nftmesh-cli events list --after 100 -o json
package main
