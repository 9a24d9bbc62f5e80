// Package main provides the entry point for nftmesh-server.
//
// The server exposes the NFTMesh ownership ledger over HTTP:
//
//   - Token queries and mutations (mint, burn, approve, transfer)
//   - Operator approval management
//   - Event feed and Prometheus metrics
//   - Snapshot backup administration
//
// Usage:
//
//	nftmesh-server [flags]
//	nftmesh-server --config /path/to/config.yaml
//
// The server loads configuration from the file and NFTMESH_ environment
// variables, initializes the storage engine, and starts the HTTP listener.
package main
