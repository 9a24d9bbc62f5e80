// Package connection provides the HTTP client for nftmesh-cli.
//
// The client talks to the nftmesh-server JSON API, attaching the caller
// account header that mutations require, and unwraps the standard
// response envelope.
package connection
