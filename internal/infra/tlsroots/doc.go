// Package tlsroots provides TLS certificate pool management for NFTMesh.
//
// It loads system roots plus custom CA certificates from files or
// directories, and builds tls.Config values for the HTTPS server and
// the CLI client. Certificate rotation is handled by process restart.
package tlsroots
