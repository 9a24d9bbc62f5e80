// Package handler provides HTTP request handlers for NFTMesh.
//
// This package implements the HTTP API endpoints for token ownership
// queries, mutations, the event feed, and administrative operations.
package handler
