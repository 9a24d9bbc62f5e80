// Package httpserver provides the HTTP/HTTPS server for NFTMesh.
//
// This package implements the external API using stdlib net/http:
//
//   - Token queries: /v1/tokens/{id}, /v1/accounts/{account}/balance
//   - Token mutations: mint, burn, approve, transfer, transfer-from
//   - Operator approvals: /v1/operators
//   - Event feed: /v1/events
//   - Admin endpoints: /admin/v1/*
//   - Health endpoints: /health, /ready, /metrics
//
// Features:
//
//   - TLS with optional client certificate verification
//   - Middleware chain: Recover, RequestID, RateLimit, CORS, metrics
//   - Graceful shutdown with configurable timeout
package httpserver
