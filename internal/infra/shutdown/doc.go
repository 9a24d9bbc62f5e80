// Package shutdown provides graceful shutdown for NFTMesh.
//
// A Handler waits for SIGINT or SIGTERM and runs registered cleanup
// hooks in reverse order under a timeout. The server registers its HTTP
// listener, ledger, and storage engine as hooks; when the last hook
// returns, Done closes.
package shutdown
