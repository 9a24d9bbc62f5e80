// Package domain defines the core domain models for NFTMesh.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling: accounts, token identifiers,
// ledger events, and the closed ledger error taxonomy.
package domain
