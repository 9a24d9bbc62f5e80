// Package storage provides storage backends for the NFTMesh ledger.
//
// The ledger core is specified against four abstract associative maps;
// this package realizes them over a flat key-value engine. A prefix-keyed
// codec (keys.go) maps ledger entries onto KV pairs, Store bridges the
// KV engine to the ledger.Store interface, and two engines are provided:
// an in-memory sharded map (memory.go) and a durable Badger database
// (badger.go).
package storage
