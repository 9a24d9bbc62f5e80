// Package ledger implements the NFTMesh ownership ledger.
//
// The ledger tracks which account owns which token, who may transfer a
// token on the owner's behalf, and enforces the invariants that make
// ownership meaningful: each token has at most one owner, balances always
// equal the number of owned tokens, and every mutation is authorized
// before any state changes.
//
// The ledger is specified against an abstract store of four associative
// maps (ownership, single-token approval, balance, operator approval) and
// executes strictly sequentially: a mutex serializes every operation, so
// each call is atomic relative to every other call.
package ledger
