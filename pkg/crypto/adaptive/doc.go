// Package adaptive provides authenticated encryption with automatic
// algorithm selection.
//
// Two AEAD algorithms are supported:
//
//   - AES-256-GCM: preferred when hardware AES support is available
//   - ChaCha20-Poly1305: fallback for systems without AES acceleration
//
// New picks the algorithm from the CPU architecture; NewWithType forces
// one. Ciphertexts carry their nonce as a prefix, so a Cipher is all that
// is needed to decrypt. All cipher operations are thread-safe.
package adaptive
