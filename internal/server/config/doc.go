// Package config defines the NFTMesh server configuration schema.
//
// The configuration is a plain struct tree with koanf tags so it can
// be populated from YAML files and NFTMESH_ environment variables via
// the confloader package. Default returns a fully usable configuration
// for a single-node in-memory server; Verify validates a populated
// configuration before the server starts; Sanitize produces a copy
// safe for logging with secrets masked.
package config
