// Package confloader provides configuration loading for NFTMesh.
//
// It layers koanf sources and unmarshals into typed structs. A watcher
// built on fsnotify triggers reload callbacks when the config file
// changes.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (via LoadMap)
//  2. Environment variables (NFTMESH_ prefix)
//  3. Configuration file (YAML)
//  4. Default values
package confloader
