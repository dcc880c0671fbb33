// Package gamedata provides embedded game data and utilities for loading it.
package gamedata

import "embed"

// dataFS embeds all YAML files from this directory at build time.
//
//go:embed *.yaml
var dataFS embed.FS

// ReadFile returns the raw bytes of an embedded data file.
func ReadFile(filename string) ([]byte, error) {
	return dataFS.ReadFile(filename)
}
