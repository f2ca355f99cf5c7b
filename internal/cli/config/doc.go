// Package config defines the ghosttape-cli configuration structure.
//
// The CLI reads an optional YAML file from ~/.ghosttape/cli.yaml that
// stores personal defaults such as the preferred output format and the
// ghost directory. Flags always override the file.
package config
