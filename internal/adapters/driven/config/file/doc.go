// Package file loads run configuration from a TOML file: the snapshot
// series, input property mapping, output locations and classification
// thresholds. Every field has a default, so a config file only states
// what differs from it.
package file
