// Package config loads, validates, and normalizes the filmwatch TOML
// configuration file.
package config
