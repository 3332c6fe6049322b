// Package config loads, normalizes, and validates the hush TOML
// configuration.
//
// Configuration resolution order: an explicit --config path, then
// ~/.config/hush/config.toml, then ./hush.toml, then built-in defaults.
// All path values are tilde-expanded and made absolute during load so the
// rest of the program never deals with relative or user-prefixed paths.
package config
