// Package file loads and saves the TOML configuration file at
// ~/.clipvault/config.toml. Unset knobs fall back to built-in
// defaults, so a missing file is a valid configuration.
package file
