// Package config loads, normalizes, and validates povcat configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and applies environment overrides such as
// YT_API_KEY and POVCAT_THRESHOLD. The Config type centralizes every knob the
// pipeline and CLI need, so the channel list, gate parameters, and backend
// credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical enum values, and clear validation errors.
package config
