// Package config loads, normalizes, and validates Meridian configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// pipeline and CLI need, from footage discovery through encode settings to the
// optional archive, delivery, and ingest subsystems.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
