// Package config loads runtime configuration from an optional YAML file
// overlaid with MEDGATE_-prefixed environment variables, applies defaults,
// and validates it before any component is constructed.
package config
