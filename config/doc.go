// Package config loads service configuration with the precedence
// defaults → YAML file → environment variables.
package config
