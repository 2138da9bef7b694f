// Package types defines shared types used across the textcache service,
// primarily the structured error type returned by the HTTP layer.
package types
