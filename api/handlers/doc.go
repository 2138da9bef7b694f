// Package handlers implements the HTTP surface of the cache service:
// text processing, cache statistics, cache administration, and health.
//
// All handlers share the Response envelope and the error mapping in
// common.go. Handlers never expose store failures to clients; the cache
// layer degrades to misses and the handlers report what the cache did.
package handlers
