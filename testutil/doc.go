// Package testutil provides shared helpers for tests: bounded test
// contexts, text fixtures, and a scriptable in-memory Store for fault
// injection.
package testutil
