// Package store defines the external key-value store boundary used as the
// cache's second tier, and its Redis implementation.
//
// The cache treats the store as a black-box network service that can fail:
// Connect reports plain unavailability as false rather than an error, and
// every other method returns errors that callers are expected to degrade
// around, never propagate.
package store
