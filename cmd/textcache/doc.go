// Command textcache runs the response cache service for AI text
// processing.
//
// Usage:
//
//	textcache serve                       # start the service
//	textcache serve --config config.yaml  # with a config file
//	textcache version                     # show version information
//	textcache health                      # probe a running instance
package main
