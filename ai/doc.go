// Package ai defines the boundary between the cache service and the text
// processing backend. The HTTP layer talks to an Invoker; Local is a
// deterministic in-process implementation used when no upstream model is
// configured.
package ai
