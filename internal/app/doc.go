// Package app is the composition root: it wires the logger, manifest
// loader, registry, notifier and harness into a runnable application and
// dispatches between the batch and interactive-session modes.
package app
