// Package driving provides interfaces for the use cases the CLI and
// HTTP adapters invoke (primary/inbound ports).
package driving
