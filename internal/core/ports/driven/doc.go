// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the embedding service, the chat model,
// the similarity index, and evaluation persistence.
package driven
