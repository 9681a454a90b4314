// Package domain contains the core business entities of the izuchat
// pipeline: passages and their provenance, retrieval results, chat
// requests and answers, and evaluation records. It has no dependencies
// on adapters or external services.
package domain
