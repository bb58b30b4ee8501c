// Package models holds the client-side shadows of the blog API resources.
//
// Decoders are deliberately tolerant: the API has shipped several spellings
// of the same field over time (post_id/postId, createdAt/created_at, unix
// seconds vs. milliseconds), so each type probes the known alternatives and
// fills display fallbacks. Encoding always uses one canonical spelling, which
// the decoders accept back, so cached snapshots round-trip.
package models
