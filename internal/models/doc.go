// Package models defines the domain entities shared across the sweep pipeline.
//
// All types are lightweight snapshots of remote state, fetched fresh each run:
//   - [Track] : song metadata with the provider's fee classification
//   - [Playlist] : playlist metadata including the liked-songs marker
//   - [UserProfile] : the authenticated identity
//   - [Session] : serializable cookie session with cached profile info
//   - [MutationResult] : per-operation tally of a bulk playlist mutation
//
// Nothing here is persisted beyond the session cache file.
package models
