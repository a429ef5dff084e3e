// Package models defines the domain entities rebuilt from partner API responses.
//
// The package contains two groups of types:
//
// 1. Catalogue entities, built by the pathfinder extractors from partner payloads
//   - [Playlist] : Playlist metadata with every item in server order
//   - [PlaylistTrack] : A [Track] with its position context (added at)
//   - [Track] : A playable item tagged as music or podcast episode by [ItemKind]
//   - [Album], [Artist], [Owner], [Image], [ExternalURL]
//   - [Profile], [AccountAttributes] : The authenticated user
//
// 2. Drive entities, used by the playlist reorder task
//   - [Episode] : A show episode listed by the public Web API
//   - [Run] : A persisted record of one playlist write
//
// Values are constructed fresh per response and are not mutated afterwards.
// An entity's ID is always the final colon-delimited segment of its URI.
package models
