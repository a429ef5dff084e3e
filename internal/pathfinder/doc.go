// Package pathfinder maps partner API ("pathfinder") responses onto [models] entities.
//
// # Extractors
//
// Each extractor takes one decoded JSON object and returns one entity. Artist, album and
// track fields are strict: a missing required key fails with [shared.ErrMissingField] naming
// the dotted path. Owner and profile fields are lenient and default silently.
// JSON null is treated the same as an absent key.
//
// # Requests
//
// [Operation.Encode] renders the persisted-query string. The parameter order and the
// JSON spacing are part of what the server validates.
//
// # Pagination
//
// [Pager] requests pages strictly in order and stops at the declared total count.
package pathfinder
