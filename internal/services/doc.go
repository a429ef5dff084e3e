// Package services talks to Spotify on two fronts.
//
// # Partner API
//
// [PartnerService] reads playlists, the user profile and account attributes from the GraphQL partner
// endpoint the web player uses. Every call takes an explicit [Session] carrying the bearer token,
// client token and cookies; the service itself holds no credentials.
//
// A [Session] comes from [SessionProvider], which loads a browser cookie export, scrapes the access token
// out of the web player page and exchanges it for a client token.
//
// # Web API
//
// [WebAPIService] wraps the public Web API client for the two things the partner API cannot do here:
// listing a show's episodes with resume points, and replacing a playlist's items. It authorizes through
// the OAuth2 authorization code flow ([NewOAuthConfig], [NewTokenSource]).
//
// # Transport
//
// [HTTPTransport] resolves paths against the partner base URL, retries network errors and 5xx responses
// with exponential backoff, and reports non-2xx responses as [*APIError] values that unwrap to
// [shared.ErrAPIRequest]. Requests are instrumented with otelhttp.
package services
