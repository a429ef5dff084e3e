// Package server provides the local HTTP listener used by `dailydrive auth login`.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [Middleware] wraps handlers in reverse order (last added executes first).
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] validates the state parameter, exchanges the authorization code for Web API tokens,
// and sends the result through a channel. It only processes one callback.
//
// The CLI listens on the configured redirect address with [Serve], opens [OAuthHandler.AuthCodeURL]
// in the browser, and shuts the listener down once [OAuthHandler.Wait] returns.
package server
