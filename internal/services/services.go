// package services implements the HTTP collaborators used to read the partner API and write through the public Web API.
package services

import (
	"context"
	"net/http"

	"github.com/desertthunder/dailydrive/internal/shared"
)

const (
	// PartnerBaseURL is the partner ("pathfinder") API host.
	PartnerBaseURL = "https://api-partner.spotify.com"
	// WebPlayerURL serves the page embedding the session bootstrap scripts.
	WebPlayerURL = "https://open.spotify.com/"
	// ClientTokenURL grants the client token required by the partner API.
	ClientTokenURL = "https://clienttoken.spotify.com/v1/clienttoken"

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// Transport sends one request and decodes the JSON object in the response.
//
// Non-2xx responses are returned as errors.
type Transport interface {
	Do(ctx context.Context, req Request) (map[string]any, error)
}

// Request describes a single round trip. Path is joined to the transport's base URL unless it is absolute.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Cookies  []*http.Cookie
	Body     []byte
}

// Session holds the credentials for partner API calls.
//
// It is passed explicitly to every call so one service can serve several sessions.
type Session struct {
	AccessToken string
	ClientToken string
	Cookies     []*http.Cookie
}

// Validate reports whether the session can authorize partner requests.
func (s *Session) Validate() error {
	if s == nil || s.AccessToken == "" {
		return shared.ErrNotAuthenticated
	}
	if s.ClientToken == "" {
		return shared.ErrNotAuthenticated
	}
	return nil
}

// Headers returns the partner API request headers for the session.
func (s *Session) Headers() http.Header {
	h := http.Header{}
	h.Set("accept", "application/json")
	h.Set("app-platform", "WebPlayer")
	h.Set("authorization", "Bearer "+s.AccessToken)
	h.Set("client-token", s.ClientToken)
	return h
}
