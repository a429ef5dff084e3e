package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/spotify"

	"github.com/desertthunder/dailydrive/internal/shared"
)

// Scopes are the Web API permissions needed to read the source playlist, list episodes and rewrite the target.
var Scopes = []string{
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-private",
	"user-read-playback-position",
}

// NewOAuthConfig builds the authorization-code flow configuration for the Web API.
func NewOAuthConfig(creds shared.SpotifyConfig) (*oauth2.Config, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes:       Scopes,
		Endpoint:     spotify.Endpoint,
	}, nil
}

// notifyingSource reports every token it hands out that differs from the previous one.
type notifyingSource struct {
	mu       sync.Mutex
	src      oauth2.TokenSource
	last     string
	onChange func(*oauth2.Token)
}

func (s *notifyingSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
	}

	s.mu.Lock()
	changed := tok.AccessToken != s.last
	s.last = tok.AccessToken
	s.mu.Unlock()

	if changed && s.onChange != nil {
		s.onChange(tok)
	}
	return tok, nil
}

// NewTokenSource refreshes tok through conf and calls onRefresh with every newly issued token.
func NewTokenSource(ctx context.Context, conf *oauth2.Config, tok *oauth2.Token, onRefresh func(*oauth2.Token)) (oauth2.TokenSource, error) {
	if tok == nil {
		return nil, fmt.Errorf("%w: run `dailydrive auth login` first", shared.ErrNotAuthenticated)
	}
	return &notifyingSource{
		src:      conf.TokenSource(ctx, tok),
		last:     tok.AccessToken,
		onChange: onRefresh,
	}, nil
}

// NewOAuthClient returns an instrumented client authorizing requests with src.
func NewOAuthClient(src oauth2.TokenSource, base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, src),
			Base:   otelhttp.NewTransport(base),
		},
	}
}
