package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/dailydrive/internal/shared"
)

const webPlayerPage = `<!DOCTYPE html>
<html><head>
<script id="session" data-testid="session" type="application/json">{"accessToken":"BQD-access","accessTokenExpirationTimestampMs":1735689600000,"isAnonymous":false,"clientId":"d8a5ed958d274c2e8ee717e6a4b0971d"}</script>
<script id="config" type="application/json">{"appName":"web-player","correlationId":"0f3c9a6e2b","market":"SE"}</script>
</head><body><div id="main"></div></body></html>`

// fakeFetcher answers by URL and records requests.
type fakeFetcher struct {
	responses map[string]string
	errs      map[string]error
	requests  []Request
}

func (f *fakeFetcher) Fetch(_ context.Context, req Request) ([]byte, error) {
	f.requests = append(f.requests, req)
	if err := f.errs[req.Path]; err != nil {
		return nil, err
	}
	return []byte(f.responses[req.Path]), nil
}

func TestParseBootstrap(t *testing.T) {
	t.Run("valid page", func(t *testing.T) {
		boot, err := ParseBootstrap([]byte(webPlayerPage))
		if err != nil {
			t.Fatalf("ParseBootstrap() error = %v", err)
		}
		if boot.AccessToken != "BQD-access" {
			t.Errorf("expected access token, got %s", boot.AccessToken)
		}
		if boot.ClientID != "d8a5ed958d274c2e8ee717e6a4b0971d" {
			t.Errorf("expected client id, got %s", boot.ClientID)
		}
		if boot.CorrelationID != "0f3c9a6e2b" {
			t.Errorf("expected correlation id, got %s", boot.CorrelationID)
		}
	})

	t.Run("missing config script", func(t *testing.T) {
		page := strings.Replace(webPlayerPage, `id="config"`, `id="other"`, 1)
		if _, err := ParseBootstrap([]byte(page)); !errors.Is(err, shared.ErrSessionBootstrap) {
			t.Errorf("expected ErrSessionBootstrap, got %v", err)
		}
	})

	t.Run("missing session script", func(t *testing.T) {
		if _, err := ParseBootstrap([]byte("<html><body></body></html>")); !errors.Is(err, shared.ErrSessionBootstrap) {
			t.Errorf("expected ErrSessionBootstrap, got %v", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		page := strings.Replace(webPlayerPage, `{"accessToken"`, `{accessToken`, 1)
		if _, err := ParseBootstrap([]byte(page)); !errors.Is(err, shared.ErrSessionBootstrap) {
			t.Errorf("expected ErrSessionBootstrap, got %v", err)
		}
	})
}

func TestSessionProvider(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	newFetcher := func() *fakeFetcher {
		return &fakeFetcher{
			responses: map[string]string{
				WebPlayerURL:   webPlayerPage,
				ClientTokenURL: `{"response_type":"RESPONSE_GRANTED_TOKEN_RESPONSE","granted_token":{"token":"AAC-client","expires_after_seconds":1209600}}`,
			},
			errs: map[string]error{},
		}
	}

	t.Run("with cookies", func(t *testing.T) {
		cookieFile := filepath.Join(t.TempDir(), "cookies.txt")
		jar := ".spotify.com\tTRUE\t/\tTRUE\t0\tsp_dc\tsecret\n.example.com\tTRUE\t/\tFALSE\t0\tother\tx\n"
		if err := os.WriteFile(cookieFile, []byte(jar), 0600); err != nil {
			t.Fatalf("failed to write cookie file: %v", err)
		}

		f := newFetcher()
		sess, err := NewSessionProvider(f, cookieFile, logger).Session(context.Background())
		if err != nil {
			t.Fatalf("Session() error = %v", err)
		}

		if sess.AccessToken != "BQD-access" || sess.ClientToken != "AAC-client" {
			t.Errorf("unexpected session %+v", sess)
		}
		if len(sess.Cookies) != 1 || sess.Cookies[0].Name != "sp_dc" {
			t.Errorf("expected only spotify cookies, got %v", sess.Cookies)
		}
		if err := sess.Validate(); err != nil {
			t.Errorf("expected a valid session, got %v", err)
		}

		if len(f.requests) != 2 {
			t.Fatalf("expected 2 requests, got %d", len(f.requests))
		}
		if ua := f.requests[0].Header.Get("User-Agent"); !strings.Contains(ua, "Chrome/131") {
			t.Errorf("expected browser user agent, got %q", ua)
		}

		var payload clientTokenRequest
		if err := json.Unmarshal(f.requests[1].Body, &payload); err != nil {
			t.Fatalf("client token payload is not JSON: %v", err)
		}
		if payload.ClientData.ClientVersion != clientVersion {
			t.Errorf("unexpected client version %s", payload.ClientData.ClientVersion)
		}
		if payload.ClientData.ClientID != "d8a5ed958d274c2e8ee717e6a4b0971d" {
			t.Errorf("unexpected client id %s", payload.ClientData.ClientID)
		}
		if payload.ClientData.JSSDKData.DeviceID != "0f3c9a6e2b" || payload.ClientData.JSSDKData.DeviceType != "computer" {
			t.Errorf("unexpected sdk data %+v", payload.ClientData.JSSDKData)
		}
		if f.requests[1].Method != http.MethodPost {
			t.Errorf("expected POST for client token, got %s", f.requests[1].Method)
		}
	})

	t.Run("expired cookies are still sent", func(t *testing.T) {
		cookieFile := filepath.Join(t.TempDir(), "cookies.txt")
		jar := ".spotify.com\tTRUE\t/\tTRUE\t1600000000\tsp_dc\tstale\n"
		if err := os.WriteFile(cookieFile, []byte(jar), 0600); err != nil {
			t.Fatalf("failed to write cookie file: %v", err)
		}

		var logs bytes.Buffer
		f := newFetcher()
		sess, err := NewSessionProvider(f, cookieFile, shared.NewLogger(&logs)).Session(context.Background())
		if err != nil {
			t.Fatalf("Session() error = %v", err)
		}
		if len(sess.Cookies) != 1 || sess.Cookies[0].Value != "stale" {
			t.Errorf("expected the expired sp_dc cookie, got %v", sess.Cookies)
		}
		if len(f.requests[0].Cookies) != 1 {
			t.Errorf("expected the cookie on the web player request, got %v", f.requests[0].Cookies)
		}
		if !strings.Contains(logs.String(), "expired cookies") || !strings.Contains(logs.String(), "sp_dc") {
			t.Errorf("expected a warning naming sp_dc, got %q", logs.String())
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		f := newFetcher()
		sess, err := NewSessionProvider(f, "", logger).Session(context.Background())
		if err != nil {
			t.Fatalf("Session() error = %v", err)
		}
		if len(sess.Cookies) != 0 {
			t.Errorf("expected no cookies, got %v", sess.Cookies)
		}
	})

	t.Run("missing cookie file", func(t *testing.T) {
		_, err := NewSessionProvider(newFetcher(), filepath.Join(t.TempDir(), "nope.txt"), logger).Session(context.Background())
		if err == nil {
			t.Error("expected an error for a missing cookie file")
		}
	})

	t.Run("page fetch fails", func(t *testing.T) {
		f := newFetcher()
		f.errs[WebPlayerURL] = &APIError{StatusCode: 503}
		_, err := NewSessionProvider(f, "", logger).Session(context.Background())
		if !errors.Is(err, shared.ErrSessionBootstrap) {
			t.Errorf("expected ErrSessionBootstrap, got %v", err)
		}
	})

	t.Run("no granted token", func(t *testing.T) {
		f := newFetcher()
		f.responses[ClientTokenURL] = `{"response_type":"RESPONSE_CHALLENGE"}`
		_, err := NewSessionProvider(f, "", logger).Session(context.Background())
		if !errors.Is(err, shared.ErrSessionBootstrap) {
			t.Errorf("expected ErrSessionBootstrap, got %v", err)
		}
	})

	t.Run("empty access token", func(t *testing.T) {
		f := newFetcher()
		f.responses[WebPlayerURL] = strings.Replace(webPlayerPage, `"accessToken":"BQD-access"`, `"accessToken":""`, 1)
		_, err := NewSessionProvider(f, "", logger).Session(context.Background())
		if !errors.Is(err, shared.ErrSessionBootstrap) {
			t.Errorf("expected ErrSessionBootstrap, got %v", err)
		}
	})
}

func TestSessionValidate(t *testing.T) {
	var nilSession *Session
	if !errors.Is(nilSession.Validate(), shared.ErrNotAuthenticated) {
		t.Error("expected nil session to be unauthenticated")
	}
	if !errors.Is((&Session{AccessToken: "a"}).Validate(), shared.ErrNotAuthenticated) {
		t.Error("expected a session without client token to be unauthenticated")
	}

	h := (&Session{AccessToken: "a", ClientToken: "c"}).Headers()
	if h.Get("authorization") != "Bearer a" || h.Get("client-token") != "c" || h.Get("accept") != "application/json" {
		t.Errorf("unexpected headers %v", h)
	}
}
