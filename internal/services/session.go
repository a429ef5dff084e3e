package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"

	"github.com/desertthunder/dailydrive/internal/shared"
)

const clientVersion = "1.2.52.404.gcb99a997"

// Fetcher returns the raw body of a request. [HTTPTransport] implements it.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// Bootstrap is the data embedded in the web player page.
type Bootstrap struct {
	AccessToken   string
	ClientID      string
	CorrelationID string
	IsAnonymous   bool
}

// SessionProvider acquires partner API credentials the way the web player does.
type SessionProvider struct {
	fetcher    Fetcher
	cookieFile string
	logger     *log.Logger
	now        func() time.Time
}

// NewSessionProvider creates a provider. An empty cookieFile requests an anonymous session.
func NewSessionProvider(f Fetcher, cookieFile string, logger *log.Logger) *SessionProvider {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SessionProvider{fetcher: f, cookieFile: cookieFile, logger: logger, now: time.Now}
}

// Session loads cookies, scrapes the web player bootstrap and exchanges it for a client token.
func (p *SessionProvider) Session(ctx context.Context) (*Session, error) {
	var cookies []*http.Cookie
	if p.cookieFile != "" {
		all, err := shared.LoadCookieFile(p.cookieFile)
		if err != nil {
			return nil, err
		}
		cookies = shared.CookiesForHost(all, "open.spotify.com")
		p.logger.Debug("loaded cookies", "file", p.cookieFile, "count", len(cookies))
		if expired := shared.ExpiredCookies(cookies, p.now()); len(expired) > 0 {
			p.logger.Warn("sending expired cookies, re-export them if the session is anonymous", "names", expired)
		}
	} else {
		p.logger.Warn("no cookie file configured, requesting an anonymous session")
	}

	page, err := p.fetcher.Fetch(ctx, Request{
		Method: http.MethodGet,
		Path:   WebPlayerURL,
		Header: http.Header{
			"Accept":     {"text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"},
			"User-Agent": {browserUserAgent},
		},
		Cookies: cookies,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSessionBootstrap, err)
	}

	boot, err := ParseBootstrap(page)
	if err != nil {
		return nil, err
	}
	if boot.AccessToken == "" {
		return nil, fmt.Errorf("%w: session script has no access token", shared.ErrSessionBootstrap)
	}

	clientToken, err := p.clientToken(ctx, boot, cookies)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("session established", "anonymous", boot.IsAnonymous)
	return &Session{AccessToken: boot.AccessToken, ClientToken: clientToken, Cookies: cookies}, nil
}

type clientTokenRequest struct {
	ClientData struct {
		ClientVersion string `json:"client_version"`
		ClientID      string `json:"client_id"`
		JSSDKData     struct {
			DeviceBrand string `json:"device_brand"`
			DeviceModel string `json:"device_model"`
			OS          string `json:"os"`
			OSVersion   string `json:"os_version"`
			DeviceID    string `json:"device_id"`
			DeviceType  string `json:"device_type"`
		} `json:"js_sdk_data"`
	} `json:"client_data"`
}

type clientTokenResponse struct {
	GrantedToken struct {
		Token string `json:"token"`
	} `json:"granted_token"`
}

func (p *SessionProvider) clientToken(ctx context.Context, boot *Bootstrap, cookies []*http.Cookie) (string, error) {
	var payload clientTokenRequest
	payload.ClientData.ClientVersion = clientVersion
	payload.ClientData.ClientID = boot.ClientID
	payload.ClientData.JSSDKData.DeviceBrand = "unknown"
	payload.ClientData.JSSDKData.DeviceModel = "unknown"
	payload.ClientData.JSSDKData.OS = "windows"
	payload.ClientData.JSSDKData.OSVersion = "NT 10.0"
	payload.ClientData.JSSDKData.DeviceID = boot.CorrelationID
	payload.ClientData.JSSDKData.DeviceType = "computer"

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	data, err := p.fetcher.Fetch(ctx, Request{
		Method: http.MethodPost,
		Path:   ClientTokenURL,
		Header: http.Header{
			"Accept":       {"application/json"},
			"Content-Type": {"application/json"},
			"Origin":       {"https://open.spotify.com"},
			"User-Agent":   {browserUserAgent},
		},
		Cookies: cookies,
		Body:    body,
	})
	if err != nil {
		return "", fmt.Errorf("%w: client token: %v", shared.ErrSessionBootstrap, err)
	}

	var resp clientTokenResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("%w: client token: %v", shared.ErrMalformedResponse, err)
	}
	if resp.GrantedToken.Token == "" {
		return "", fmt.Errorf("%w: no granted token", shared.ErrSessionBootstrap)
	}
	return resp.GrantedToken.Token, nil
}

// ParseBootstrap reads the JSON bodies of the "session" and "config" script elements.
func ParseBootstrap(page []byte) (*Bootstrap, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSessionBootstrap, err)
	}

	scripts := map[string]string{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			for _, a := range n.Attr {
				if a.Key == "id" && (a.Val == "session" || a.Val == "config") {
					scripts[a.Val] = scriptText(n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	sessionJSON, ok := scripts["session"]
	if !ok {
		return nil, fmt.Errorf("%w: missing session script", shared.ErrSessionBootstrap)
	}
	configJSON, ok := scripts["config"]
	if !ok {
		return nil, fmt.Errorf("%w: missing config script", shared.ErrSessionBootstrap)
	}

	var session struct {
		AccessToken string `json:"accessToken"`
		ClientID    string `json:"clientId"`
		IsAnonymous bool   `json:"isAnonymous"`
	}
	if err := json.Unmarshal([]byte(sessionJSON), &session); err != nil {
		return nil, fmt.Errorf("%w: session script: %v", shared.ErrSessionBootstrap, err)
	}

	var config struct {
		CorrelationID string `json:"correlationId"`
	}
	if err := json.Unmarshal([]byte(configJSON), &config); err != nil {
		return nil, fmt.Errorf("%w: config script: %v", shared.ErrSessionBootstrap, err)
	}

	return &Bootstrap{
		AccessToken:   session.AccessToken,
		ClientID:      session.ClientID,
		CorrelationID: config.CorrelationID,
		IsAnonymous:   session.IsAnonymous,
	}, nil
}

func scriptText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
