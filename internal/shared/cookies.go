// Utilities for reading browser cookies exported as cookies.txt or a "Copy as cURL" dump.
package shared

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CurlHeaders represents parsed headers and cookies from a cURL command.
type CurlHeaders struct {
	Headers map[string]string
	Cookie  string
}

// ParseCurlCommand parses a cURL command string and extracts headers.
func ParseCurlCommand(curlCmd string) (*CurlHeaders, error) {
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	headers := make(map[string]string)
	var cookie string

	headerRegex := regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	matches := headerRegex.FindAllStringSubmatch(curlCmd, -1)

	for _, match := range matches {
		var headerLine string
		if match[1] != "" {
			headerLine = match[1]
		} else {
			headerLine = match[2]
		}

		parts := strings.SplitN(headerLine, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if strings.ToLower(key) != "cookie" {
				headers[key] = value
			}
		}
	}

	cookieRegex := regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"`)
	cookieMatches := cookieRegex.FindStringSubmatch(curlCmd)
	if len(cookieMatches) > 1 {
		if cookieMatches[1] != "" {
			cookie = cookieMatches[1]
		} else {
			cookie = cookieMatches[2]
		}
	}

	if cookie == "" {
		for _, match := range matches {
			var headerLine string
			if match[1] != "" {
				headerLine = match[1]
			} else {
				headerLine = match[2]
			}

			if strings.HasPrefix(strings.ToLower(headerLine), "cookie:") {
				parts := strings.SplitN(headerLine, ":", 2)
				if len(parts) == 2 {
					cookie = strings.TrimSpace(parts[1])
				}
				break
			}
		}
	}

	if len(headers) == 0 && cookie == "" {
		return nil, fmt.Errorf("no headers found in curl command")
	}

	return &CurlHeaders{
		Headers: headers,
		Cookie:  cookie,
	}, nil
}

// Cookies splits the captured cookie header into individual cookies.
func (c *CurlHeaders) Cookies() []*http.Cookie {
	if c.Cookie == "" {
		return nil
	}
	cookies, err := http.ParseCookie(c.Cookie)
	if err != nil {
		return nil
	}
	return cookies
}

// LoadCookieFile reads browser cookies from path.
//
// The file is either a Netscape/Mozilla cookies.txt export or a shell file holding a cURL command.
func LoadCookieFile(path string) ([]*http.Cookie, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}

	if strings.HasPrefix(strings.TrimSpace(string(content)), "curl ") {
		headers, err := ParseCurlCommand(string(content))
		if err != nil {
			return nil, err
		}
		cookies := headers.Cookies()
		if len(cookies) == 0 {
			return nil, fmt.Errorf("%w: no cookies in curl command %s", ErrMissingCredentials, path)
		}
		return cookies, nil
	}

	cookies, err := ParseCookieJar(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cookies, nil
}

// ParseCookieJar parses the Netscape cookies.txt format.
//
// Each entry is seven tab-separated fields: domain, include-subdomains flag, path, secure flag, expiry, name, value.
func ParseCookieJar(data string) ([]*http.Cookie, error) {
	var cookies []*http.Cookie

	scanner := bufio.NewScanner(strings.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		httpOnly := false
		if rest, ok := strings.CutPrefix(line, "#HttpOnly_"); ok {
			line = rest
			httpOnly = true
		}
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			return nil, fmt.Errorf("line %d: expected 7 fields, got %d", lineNo, len(fields))
		}

		cookie := &http.Cookie{
			Domain:   fields[0],
			Path:     fields[2],
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			Name:     fields[5],
			Value:    fields[6],
			HttpOnly: httpOnly,
		}
		if expires, err := strconv.ParseInt(fields[4], 10, 64); err == nil && expires > 0 {
			cookie.Expires = time.Unix(expires, 0).UTC()
		}
		cookies = append(cookies, cookie)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(cookies) == 0 {
		return nil, fmt.Errorf("%w: cookie file holds no entries", ErrMissingCredentials)
	}
	return cookies, nil
}

// CookiesForHost returns the cookies whose domain matches host.
//
// Cookies without a domain always match. Expired cookies are kept: exported session
// cookies often carry a past expiry while the server still accepts them.
func CookiesForHost(cookies []*http.Cookie, host string) []*http.Cookie {
	var matched []*http.Cookie
	for _, c := range cookies {
		domain := strings.TrimPrefix(c.Domain, ".")
		if domain == "" || host == domain || strings.HasSuffix(host, "."+domain) {
			matched = append(matched, c)
		}
	}
	return matched
}

// ExpiredCookies returns the names of cookies whose expiry is before now.
func ExpiredCookies(cookies []*http.Cookie, now time.Time) []string {
	var names []string
	for _, c := range cookies {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			names = append(names, c.Name)
		}
	}
	return names
}
