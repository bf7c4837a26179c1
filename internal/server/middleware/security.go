package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// CSP holds the Content-Security-Policy directives the page needs. Empty
// directives are left out.
type CSP struct {
	DefaultSrc     []string
	ScriptSrc      []string
	StyleSrc       []string
	ImgSrc         []string
	ConnectSrc     []string
	FrameAncestors []string
	BaseURI        []string
	FormAction     []string
}

// PageCSP is the policy for the portfolio page. The wasm loader is an
// inline script and the cards carry inline styles. Extra connect sources
// let the page post to a remote contact endpoint.
func PageCSP(connect ...string) CSP {
	return CSP{
		DefaultSrc:     []string{"'self'"},
		ScriptSrc:      []string{"'self'", "'unsafe-inline'", "'wasm-unsafe-eval'"},
		StyleSrc:       []string{"'self'", "'unsafe-inline'"},
		ImgSrc:         []string{"'self'", "data:"},
		ConnectSrc:     append([]string{"'self'"}, connect...),
		FrameAncestors: []string{"'none'"},
		BaseURI:        []string{"'self'"},
		FormAction:     []string{"'self'"},
	}
}

// String renders the header value.
func (c CSP) String() string {
	var directives []string
	add := func(name string, values []string) {
		if len(values) > 0 {
			directives = append(directives, fmt.Sprintf("%s %s", name, strings.Join(values, " ")))
		}
	}

	add("default-src", c.DefaultSrc)
	add("script-src", c.ScriptSrc)
	add("style-src", c.StyleSrc)
	add("img-src", c.ImgSrc)
	add("connect-src", c.ConnectSrc)
	add("frame-ancestors", c.FrameAncestors)
	add("base-uri", c.BaseURI)
	add("form-action", c.FormAction)

	return strings.Join(directives, "; ")
}

// Security sets the response security headers.
func Security(csp CSP) func(http.Handler) http.Handler {
	policy := csp.String()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", policy)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if r.TLS != nil {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OriginOf returns scheme://host of rawURL, or "" when it has neither.
func OriginOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
