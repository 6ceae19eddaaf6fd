// Package server gates the WebSocket upgrade on the Origin header against
// the configured allow list.
package server

import (
	"log"
	"net/http"
	"net/url"
	"strings"
)

// normalizeOrigins lowercases and validates the configured origin list,
// dropping malformed entries. The second result reports whether the
// wildcard "*" was configured.
func normalizeOrigins(origins []string) ([]string, bool) {
	if len(origins) == 0 {
		return nil, false
	}

	normalized := make([]string, 0, len(origins))
	allowAll := false
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		switch {
		case trimmed == "":
		case trimmed == "*":
			allowAll = true
		default:
			canonical, ok := normalizeOrigin(trimmed)
			if !ok {
				log.Printf("Dropping malformed allowed origin %q", origin)
				continue
			}
			normalized = append(normalized, canonical)
		}
	}
	return normalized, allowAll
}

// normalizeOrigin reduces an origin to lowercase scheme://host. Origins
// without a scheme or host are rejected.
func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

// checkOrigin is the upgrader's origin policy: the request's Origin header
// must parse and match the allow list, unless the wildcard is configured.
// A missing header is rejected.
func checkOrigin(r *http.Request) bool {
	header := r.Header.Get("Origin")
	if origin, ok := normalizeOrigin(header); ok {
		configMu.RLock()
		defer configMu.RUnlock()
		if allowAllOrigins {
			return true
		}
		if _, exists := allowedOrigins[origin]; exists {
			return true
		}
	}
	log.Printf("Rejected WebSocket upgrade from origin %q", header)
	return false
}
