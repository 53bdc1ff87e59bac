package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// originPolicy is the compiled form of Config.AllowedOrigins.
type originPolicy struct {
	any     bool
	allowed map[string]struct{}
	ordered []string
}

// newOriginPolicy normalizes configured origins to scheme://host. Blank and
// invalid entries are dropped; "*" admits every well-formed origin.
func newOriginPolicy(origins []string) originPolicy {
	p := originPolicy{allowed: make(map[string]struct{}, len(origins))}

	for _, raw := range origins {
		origin := strings.TrimSpace(raw)
		switch {
		case origin == "":
			continue
		case origin == "*":
			p.any = true
			continue
		}

		normalized, ok := normalizeOrigin(origin)
		if !ok {
			log.Warn().Str("origin", raw).Msg("Ignoring invalid origin in configuration")
			continue
		}
		if _, dup := p.allowed[normalized]; !dup {
			p.allowed[normalized] = struct{}{}
			p.ordered = append(p.ordered, normalized)
		}
	}
	return p
}

// list returns the normalized origins in configuration order.
func (p originPolicy) list() []string {
	if len(p.ordered) == 0 {
		return nil
	}
	return append([]string(nil), p.ordered...)
}

func (p originPolicy) admits(origin string) bool {
	if origin == "" {
		return false
	}
	normalized, ok := normalizeOrigin(origin)
	if !ok {
		return false
	}
	if p.any {
		return true
	}
	_, ok = p.allowed[normalized]
	return ok
}

// normalizeOrigin lowercases scheme and host and drops any path. Only http
// and https origins with a host are valid.
func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", false
	}

	scheme := strings.ToLower(parsed.Scheme)
	if (scheme != "http" && scheme != "https") || parsed.Host == "" {
		return "", false
	}
	return scheme + "://" + strings.ToLower(parsed.Host), true
}

func isOriginAllowed(r *http.Request) bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return origins.admits(r.Header.Get("Origin"))
}

// checkOrigin is the upgrader's CheckOrigin hook.
func checkOrigin(r *http.Request) bool {
	if isOriginAllowed(r) {
		return true
	}

	log.Warn().
		Str("origin", r.Header.Get("Origin")).
		Str("remote", r.RemoteAddr).
		Msg("Blocked WebSocket connection from disallowed origin")
	return false
}
