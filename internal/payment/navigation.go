package payment

import (
	"net/url"
	"strings"
)

// Signal is the outcome inferred from a navigation URL
type Signal int

const (
	SignalNone Signal = iota
	SignalSuccess
	SignalFailure
)

func (s Signal) String() string {
	switch s {
	case SignalSuccess:
		return "success"
	case SignalFailure:
		return "failure"
	default:
		return "none"
	}
}

var (
	successMarkers = []string{"checkout/success", "result/success", "payment-success", "sandbox"}
	failureMarkers = []string{"checkout/fail", "result/fail", "error"}
)

// Classify inspects a navigation URL case-insensitively. Success markers
// win when both kinds appear.
func Classify(url string) Signal {
	lower := strings.ToLower(url)
	for _, marker := range successMarkers {
		if strings.Contains(lower, marker) {
			return SignalSuccess
		}
	}
	for _, marker := range failureMarkers {
		if strings.Contains(lower, marker) {
			return SignalFailure
		}
	}
	return SignalNone
}

// DefaultAllowedPrefixes are the only targets loaded inside the payment surface
var DefaultAllowedPrefixes = []string{
	"https://www.liqpay.ua",
	"https://liqpay.ua",
	"about:blank",
}

// Gate decides which navigation targets may load inside the payment surface
type Gate struct {
	rules []gateRule
}

// gateRule is one parsed allow-list entry
type gateRule struct {
	scheme string
	opaque string // Set for entries such as about:blank
	host   string
	port   string
	path   string
}

// NewGate creates a gate; an empty list falls back to DefaultAllowedPrefixes.
// Entries that do not parse are ignored.
func NewGate(prefixes []string) *Gate {
	if len(prefixes) == 0 {
		prefixes = DefaultAllowedPrefixes
	}
	rules := make([]gateRule, 0, len(prefixes))
	for _, p := range prefixes {
		u, err := url.Parse(strings.ToLower(strings.TrimSpace(p)))
		if err != nil || u.Scheme == "" {
			continue
		}
		if u.Opaque == "" && u.Hostname() == "" {
			continue
		}
		rules = append(rules, gateRule{
			scheme: u.Scheme,
			opaque: u.Opaque,
			host:   u.Hostname(),
			port:   u.Port(),
			path:   strings.TrimSuffix(u.Path, "/"),
		})
	}
	return &Gate{rules: rules}
}

// Allow reports whether raw may load. The scheme and host must match an
// entry exactly and the path must sit under the entry's path, so
// https://liqpay.ua.example.com and https://www.liqpay.ua:x@evil.example are
// rejected.
func (g *Gate) Allow(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.User != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())

	for _, r := range g.rules {
		if r.scheme != scheme {
			continue
		}
		if r.opaque != "" {
			if strings.ToLower(u.Opaque) == r.opaque {
				return true
			}
			continue
		}
		if host != r.host || !portMatches(r, u.Port()) {
			continue
		}
		if r.path == "" || u.Path == r.path || strings.HasPrefix(u.Path, r.path+"/") {
			return true
		}
	}
	return false
}

func portMatches(r gateRule, port string) bool {
	if port == r.port {
		return true
	}
	defaults := map[string]string{"https": "443", "http": "80"}
	def := defaults[r.scheme]
	return (r.port == "" && port == def) || (port == "" && r.port == def)
}
