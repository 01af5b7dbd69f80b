// Package urlutil normalizes and compares website URLs leniently: protocol,
// port, a www. prefix, and letter case never distinguish two URLs here.
package urlutil

import (
	"net/url"
	"strings"
)

// Create parses raw text into a URL. Blank input yields (nil, nil). A scheme
// is added when missing, and accidentally doubled schemes ("http://https://x")
// are collapsed before parsing.
func Create(raw string) (*url.URL, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	s = stripDoubledScheme(s)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "http://" + s
	}
	return url.Parse(s)
}

func stripDoubledScheme(s string) string {
	for {
		rest, ok := cutScheme(s)
		if !ok {
			return s
		}
		if _, again := cutScheme(rest); !again {
			return s
		}
		s = rest
	}
}

func cutScheme(s string) (string, bool) {
	for _, p := range []string{"https://", "http://"} {
		if strings.HasPrefix(s, p) {
			return s[len(p):], true
		}
	}
	return s, false
}

// Normalize returns the canonical text form of a URL: http scheme, lowercase
// host without www or port, path without a trailing slash, plus any query.
// Blank input returns ""; unparseable input returns an error.
func Normalize(raw string) (string, error) {
	u, err := Create(raw)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("http://")
	b.WriteString(normalHost(u))
	b.WriteString(normalPath(u))
	if u.RawQuery != "" {
		b.WriteString("?")
		b.WriteString(u.RawQuery)
	}
	return b.String(), nil
}

// Equal reports whether two URL strings point to the same page, ignoring
// protocol, port, www, case, and a trailing slash when there is no query.
// If either side fails to parse, it falls back to raw string equality.
func Equal(a, b string) bool {
	ua, errA := Create(a)
	ub, errB := Create(b)
	if errA != nil || errB != nil {
		return a == b
	}
	if ua == nil || ub == nil {
		return ua == nil && ub == nil
	}
	return normalHost(ua) == normalHost(ub) &&
		normalPath(ua) == normalPath(ub) &&
		ua.RawQuery == ub.RawQuery
}

// HostEqual reports whether two URL strings share a host, ignoring www and
// case. Unparseable input falls back to raw string equality.
func HostEqual(a, b string) bool {
	ua, errA := Create(a)
	ub, errB := Create(b)
	if errA != nil || errB != nil {
		return a == b
	}
	if ua == nil || ub == nil {
		return ua == nil && ub == nil
	}
	return normalHost(ua) == normalHost(ub)
}

// Domain returns the lowercase host of the URL without a www prefix, or ""
// when the input is blank or unparseable.
func Domain(raw string) string {
	u, err := Create(raw)
	if err != nil || u == nil {
		return ""
	}
	return normalHost(u)
}

func normalHost(u *url.URL) string {
	h := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(h, "www.")
}

func normalPath(u *url.URL) string {
	p := u.EscapedPath()
	if u.RawQuery == "" {
		p = strings.TrimSuffix(p, "/")
	}
	return strings.ToLower(p)
}
