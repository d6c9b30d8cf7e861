package repospec

import (
	"net/url"
	"path/filepath"
	"strings"
)

// SourceKey reduces a clone URL to a comparable host/path key so the same
// repository reached over ssh, https or file:// compares equal.
func SourceKey(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	var host, path string
	switch {
	case strings.Contains(trimmed, "://"):
		u, err := url.Parse(trimmed)
		if err != nil {
			return trimmed
		}
		host = u.Hostname()
		path = u.Path
	case isSCPLike(trimmed):
		at := strings.Index(trimmed, "@")
		colon := strings.Index(trimmed, ":")
		host = trimmed[at+1 : colon]
		path = trimmed[colon+1:]
	default:
		abs, err := filepath.Abs(trimmed)
		if err != nil {
			abs = trimmed
		}
		path = filepath.ToSlash(abs)
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	if host == "" {
		return "/" + path
	}
	return strings.ToLower(host) + "/" + path
}

// SameSource reports whether two clone URLs name the same repository.
func SameSource(a, b string) bool {
	return SourceKey(a) == SourceKey(b)
}

// isSCPLike matches user@host:path, the scp-style ssh form.
func isSCPLike(s string) bool {
	at := strings.Index(s, "@")
	colon := strings.Index(s, ":")
	slash := strings.Index(s, "/")
	return at > 0 && colon > at && (slash < 0 || colon < slash)
}
