// Package identity turns a user-supplied video reference into a canonical
// VideoId. It is a pure function package: no I/O, no dependency on upstream
// services.
package identity

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidURL is returned when the host is not one of the recognized
// platform hosts.
var ErrInvalidURL = errors.New("identity: not a recognized video platform URL")

// ErrUnextractableID is returned when the host is recognized but no video id
// could be located or it failed validation.
var ErrUnextractableID = errors.New("identity: could not extract a valid video id")

// videoIDPattern is the YouTube video id alphabet: letters, digits,
// underscore, dash, fixed at 11 characters.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// recognizedSchemes guards against non-http(s) schemes (e.g. "ftp://") that
// url.Parse happily splits into a recognized host anyway, since RFC3986
// generic URI parsing treats scheme and authority as independent.
var recognizedSchemes = map[string]bool{
	"http":  true,
	"https": true,
}

var recognizedHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
	"youtu.be":        true,
}

// Extract normalizes any supported YouTube URL shape into a canonical
// VideoId. Two inputs referring to the same underlying video (differing only
// in query ordering, scheme, or short-link form) yield byte-identical ids.
func Extract(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", ErrInvalidURL
	}

	// url.Parse is lenient about missing schemes; supply one so Host/Path
	// split predictably.
	candidate := trimmed
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return "", ErrInvalidURL
	}

	if !recognizedSchemes[strings.ToLower(u.Scheme)] {
		return "", ErrInvalidURL
	}

	host := strings.ToLower(u.Host)
	if !recognizedHosts[host] {
		return "", ErrInvalidURL
	}

	var id string
	switch {
	case host == "youtu.be":
		id = firstPathSegment(u.Path)
	case strings.HasPrefix(u.Path, "/shorts/"):
		id = strings.TrimPrefix(u.Path, "/shorts/")
		id = firstPathSegment("/" + id)
	case strings.HasPrefix(u.Path, "/embed/"):
		id = strings.TrimPrefix(u.Path, "/embed/")
		id = firstPathSegment("/" + id)
	default:
		id = u.Query().Get("v")
	}

	id = strings.TrimSpace(id)
	if id == "" || !videoIDPattern.MatchString(id) {
		return "", ErrUnextractableID
	}

	return id, nil
}

// firstPathSegment returns the first non-empty segment of a URL path.
func firstPathSegment(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.SplitN(trimmed, "/", 2)
	return parts[0]
}
