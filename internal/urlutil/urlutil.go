package urlutil

import (
	"net/url"
	"path"
	"sort"
	"strings"
)

// Normalize parses a raw council URL, defaults the scheme to https, and
// strips fragments, tracking parameters, and trailing slashes so URLs
// compare and cache stably. Returns the normalized URL and its hostname.
func Normalize(raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Scheme == "" {
		// Scheme-less input parses as a bare path; reparse with one.
		u, err = url.Parse("https://" + raw)
		if err != nil {
			return "", "", err
		}
	}
	u.Fragment = ""
	u.Host = normalizeHost(u.Host)
	u.Path = normalizePath(u.Path)
	u.RawQuery = normalizeQuery(u.RawQuery)
	return u.String(), u.Hostname(), nil
}

// CalendarURL is the conventional location of a waste page's calendar feed.
func CalendarURL(base string) string {
	return appendSegment(base, "calendar.ics")
}

// PropertyURL appends a property identifier segment to a waste page URL.
func PropertyURL(base, uprn string) string {
	return appendSegment(base, uprn)
}

// appendSegment joins one extra segment onto a URL's path, leaving any
// query string where it is.
func appendSegment(base, segment string) string {
	u, err := url.Parse(base)
	if err != nil {
		return strings.TrimSuffix(base, "/") + "/" + segment
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + segment
	return u.String()
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	return host
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	clean := path.Clean(p)
	if clean == "." {
		return "/"
	}
	if clean != "/" && strings.HasSuffix(clean, "/") {
		clean = strings.TrimSuffix(clean, "/")
	}
	return clean
}

func normalizeQuery(raw string) string {
	if raw == "" {
		return ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return ""
	}
	for key := range values {
		lk := strings.ToLower(key)
		if strings.HasPrefix(lk, "utm_") || lk == "gclid" || lk == "fbclid" {
			delete(values, key)
		}
	}
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	normalized := url.Values{}
	for _, k := range keys {
		normalized[k] = values[k]
	}
	return normalized.Encode()
}
