package discovery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FeedLinks scans a fetched waste page for advertised calendar feeds. Some
// councils publish the direct .ics link on the page itself instead of (or
// alongside) serving it at the conventional /calendar.ics location.
// Returned URLs are absolute and deduplicated, head <link> advertisements
// ahead of body anchors.
func FeedLinks(pageURL, document string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string

	add := func(href string, declared bool) {
		resolved := resolveLink(base, href)
		if resolved == "" {
			return
		}
		if !declared && !looksLikeFeed(resolved) {
			return
		}
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		out = append(out, resolved)
	}

	// A link element typed text/calendar is trusted whatever its path;
	// plain anchors must look like a feed.
	doc.Find(`link[type="text/calendar"]`).Each(func(_ int, s *goquery.Selection) {
		add(s.AttrOr("href", ""), true)
	})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		add(s.AttrOr("href", ""), false)
	})

	return out
}

func looksLikeFeed(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".ics")
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	// Councils advertise subscription links on the webcal scheme; the feed
	// itself is plain HTTPS.
	if u.Scheme == "webcal" {
		u.Scheme = "https"
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
