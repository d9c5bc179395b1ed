package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	containerSelector = `div[class*="service"], section[class*="service"], li[class*="service"]`
	headingSelector   = `h1, h2, h3, h4, [class*="title"], [class*="name"], [class*="type"]`
)

var emphasisTags = map[string]struct{}{
	"em":     {},
	"strong": {},
	"b":      {},
	"i":      {},
}

var fillerPrefixes = []string{"on ", "is ", "date "}

// ContainerAdapter is the layout-drift fallback. Instead of relying on
// fixed markup it guesses at service containers by class name, takes the
// first heading-like element as the label, and hunts the container's text
// nodes for the "next collection" phrase. Labels come out raw; the
// allow-list match happens during normalization.
type ContainerAdapter struct {
	cfg Config
}

func NewContainerAdapter(cfg Config) *ContainerAdapter {
	return &ContainerAdapter{cfg: cfg}
}

func (a *ContainerAdapter) Name() string { return "containers" }

func (a *ContainerAdapter) Extract(input SourceInput) ([]RawCandidate, error) {
	if strings.TrimSpace(input.Document) == "" {
		return nil, ErrEmptyContent
	}
	if !input.AnchorFound {
		return nil, ErrSourceUnavailable
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input.Document))
	if err != nil {
		return nil, fmt.Errorf("document parse failed: %w", err)
	}

	var candidates []RawCandidate
	doc.Find(containerSelector).Each(func(_ int, container *goquery.Selection) {
		label := collapseWhitespace(container.Find(headingSelector).First().Text())
		if label == "" {
			return
		}
		dateText := findCollectionText(container)
		if dateText == "" {
			return
		}
		candidates = append(candidates, RawCandidate{Label: label, RawDateText: dateText})
	})

	return candidates, nil
}

// findCollectionText scans the container's text nodes for the collection
// phrase and pulls the accompanying date text out of the surrounding markup.
func findCollectionText(container *goquery.Selection) string {
	for _, root := range container.Nodes {
		if text := scanTextNodes(root); text != "" {
			return text
		}
	}
	return ""
}

func scanTextNodes(n *html.Node) string {
	if n.Type == html.TextNode && containsFold(n.Data, nextCollectionPhrase) {
		if text := dateTextFromNode(n); text != "" {
			return text
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text := scanTextNodes(c); text != "" {
			return text
		}
	}
	return ""
}

// dateTextFromNode recovers the date for a matched text node. Tried in
// order: text after a colon following the phrase, an emphasis element under
// the same parent, then whatever trails the phrase in the node itself.
func dateTextFromNode(n *html.Node) string {
	text := collapseWhitespace(n.Data)
	lower := strings.ToLower(text)
	idx := strings.Index(lower, nextCollectionPhrase)
	if idx == -1 {
		return ""
	}
	rest := strings.TrimSpace(text[idx+len(nextCollectionPhrase):])

	if colon := strings.Index(rest, ":"); colon != -1 {
		if after := stripFiller(strings.TrimSpace(rest[colon+1:])); after != "" {
			return after
		}
	}
	if n.Parent != nil {
		if emph := firstEmphasisText(n.Parent); emph != "" {
			return stripFiller(emph)
		}
	}
	return stripFiller(strings.TrimSpace(strings.TrimPrefix(rest, ":")))
}

func firstEmphasisText(n *html.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if _, ok := emphasisTags[c.Data]; ok {
			if text := collapseWhitespace(textContent(c)); text != "" {
				return text
			}
		}
		if text := firstEmphasisText(c); text != "" {
			return text
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

// stripFiller drops leading connective words councils put between the
// phrase and the date ("is on Friday 7 November").
func stripFiller(text string) string {
	for {
		lower := strings.ToLower(text)
		stripped := false
		for _, prefix := range fillerPrefixes {
			if strings.HasPrefix(lower, prefix) {
				text = strings.TrimSpace(text[len(prefix):])
				stripped = true
				break
			}
		}
		if !stripped {
			return text
		}
	}
}
