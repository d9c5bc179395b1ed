package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const nextCollectionPhrase = "next collection"

// datePattern lifts a "Friday 7 November 2025"-style snippet out of value
// text that carries surrounding words. The year is optional; resolution
// still happens in resolveDate.
var datePattern = regexp.MustCompile(`(?i)\b(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\s+\d{1,2}\s+(?:january|february|march|april|may|june|july|august|september|october|november|december)(?:\s+\d{4})?\b`)

// HeadingAdapter walks the fixed council markup: an h3 heading per service
// area, followed somewhere below by a dt reading "Next collection" whose dd
// sibling holds the date. Services missing from the page are skipped.
type HeadingAdapter struct {
	cfg Config
}

func NewHeadingAdapter(cfg Config) *HeadingAdapter {
	return &HeadingAdapter{cfg: cfg}
}

func (a *HeadingAdapter) Name() string { return "headings" }

func (a *HeadingAdapter) Extract(input SourceInput) ([]RawCandidate, error) {
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

	// Headings and labels in document order. A bin type's "Next collection"
	// label follows its heading but is rarely a direct sibling of it.
	flow := doc.Find("h3, dt")

	var candidates []RawCandidate
	for _, binType := range a.cfg.BinTypes {
		headingIdx := -1
		flow.EachWithBreak(func(i int, s *goquery.Selection) bool {
			if goquery.NodeName(s) == "h3" && containsFold(s.Text(), binType) {
				headingIdx = i
				return false
			}
			return true
		})
		if headingIdx == -1 {
			continue
		}

		var value string
		flow.Slice(headingIdx+1, flow.Length()).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if goquery.NodeName(s) != "dt" || !containsFold(s.Text(), nextCollectionPhrase) {
				return true
			}
			if dd := s.NextAllFiltered("dd").First(); dd.Length() > 0 {
				value = collapseWhitespace(dd.Text())
			}
			return false
		})
		if value == "" {
			continue
		}

		candidates = append(candidates, RawCandidate{
			Label:       binType,
			RawDateText: dateSnippet(value),
		})
	}

	return candidates, nil
}

// dateSnippet narrows dd text like "Friday 7 November (in 3 days)" down to
// the date portion. Text without a recognizable snippet passes through whole.
func dateSnippet(text string) string {
	if m := datePattern.FindString(text); m != "" {
		return m
	}
	return text
}
