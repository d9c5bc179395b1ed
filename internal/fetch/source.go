package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rddelacosta/UKBinCollectionData/internal/discovery"
	"github.com/rddelacosta/UKBinCollectionData/internal/extract"
	"github.com/rddelacosta/UKBinCollectionData/internal/urlutil"
)

// defaultAnchor is the content marker a fully rendered waste page always
// carries. Councils with unusual vocabularies override it per entry.
const defaultAnchor = "Food waste"

const calendarMarker = "BEGIN:VCALENDAR"

// maxFeedProbes bounds how many page-advertised feed links get tried before
// falling back to the rendered HTML.
const maxFeedProbes = 3

// Request describes one acquisition: where the council's waste page lives,
// which source shape to use, and the property identifiers the council's
// lookup flow needs.
type Request struct {
	URL           string
	Kind          string // ics, html, or auto
	AnchorPhrase  string
	Postcode      string
	UPRN          string
	NeedsPostcode bool
	NeedsUPRN     bool
}

// Acquirer resolves a Request into raw source input for the engine. It
// owns both retrieval paths: plain GET for calendar feeds and the Colly
// collector for rendered pages.
type Acquirer struct {
	polite *PoliteClient
	pages  *PageFetcher
}

func NewAcquirer(userAgent string) *Acquirer {
	return &Acquirer{
		polite: NewPoliteClient(userAgent),
		pages:  NewPageFetcher(userAgent),
	}
}

// Acquire validates the request, resolves the property page, and fetches
// raw content. Identifier problems surface before any network traffic.
// In auto mode the conventional calendar location is probed first, then any
// feed the page itself advertises; the rendered page is used only when no
// feed exists.
func (a *Acquirer) Acquire(ctx context.Context, req Request) (extract.SourceInput, error) {
	if err := validateRequest(req); err != nil {
		return extract.SourceInput{}, err
	}

	pageURL, err := a.propertyPage(ctx, req)
	if err != nil {
		return extract.SourceInput{}, err
	}

	switch req.Kind {
	case "ics":
		return a.acquireCalendar(ctx, urlutil.CalendarURL(pageURL))
	case "html":
		doc, err := a.fetchDocument(ctx, pageURL)
		if err != nil {
			return extract.SourceInput{}, err
		}
		return pageInput(doc, anchorPhrase(req)), nil
	default: // auto
		if input, err := a.acquireCalendar(ctx, urlutil.CalendarURL(pageURL)); err == nil {
			return input, nil
		}
		doc, err := a.fetchDocument(ctx, pageURL)
		if err != nil {
			return extract.SourceInput{}, err
		}
		feeds := discovery.FeedLinks(pageURL, doc)
		if len(feeds) > maxFeedProbes {
			feeds = feeds[:maxFeedProbes]
		}
		for _, feedURL := range feeds {
			if input, err := a.acquireCalendar(ctx, feedURL); err == nil {
				return input, nil
			}
		}
		return pageInput(doc, anchorPhrase(req)), nil
	}
}

func (a *Acquirer) acquireCalendar(ctx context.Context, calURL string) (extract.SourceInput, error) {
	text, err := a.polite.GetText(ctx, calURL)
	if err != nil {
		return extract.SourceInput{}, fmt.Errorf("%w: calendar fetch failed: %v", extract.ErrSourceUnavailable, err)
	}
	if !strings.Contains(text, calendarMarker) {
		return extract.SourceInput{}, fmt.Errorf("%w: %s is not a calendar feed", extract.ErrSourceUnavailable, calURL)
	}
	return extract.SourceInput{Kind: extract.SourceICS, Text: text}, nil
}

func (a *Acquirer) fetchDocument(ctx context.Context, pageURL string) (string, error) {
	doc, _, err := a.pages.GetDocument(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: page fetch failed: %v", extract.ErrSourceUnavailable, err)
	}
	return doc, nil
}

func pageInput(doc, anchor string) extract.SourceInput {
	return extract.SourceInput{
		Kind:        extract.SourceHTML,
		Document:    doc,
		AnchorFound: containsFold(doc, anchor),
	}
}

// propertyPage turns the council's waste URL into the property-specific
// page. A known UPRN is appended directly; otherwise a postcode lookup
// picks the first listed address.
func (a *Acquirer) propertyPage(ctx context.Context, req Request) (string, error) {
	if req.UPRN != "" {
		return urlutil.PropertyURL(req.URL, strings.TrimSpace(req.UPRN)), nil
	}
	if !req.NeedsPostcode {
		return req.URL, nil
	}

	searchURL, err := postcodeSearchURL(req.URL, req.Postcode)
	if err != nil {
		return "", fmt.Errorf("%w: waste url %q is malformed", extract.ErrInvalidInput, req.URL)
	}
	body, _, err := a.pages.GetDocument(ctx, searchURL)
	if err != nil {
		return "", fmt.Errorf("%w: address lookup failed: %v", extract.ErrSourceUnavailable, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("address page parse failed: %w", err)
	}
	addr, ok := pickAddress(doc)
	if !ok {
		return "", fmt.Errorf("%w: no address found for postcode %s", extract.ErrSourceUnavailable, req.Postcode)
	}
	return urlutil.PropertyURL(req.URL, addr.UPRN), nil
}

// postcodeSearchURL adds the postcode parameter to the waste page URL,
// merging with any query string the page already carries.
func postcodeSearchURL(base, postcode string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("postcode", strings.ToUpper(strings.TrimSpace(postcode)))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func validateRequest(req Request) error {
	if strings.TrimSpace(req.URL) == "" {
		return fmt.Errorf("%w: council url is empty", extract.ErrInvalidInput)
	}
	if req.NeedsUPRN && strings.TrimSpace(req.UPRN) == "" {
		return fmt.Errorf("%w: council requires a uprn", extract.ErrInvalidInput)
	}
	if req.UPRN != "" && !ValidUPRN(req.UPRN) {
		return fmt.Errorf("%w: uprn %q is not numeric", extract.ErrInvalidInput, req.UPRN)
	}
	if req.NeedsPostcode {
		if strings.TrimSpace(req.Postcode) == "" {
			return fmt.Errorf("%w: council requires a postcode", extract.ErrInvalidInput)
		}
		if !ValidPostcode(req.Postcode) {
			return fmt.Errorf("%w: postcode %q is malformed", extract.ErrInvalidInput, req.Postcode)
		}
	}
	return nil
}

func anchorPhrase(req Request) string {
	if strings.TrimSpace(req.AnchorPhrase) != "" {
		return req.AnchorPhrase
	}
	return defaultAnchor
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
