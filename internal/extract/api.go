package extract

import "time"

type SourceKind string

const (
	SourceICS  SourceKind = "ics"
	SourceHTML SourceKind = "html"
)

// SourceInput carries one piece of already-fetched raw content into the
// pipeline. Text holds calendar feeds, Document holds rendered HTML.
// AnchorFound reports whether the fetch layer saw the expected content
// anchor in the rendered page.
type SourceInput struct {
	Kind        SourceKind
	Text        string
	Document    string
	AnchorFound bool
}

// RawCandidate is one (label, date text) pair lifted from a source.
// Adapters never parse dates; resolution happens later in the pipeline.
type RawCandidate struct {
	Label       string
	RawDateText string
}

// SourceAdapter turns raw content into candidates. An adapter skips bin
// types it cannot locate and only errors on whole-source conditions.
type SourceAdapter interface {
	Name() string
	Extract(input SourceInput) ([]RawCandidate, error)
}

// CollectionRecord is one upcoming collection: a canonical bin type plus
// its resolved date at midnight UTC.
type CollectionRecord struct {
	Type string
	Date time.Time
}

// ResultSet is the assembled output of one extraction: unique by type,
// sorted ascending by date, never empty. Discarded counts candidates that
// were dropped during normalization or date resolution.
type ResultSet struct {
	Records   []CollectionRecord
	Discarded int
}

type Bin struct {
	Type           string `json:"type"`
	CollectionDate string `json:"collectionDate"`
}

type Payload struct {
	Bins []Bin `json:"bins"`
}

// Payload renders every record with the given date format, regardless of
// which adapter produced it.
func (rs *ResultSet) Payload(dateFormat string) Payload {
	bins := make([]Bin, 0, len(rs.Records))
	for _, rec := range rs.Records {
		bins = append(bins, Bin{Type: rec.Type, CollectionDate: rec.Date.Format(dateFormat)})
	}
	return Payload{Bins: bins}
}
