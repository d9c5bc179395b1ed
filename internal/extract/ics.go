package extract

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

const collectionSuffix = " collection"

// ICSAdapter reads a council's calendar feed. Event summaries carry the bin
// type ("Food waste collection"); event start dates are rendered back into
// the engine's output format so the resolver sees an explicit year and never
// applies rollover to them.
type ICSAdapter struct {
	cfg   Config
	today time.Time
}

func NewICSAdapter(cfg Config, today time.Time) *ICSAdapter {
	return &ICSAdapter{cfg: cfg, today: dateOnly(today)}
}

func (a *ICSAdapter) Name() string { return "ics" }

func (a *ICSAdapter) Extract(input SourceInput) ([]RawCandidate, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, ErrEmptyContent
	}

	cal, err := ics.ParseCalendar(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("calendar parse failed: %w", err)
	}

	var candidates []RawCandidate
	for _, event := range cal.Events() {
		start, err := event.GetStartAt()
		if err != nil {
			// No usable DTSTART on this event; keep the rest.
			continue
		}
		if dateOnly(start).Before(a.today) {
			continue
		}

		summary := event.GetProperty(ics.ComponentPropertySummary)
		if summary == nil {
			continue
		}
		label := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(summary.Value), collectionSuffix))
		if label == "" {
			continue
		}

		candidates = append(candidates, RawCandidate{
			Label:       label,
			RawDateText: dateOnly(start).Format(a.cfg.OutputDateFormat),
		})
	}

	return candidates, nil
}
