package extract

import (
	"fmt"
	"time"
)

// Engine runs the full pipeline: source adapter, label normalization, date
// resolution, assembly. It holds no mutable state, so a single engine value
// serves concurrent extractions.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config { return e.cfg }

// Extract turns one source input into a sorted, deduplicated result set.
// The outcome is always one of: a non-empty ResultSet, or a single
// StageError naming the stage that failed. Empty success does not exist.
func (e *Engine) Extract(input SourceInput, today time.Time) (*ResultSet, error) {
	switch input.Kind {
	case SourceICS:
		adapter := NewICSAdapter(e.cfg, today)
		candidates, err := adapter.Extract(input)
		if err != nil {
			return nil, stageErr(adapter.Name(), err, "")
		}
		return e.finish(adapter.Name(), candidates, today, feedLabels)
	case SourceHTML:
		return e.extractHTML(input, today)
	default:
		return nil, stageErr("input", ErrInvalidInput, fmt.Sprintf("unknown source kind %q", input.Kind))
	}
}

// extractHTML tries the fixed-markup adapter first and falls back to the
// container heuristics when the fixed markup yields nothing. Whole-source
// failures from the primary adapter are terminal; the fallback only covers
// layout drift.
func (e *Engine) extractHTML(input SourceInput, today time.Time) (*ResultSet, error) {
	primary := NewHeadingAdapter(e.cfg)
	candidates, err := primary.Extract(input)
	if err != nil {
		return nil, stageErr(primary.Name(), err, "")
	}

	stage := primary.Name()
	if len(candidates) == 0 {
		fallback := NewContainerAdapter(e.cfg)
		candidates, err = fallback.Extract(input)
		if err != nil {
			return nil, stageErr(fallback.Name(), err, "")
		}
		if len(candidates) == 0 {
			return nil, stageErr("html", ErrNoCollectionsFound, "no candidates from headings or containers")
		}
		stage = fallback.Name()
	}

	return e.finish(stage, candidates, today, pageLabels)
}

// finish is the per-candidate accumulator. Candidates failing label
// normalization or date resolution are dropped and counted; one bad
// candidate never aborts the batch.
func (e *Engine) finish(stage string, candidates []RawCandidate, today time.Time, mode labelMode) (*ResultSet, error) {
	var (
		records   []CollectionRecord
		discarded int
	)
	for _, cand := range candidates {
		label, ok := e.cfg.normalizeLabel(cand.Label, mode)
		if !ok {
			discarded++
			continue
		}
		date, err := resolveDate(cand.RawDateText, today, e.cfg.DateFormats)
		if err != nil {
			discarded++
			continue
		}
		records = append(records, CollectionRecord{Type: label, Date: date})
	}

	rs, err := assemble(records, discarded)
	if err != nil {
		return nil, stageErr(stage, err, "")
	}
	return rs, nil
}
