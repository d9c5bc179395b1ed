package observability

import (
	"sync"
	"sync/atomic"
)

type StatsSnapshot struct {
	SourcesFetched      uint64            `json:"sources_fetched"`
	CandidatesExtracted uint64            `json:"candidates_extracted"`
	CandidatesDiscarded uint64            `json:"candidates_discarded"`
	RefreshesOK         uint64            `json:"refreshes_ok"`
	RefreshesFailed     uint64            `json:"refreshes_failed"`
	ErrorsTotal         uint64            `json:"errors_total"`
	FetchSecondsAvg     float64           `json:"fetch_seconds_avg"`
	SourceDecisions     map[string]uint64 `json:"source_decisions,omitempty"`
	ErrorsByType        map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByComponent   map[string]uint64 `json:"errors_by_component,omitempty"`
}

var (
	sourcesFetched      uint64
	candidatesExtracted uint64
	candidatesDiscarded uint64
	refreshesOK         uint64
	refreshesFailed     uint64
	errorsTotal         uint64

	fetchCount uint64
	fetchNanos uint64

	statsMu           sync.Mutex
	sourceDecisions   = map[string]uint64{}
	errorsByType      = map[string]uint64{}
	errorsByComponent = map[string]uint64{}
)

func IncSourcesFetched(_ string) {
	atomic.AddUint64(&sourcesFetched, 1)
}

func AddCandidatesExtracted(n int) {
	if n <= 0 {
		return
	}
	atomic.AddUint64(&candidatesExtracted, uint64(n))
}

func AddCandidatesDiscarded(n int) {
	if n <= 0 {
		return
	}
	atomic.AddUint64(&candidatesDiscarded, uint64(n))
}

func IncRefreshOK() {
	atomic.AddUint64(&refreshesOK, 1)
}

func IncRefreshFailed() {
	atomic.AddUint64(&refreshesFailed, 1)
}

// IncSourceDecision records which source shape ended up serving a council
// (ics feed or rendered html).
func IncSourceDecision(result string) {
	if result == "" {
		result = "unknown"
	}
	statsMu.Lock()
	sourceDecisions[result]++
	statsMu.Unlock()
}

func ObserveFetchDuration(_ string, seconds float64) {
	if seconds <= 0 {
		return
	}
	atomic.AddUint64(&fetchCount, 1)
	atomic.AddUint64(&fetchNanos, uint64(seconds*1e9))
}

func IncError(errType, component string) {
	if errType == "" {
		errType = ErrorUnknown
	}
	if component == "" {
		component = "unknown"
	}
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByType[errType]++
	errorsByComponent[component]++
	statsMu.Unlock()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	sourceCopy := copyMap(sourceDecisions)
	errorsTypeCopy := copyMap(errorsByType)
	errorsComponentCopy := copyMap(errorsByComponent)
	statsMu.Unlock()

	count := atomic.LoadUint64(&fetchCount)
	avg := 0.0
	if count > 0 {
		avg = float64(atomic.LoadUint64(&fetchNanos)) / float64(count) / 1e9
	}

	return StatsSnapshot{
		SourcesFetched:      atomic.LoadUint64(&sourcesFetched),
		CandidatesExtracted: atomic.LoadUint64(&candidatesExtracted),
		CandidatesDiscarded: atomic.LoadUint64(&candidatesDiscarded),
		RefreshesOK:         atomic.LoadUint64(&refreshesOK),
		RefreshesFailed:     atomic.LoadUint64(&refreshesFailed),
		ErrorsTotal:         atomic.LoadUint64(&errorsTotal),
		FetchSecondsAvg:     avg,
		SourceDecisions:     sourceCopy,
		ErrorsByType:        errorsTypeCopy,
		ErrorsByComponent:   errorsComponentCopy,
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
