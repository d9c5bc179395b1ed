package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rddelacosta/UKBinCollectionData/internal/extract"
	"github.com/rddelacosta/UKBinCollectionData/internal/fetch"
	"github.com/rddelacosta/UKBinCollectionData/internal/observability"
	"github.com/rddelacosta/UKBinCollectionData/internal/registry"
	"github.com/rddelacosta/UKBinCollectionData/internal/store"
)

var ErrUnknownCouncil = errors.New("unknown council")

// Acquirer resolves a council request into raw source input. Satisfied by
// fetch.Acquirer; tests substitute their own.
type Acquirer interface {
	Acquire(ctx context.Context, req fetch.Request) (extract.SourceInput, error)
}

// RefreshService runs the acquisition and extraction pipeline for one
// council on demand and stores the outcome. It never loops or retries;
// refreshes happen only when a caller asks for one.
type RefreshService struct {
	store    *store.Store
	registry *registry.Registry
	acquirer Acquirer
	engine   *extract.Engine
	now      func() time.Time
}

func NewRefreshService(st *store.Store, reg *registry.Registry, acq Acquirer, engine *extract.Engine) *RefreshService {
	return &RefreshService{
		store:    st,
		registry: reg,
		acquirer: acq,
		engine:   engine,
		now:      time.Now,
	}
}

// SyncCouncils mirrors the registry catalogue into the store so listings
// and lookups work before any council has been refreshed.
func (s *RefreshService) SyncCouncils(ctx context.Context) error {
	for _, c := range s.registry.All() {
		if _, err := s.store.UpsertCouncil(ctx, c.Slug, c.Name, c.WasteURL); err != nil {
			return fmt.Errorf("sync council %s failed: %w", c.Slug, err)
		}
	}
	return nil
}

// Refresh acquires the council's source, extracts its schedule, and replaces
// the stored one. A failed refresh leaves the previous schedule intact and
// returns a single failure naming the stage that broke.
func (s *RefreshService) Refresh(ctx context.Context, slug string) (extract.Payload, error) {
	council, ok := s.registry.Get(slug)
	if !ok {
		return extract.Payload{}, fmt.Errorf("%w: %s", ErrUnknownCouncil, slug)
	}

	started := time.Now()
	input, err := s.acquirer.Acquire(ctx, requestFor(council))
	if err != nil {
		observability.IncError(observability.ClassifyFetchError(err), "fetch")
		observability.IncRefreshFailed()
		return extract.Payload{}, fmt.Errorf("acquire %s failed: %w", council.Slug, err)
	}
	observability.IncSourcesFetched(council.Slug)
	observability.ObserveFetchDuration(council.Slug, time.Since(started).Seconds())
	observability.IncSourceDecision(string(input.Kind))

	rs, err := s.engine.Extract(input, s.now())
	if err != nil {
		observability.IncError(observability.ClassifyExtractError(err), "extract")
		observability.IncRefreshFailed()
		return extract.Payload{}, fmt.Errorf("extract %s failed: %w", council.Slug, err)
	}
	observability.AddCandidatesExtracted(len(rs.Records))
	observability.AddCandidatesDiscarded(rs.Discarded)

	if err := s.persist(ctx, council, rs); err != nil {
		observability.IncError(observability.ErrorStore, "store")
		observability.IncRefreshFailed()
		return extract.Payload{}, fmt.Errorf("store %s failed: %w", council.Slug, err)
	}

	observability.IncRefreshOK()
	slog.Info("council refreshed",
		"council", council.Slug,
		"source", string(input.Kind),
		"records", len(rs.Records),
		"discarded", rs.Discarded)

	return rs.Payload(s.engine.Config().OutputDateFormat), nil
}

func (s *RefreshService) persist(ctx context.Context, council registry.Council, rs *extract.ResultSet) error {
	id, err := s.store.UpsertCouncil(ctx, council.Slug, council.Name, council.WasteURL)
	if err != nil {
		return err
	}

	rows := make([]store.Collection, 0, len(rs.Records))
	for _, rec := range rs.Records {
		rows = append(rows, store.Collection{BinType: rec.Type, CollectionDate: rec.Date})
	}
	return s.store.ReplaceCollections(ctx, id, rows)
}

func requestFor(c registry.Council) fetch.Request {
	return fetch.Request{
		URL:           c.WasteURL,
		Kind:          c.Source,
		AnchorPhrase:  c.AnchorPhrase,
		Postcode:      c.Postcode,
		UPRN:          c.UPRN,
		NeedsPostcode: c.NeedsPostcode,
		NeedsUPRN:     c.NeedsUPRN,
	}
}
