package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rddelacosta/UKBinCollectionData/internal/core"
	"github.com/rddelacosta/UKBinCollectionData/internal/extract"
	"github.com/rddelacosta/UKBinCollectionData/internal/store"
)

type fakeRefresher struct {
	payload extract.Payload
	err     error
	slug    string
}

func (f *fakeRefresher) Refresh(_ context.Context, slug string) (extract.Payload, error) {
	f.slug = slug
	return f.payload, f.err
}

func newTestServer(t *testing.T, refresher Refresher) (*Server, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewServer(store.NewWithDB(db), refresher, "02/01/2006"), mock
}

func doRequest(s *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t, &fakeRefresher{})

	rec := doRequest(s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandleListCouncils(t *testing.T) {
	s, mock := newTestServer(t, &fakeRefresher{})

	refreshed := time.Date(2025, time.November, 5, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM councils")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "name", "waste_url", "last_refreshed_at"}).
			AddRow(7, "merton", "Merton Council", "https://fixmystreet.merton.gov.uk/waste/4259013", refreshed).
			AddRow(8, "sutton", "Sutton Council", "https://waste.sutton.gov.uk/waste", nil))

	rec := doRequest(s, http.MethodGet, "/councils")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []store.Council `json:"items"`
		Total int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 2)
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, "merton", body.Items[0].Slug)
	require.NotNil(t, body.Items[0].LastRefreshedAt)
	assert.Nil(t, body.Items[1].LastRefreshedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleGetCollections(t *testing.T) {
	s, mock := newTestServer(t, &fakeRefresher{})

	mock.ExpectQuery(regexp.QuoteMeta("FROM councils")).
		WithArgs("merton").
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "name", "waste_url", "last_refreshed_at"}).
			AddRow(7, "merton", "Merton Council", "https://fixmystreet.merton.gov.uk/waste/4259013", nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM collections")).
		WithArgs("merton").
		WillReturnRows(sqlmock.NewRows([]string{"bin_type", "collection_date", "extracted_at"}).
			AddRow("Food waste", time.Date(2025, time.November, 7, 0, 0, 0, 0, time.UTC), time.Now()).
			AddRow("Garden Waste", time.Date(2025, time.November, 14, 0, 0, 0, 0, time.UTC), time.Now()))

	rec := doRequest(s, http.MethodGet, "/councils/merton/collections")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload extract.Payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Bins, 2)
	assert.Equal(t, extract.Bin{Type: "Food waste", CollectionDate: "07/11/2025"}, payload.Bins[0])
	assert.Equal(t, extract.Bin{Type: "Garden Waste", CollectionDate: "14/11/2025"}, payload.Bins[1])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleGetCollectionsLimit(t *testing.T) {
	s, mock := newTestServer(t, &fakeRefresher{})

	mock.ExpectQuery(regexp.QuoteMeta("FROM councils")).
		WithArgs("merton").
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "name", "waste_url", "last_refreshed_at"}).
			AddRow(7, "merton", "Merton Council", "https://fixmystreet.merton.gov.uk/waste/4259013", nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM collections")).
		WithArgs("merton").
		WillReturnRows(sqlmock.NewRows([]string{"bin_type", "collection_date", "extracted_at"}).
			AddRow("Food waste", time.Date(2025, time.November, 7, 0, 0, 0, 0, time.UTC), time.Now()).
			AddRow("Garden Waste", time.Date(2025, time.November, 14, 0, 0, 0, 0, time.UTC), time.Now()))

	rec := doRequest(s, http.MethodGet, "/councils/merton/collections?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload extract.Payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Bins, 1)
	assert.Equal(t, "Food waste", payload.Bins[0].Type)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 0},
		{"limit=1", 1},
		{"limit=5", 5},
		{"limit=0", 0},
		{"limit=-3", 0},
		{"limit=all", 0},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/councils/merton/collections?"+tt.query, nil)
		assert.Equal(t, tt.want, parseLimit(req), tt.query)
	}
}

func TestHandleGetCollectionsUnknownCouncil(t *testing.T) {
	s, mock := newTestServer(t, &fakeRefresher{})

	mock.ExpectQuery(regexp.QuoteMeta("FROM councils")).
		WithArgs("atlantis").
		WillReturnError(sql.ErrNoRows)

	rec := doRequest(s, http.MethodGet, "/councils/atlantis/collections")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unknown council")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleGetCollectionsNothingCached(t *testing.T) {
	s, mock := newTestServer(t, &fakeRefresher{})

	mock.ExpectQuery(regexp.QuoteMeta("FROM councils")).
		WithArgs("merton").
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "name", "waste_url", "last_refreshed_at"}).
			AddRow(7, "merton", "Merton Council", "https://fixmystreet.merton.gov.uk/waste/4259013", nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM collections")).
		WithArgs("merton").
		WillReturnRows(sqlmock.NewRows([]string{"bin_type", "collection_date", "extracted_at"}))

	rec := doRequest(s, http.MethodGet, "/councils/merton/collections")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh it first")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleRefresh(t *testing.T) {
	refresher := &fakeRefresher{payload: extract.Payload{Bins: []extract.Bin{
		{Type: "Food waste", CollectionDate: "07/11/2025"},
	}}}
	s, _ := newTestServer(t, refresher)

	rec := doRequest(s, http.MethodPost, "/councils/merton/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "merton", refresher.slug)

	var payload extract.Payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Bins, 1)
	assert.Equal(t, "Food waste", payload.Bins[0].Type)
}

func TestHandleRefreshErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown council", fmt.Errorf("%w: atlantis", core.ErrUnknownCouncil), http.StatusNotFound},
		{"no collections", fmt.Errorf("extract failed: %w", extract.ErrNoCollectionsFound), http.StatusNotFound},
		{"invalid input", fmt.Errorf("%w: council requires a postcode", extract.ErrInvalidInput), http.StatusBadRequest},
		{"source unavailable", fmt.Errorf("acquire failed: %w", extract.ErrSourceUnavailable), http.StatusBadGateway},
		{"empty content", fmt.Errorf("extract failed: %w", extract.ErrEmptyContent), http.StatusBadGateway},
		{"anything else", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, &fakeRefresher{err: tt.err})
			rec := doRequest(s, http.MethodPost, "/councils/merton/refresh")
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), "Refresh failed")
		})
	}
}

func TestHandleStats(t *testing.T) {
	s, _ := newTestServer(t, &fakeRefresher{})

	rec := doRequest(s, http.MethodGet, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Contains(t, snapshot, "refreshes_ok")
	assert.Contains(t, snapshot, "sources_fetched")
}
