package observability

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rddelacosta/UKBinCollectionData/internal/extract"
	"github.com/rddelacosta/UKBinCollectionData/internal/fetch"
)

func TestClassifyExtractError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no collections", extract.ErrNoCollectionsFound, ErrorNoCollections},
		{"wrapped no collections", fmt.Errorf("refresh: %w", extract.ErrNoCollectionsFound), ErrorNoCollections},
		{"empty content", extract.ErrEmptyContent, ErrorEmpty},
		{"source unavailable", extract.ErrSourceUnavailable, ErrorUnavailable},
		{"invalid input", extract.ErrInvalidInput, ErrorInvalidInput},
		{"parse message", errors.New("calendar parse failed: bad line"), ErrorParsing},
		{"anything else", errors.New("boom"), ErrorUnknown},
		{"nil", nil, ErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyExtractError(tt.err))
		})
	}
}

func TestClassifyFetchError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"http failure", &fetch.FetchError{URL: "https://example.org", Status: 503}, ErrorNetwork},
		{"robots blocked", &fetch.FetchError{URL: "https://example.org", Err: errors.New("blocked by robots.txt")}, ErrorRobots},
		{"timeout", context.DeadlineExceeded, ErrorNetwork},
		{"missing postcode", fmt.Errorf("%w: council requires a postcode", extract.ErrInvalidInput), ErrorInvalidInput},
		{"unavailable wrap", fmt.Errorf("%w: page fetch failed", extract.ErrSourceUnavailable), ErrorUnavailable},
		{"nil", nil, ErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyFetchError(tt.err))
		})
	}
}
