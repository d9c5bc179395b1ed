package observability

import (
	"context"
	"errors"
	"strings"

	"github.com/rddelacosta/UKBinCollectionData/internal/extract"
	"github.com/rddelacosta/UKBinCollectionData/internal/fetch"
)

const (
	ErrorNetwork       = "network"
	ErrorRobots        = "robots"
	ErrorParsing       = "parsing"
	ErrorEmpty         = "empty"
	ErrorUnavailable   = "unavailable"
	ErrorInvalidInput  = "invalid_input"
	ErrorNoCollections = "no_collections"
	ErrorStore         = "store"
	ErrorUnknown       = "unknown"
)

// ClassifyExtractError maps the extraction taxonomy onto a stats bucket.
func ClassifyExtractError(err error) string {
	switch {
	case err == nil:
		return ErrorUnknown
	case errors.Is(err, extract.ErrNoCollectionsFound):
		return ErrorNoCollections
	case errors.Is(err, extract.ErrEmptyContent):
		return ErrorEmpty
	case errors.Is(err, extract.ErrSourceUnavailable):
		return ErrorUnavailable
	case errors.Is(err, extract.ErrInvalidInput):
		return ErrorInvalidInput
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "parse failed") || strings.Contains(msg, "no format matched") {
		return ErrorParsing
	}
	return ErrorUnknown
}

// ClassifyFetchError maps acquisition failures onto a stats bucket. The
// extraction taxonomy takes precedence because the fetch layer wraps its
// failures in those sentinels.
func ClassifyFetchError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	if errors.Is(err, extract.ErrInvalidInput) {
		return ErrorInvalidInput
	}
	var fe *fetch.FetchError
	if errors.As(err, &fe) {
		if fe.Err != nil && strings.Contains(fe.Err.Error(), "robots.txt") {
			return ErrorRobots
		}
		return ErrorNetwork
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorNetwork
	}
	if errors.Is(err, extract.ErrSourceUnavailable) {
		return ErrorUnavailable
	}
	return ErrorUnknown
}
