package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable means the source could not be reached or the
	// rendered page never showed the expected content anchor.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrEmptyContent means a retrieval succeeded but returned a blank body.
	ErrEmptyContent = errors.New("empty content")
	// ErrNoCollectionsFound means extraction finished with zero records.
	ErrNoCollectionsFound = errors.New("no collections found")
	// ErrInvalidInput means a caller-supplied identifier or input shape is
	// unusable before any retrieval happens.
	ErrInvalidInput = errors.New("invalid input")
	// ErrParseFailure marks a single candidate whose date text matched no
	// configured format. It is consumed inside the pipeline; one bad
	// candidate never aborts a batch.
	ErrParseFailure = errors.New("parse failure")
)

// StageError reports which pipeline stage failed, with the offending raw
// text or URL where one is known.
type StageError struct {
	Stage  string
	Detail string
	Err    error
}

func (e *StageError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Stage, e.Err, e.Detail)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error, detail string) *StageError {
	return &StageError{Stage: stage, Detail: detail, Err: err}
}
