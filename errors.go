package knngraph

import (
	"errors"
	"fmt"

	"github.com/hupe1980/knngraph/dataset"
	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/index"
	"github.com/hupe1980/knngraph/metric"
)

var (
	// ErrNotFitted is returned when querying a Transformer before Fit.
	ErrNotFitted = errors.New("transformer not fitted")

	// ErrInvalidConfig is returned by New for invalid options.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UnsupportedMetricError indicates an unknown metric name or a metric that
// cannot be used with the representation of the data.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type UnsupportedMetricError struct {
	Metric string
	cause  error
}

func (e *UnsupportedMetricError) Error() string {
	return fmt.Sprintf("unsupported metric %q: %v", e.Metric, e.cause)
}

func (e *UnsupportedMetricError) Unwrap() error { return e.cause }

// DataFormatError indicates input data that cannot be normalized.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type DataFormatError struct {
	Reason string
	cause  error
}

func (e *DataFormatError) Error() string {
	return "data format: " + e.Reason
}

func (e *DataFormatError) Unwrap() error { return e.cause }

// IndexConstructionError indicates that the index could not be created or
// built.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type IndexConstructionError struct {
	Method string
	Space  string
	cause  error
}

func (e *IndexConstructionError) Error() string {
	return fmt.Sprintf("index construction (method %q, space %q): %v", e.Method, e.Space, e.cause)
}

func (e *IndexConstructionError) Unwrap() error { return e.cause }

// QueryError indicates a failed kNN query. Row is the failing query row,
// or -1 when the batch as a whole was rejected.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type QueryError struct {
	Row   int
	cause error
}

func (e *QueryError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("query failed: %v", e.cause)
	}
	return fmt.Sprintf("query row %d failed: %v", e.Row, e.cause)
}

func (e *QueryError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Already public.
	var (
		ume *UnsupportedMetricError
		dfe *DataFormatError
		ice *IndexConstructionError
		qe  *QueryError
	)
	if errors.As(err, &ume) || errors.As(err, &dfe) || errors.As(err, &ice) || errors.As(err, &qe) {
		return err
	}

	var ue *metric.UnsupportedError
	if errors.As(err, &ue) {
		return &UnsupportedMetricError{Metric: ue.Name, cause: err}
	}
	var fe *dataset.FormatError
	if errors.As(err, &fe) {
		return &DataFormatError{Reason: fe.Reason, cause: err}
	}
	var iqe *index.QueryError
	if errors.As(err, &iqe) {
		return &QueryError{Row: iqe.Row, cause: err}
	}
	var use *index.UnsupportedSpaceError
	if errors.As(err, &use) {
		return &IndexConstructionError{Method: use.Method, Space: use.Space, cause: err}
	}
	if errors.Is(err, index.ErrUnknownMethod) {
		return &IndexConstructionError{cause: err}
	}
	if errors.Is(err, distance.ErrInvalidP) || errors.Is(err, distance.ErrUnknownSpace) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return err
}
