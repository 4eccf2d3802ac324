package index

import (
	"errors"
	"fmt"

	"github.com/hupe1980/knngraph/vector"
)

var (
	// ErrUnknownMethod is returned by New for an unregistered method.
	ErrUnknownMethod = errors.New("unknown index method")

	// ErrNotBuilt is returned when querying an index before Build.
	ErrNotBuilt = errors.New("index not built")

	// ErrAlreadyBuilt is returned when adding data after Build.
	ErrAlreadyBuilt = errors.New("index already built")

	// ErrEmptyData is returned by AddBatch for an empty dataset.
	ErrEmptyData = errors.New("empty dataset")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")
)

// UnsupportedSpaceError reports a method that cannot index a space.
type UnsupportedSpaceError struct {
	Method string
	Space  string
}

func (e *UnsupportedSpaceError) Error() string {
	return fmt.Sprintf("method %q does not support space %q", e.Method, e.Space)
}

// DataTypeError reports data whose representation does not match the space.
type DataTypeError struct {
	Expected vector.DataType
	Actual   vector.DataType
}

func (e *DataTypeError) Error() string {
	return fmt.Sprintf("data type mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// QueryError reports a failed query row.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type QueryError struct {
	Row   int
	cause error
}

// NewQueryError creates a QueryError for row.
func NewQueryError(row int, cause error) *QueryError {
	return &QueryError{Row: row, cause: cause}
}

func (e *QueryError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("query failed: %v", e.cause)
	}
	return fmt.Sprintf("query row %d failed: %v", e.Row, e.cause)
}

func (e *QueryError) Unwrap() error { return e.cause }
