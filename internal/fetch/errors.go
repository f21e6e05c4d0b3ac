package fetch

import (
	"errors"
	"fmt"
)

// ErrInvalidSymbol rejects empty or blank symbol input before any network
// activity.
var ErrInvalidSymbol = errors.New("invalid symbol")

// ErrDataEmpty marks a response that parsed successfully but yielded zero
// usable rows. Reported distinctly from DataUnavailableError.
var ErrDataEmpty = errors.New("upstream returned no usable rows")

// DataUnavailableError is returned when every relay attempt across both
// upstream endpoints has been exhausted. Last carries the final underlying
// error for diagnostics.
type DataUnavailableError struct {
	Symbol string
	Last   error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data unavailable for %s: %v", e.Symbol, e.Last)
}

func (e *DataUnavailableError) Unwrap() error { return e.Last }
