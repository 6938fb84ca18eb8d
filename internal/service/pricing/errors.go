package pricing

import (
	"errors"
	"fmt"

	"github.com/mamadbah2/repricer/internal/domain/models"
)

// ErrNoValidOffer signals a legitimate "skip this row" outcome: nothing to
// anchor on, or no competitor signal in the fallback tier. Not a fault.
var ErrNoValidOffer = errors.New("no valid offer")

// SourceUnavailableError wraps a fetch, auth or timeout failure from one
// competitor source. It is contained in that source's aggregation slot.
type SourceUnavailableError struct {
	Source models.SourceTag
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }
