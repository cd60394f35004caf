package slot

import (
	"context"
	"time"
)

// Source returns the raw reservation frames found between from and to.
// Implementations must not filter; eligibility is decided by IsAvailable.
type Source interface {
	FetchSlots(ctx context.Context, from, to time.Time) ([]Slot, error)
}
