package slot

import (
	"fmt"
	"time"
)

// JST is the fixed offset the reservation system publishes its slots in.
// "Now" and the search window are always evaluated in this location.
var JST = time.FixedZone("JST", 9*60*60)

var ErrInvalidTimestamp = fmt.Errorf("invalid slot timestamp")

// NextSlot is the paired second-dose appointment attached to a slot.
type NextSlot struct {
	StartAt string `json:"start_at"`
	EndAt   string `json:"end_at"`
}

// Slot is one reservation frame as returned by the remote reservation API.
type Slot struct {
	StartAt             string    `json:"start_at"`
	EndAt               string    `json:"end_at"`
	IsPublished         bool      `json:"is_published"`
	ReservationCnt      int       `json:"reservation_cnt"`
	ReservationCntLimit int       `json:"reservation_cnt_limit"`
	Name                string    `json:"name"`
	Next                *NextSlot `json:"next,omitempty"`
}

// Remaining returns limit minus current reservations. It is not clamped:
// upstream data that violates cnt <= limit yields a non-positive value.
func (s Slot) Remaining() int {
	return s.ReservationCntLimit - s.ReservationCnt
}

// Start parses StartAt as an RFC 3339 instant.
func (s Slot) Start() (time.Time, error) {
	return ParseTimestamp(s.StartAt)
}

// IsAvailable reports whether the slot is published, still has capacity and
// starts strictly after now.
func (s Slot) IsAvailable(now time.Time) (bool, error) {
	if !s.IsPublished {
		return false, nil
	}
	if s.ReservationCnt >= s.ReservationCntLimit {
		return false, nil
	}
	start, err := s.Start()
	if err != nil {
		return false, err
	}
	return start.After(now), nil
}

// FilterAvailable keeps the available slots in their original order.
// A malformed start timestamp aborts the whole filter.
func FilterAvailable(slots []Slot, now time.Time) ([]Slot, error) {
	available := make([]Slot, 0, len(slots))
	for i, s := range slots {
		ok, err := s.IsAvailable(now)
		if err != nil {
			return nil, fmt.Errorf("slot %d (%q): %w", i, s.Name, err)
		}
		if ok {
			available = append(available, s)
		}
	}
	return available, nil
}

// ParseTimestamp parses an ISO 8601 timestamp carrying a zone offset.
func ParseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidTimestamp, value, err)
	}
	return t, nil
}
