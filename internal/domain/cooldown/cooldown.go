package cooldown

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// TimestampLayout is the on-disk representation of the last notification instant.
const TimestampLayout = "2006-01-02 15:04:05"

// DefaultWindow is the minimum gap between two notifications.
const DefaultWindow = time.Hour

var ErrTimestampParse = fmt.Errorf("stored cooldown timestamp is corrupt")

// Store persists the raw last-notified value. Backends hold a single text
// value and know nothing about its format.
type Store interface {
	// LoadLastNotified returns the stored value; found is false when nothing
	// has been recorded yet.
	LoadLastNotified(ctx context.Context) (value string, found bool, err error)
	SaveLastNotified(ctx context.Context, value string) error
}

// Tracker answers cooldown questions on top of a Store.
type Tracker struct {
	store  Store
	loc    *time.Location
	logger *logrus.Entry
}

func NewTracker(store Store, loc *time.Location, logger *logrus.Entry) *Tracker {
	return &Tracker{
		store:  store,
		loc:    loc,
		logger: logger.WithField("component", "cooldown"),
	}
}

// HasNotifiedWithin reports whether the last notification happened less than
// window before now. A corrupt stored value counts as "never notified".
func (t *Tracker) HasNotifiedWithin(ctx context.Context, now time.Time, window time.Duration) (bool, error) {
	last, ok, err := t.LastNotified(ctx)
	if err != nil {
		if errors.Is(err, ErrTimestampParse) {
			t.logger.WithError(err).Warn("Ignoring unreadable cooldown record")
			return false, nil
		}
		return false, err
	}
	if !ok {
		return false, nil
	}
	return now.Sub(last) < window, nil
}

// LastNotified returns the parsed last notification instant.
func (t *Tracker) LastNotified(ctx context.Context) (time.Time, bool, error) {
	raw, found, err := t.store.LoadLastNotified(ctx)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to load cooldown record: %w", err)
	}
	if !found {
		return time.Time{}, false, nil
	}
	last, err := time.ParseInLocation(TimestampLayout, raw, t.loc)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %q", ErrTimestampParse, raw)
	}
	return last, true, nil
}

// RecordNotified overwrites the stored instant with now.
func (t *Tracker) RecordNotified(ctx context.Context, now time.Time) error {
	value := now.In(t.loc).Format(TimestampLayout)
	if err := t.store.SaveLastNotified(ctx, value); err != nil {
		return fmt.Errorf("failed to save cooldown record: %w", err)
	}
	t.logger.WithField("last_notified", value).Debug("Cooldown record updated")
	return nil
}
