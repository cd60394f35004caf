package app

import (
	"context"
	"fmt"
	"time"

	"vaccine_slot_notifier/internal/domain/cooldown"
	"vaccine_slot_notifier/internal/domain/notifier"
	"vaccine_slot_notifier/internal/domain/slot"

	"github.com/sirupsen/logrus"
)

var ErrNotifyDelivery = fmt.Errorf("notification delivery failed")

// Outcome is the terminal state a cycle ended in.
type Outcome string

const (
	OutcomeCooldownActive Outcome = "COOLDOWN_ACTIVE"
	OutcomeNoSlots        Outcome = "NO_SLOTS"
	OutcomeNotified       Outcome = "NOTIFIED"
)

// CycleResult summarizes one pass of the notifier.
type CycleResult struct {
	Outcome  Outcome
	Fetched  int
	Eligible int
	Message  string
}

// ServiceOptions carries the cycle parameters taken from configuration.
type ServiceOptions struct {
	LoginURL       string
	CooldownWindow time.Duration
	SearchWindow   time.Duration
}

// SlotNotificationService runs the check-fetch-filter-notify cycle.
type SlotNotificationService struct {
	source   slot.Source
	notifier notifier.Notifier
	cooldown *cooldown.Tracker
	opts     ServiceOptions
	logger   *logrus.Entry
}

func NewSlotNotificationService(
	source slot.Source,
	n notifier.Notifier,
	tracker *cooldown.Tracker,
	opts ServiceOptions,
	logger *logrus.Entry,
) *SlotNotificationService {
	if opts.CooldownWindow <= 0 {
		opts.CooldownWindow = cooldown.DefaultWindow
	}
	if opts.SearchWindow <= 0 {
		opts.SearchWindow = 30 * 24 * time.Hour
	}
	return &SlotNotificationService{
		source:   source,
		notifier: n,
		cooldown: tracker,
		opts:     opts,
		logger:   logger.WithField("component", "notification_service"),
	}
}

// RunCycle performs exactly one pass. The cooldown is recorded only after the
// notifier confirmed delivery.
func (s *SlotNotificationService) RunCycle(ctx context.Context, now time.Time) (CycleResult, error) {
	log := s.logger.WithField("now", now.Format(time.RFC3339))

	// 1. Cooldown
	within, err := s.cooldown.HasNotifiedWithin(ctx, now, s.opts.CooldownWindow)
	if err != nil {
		log.WithError(err).Error("Failed to check cooldown")
		return CycleResult{}, fmt.Errorf("failed to check cooldown: %w", err)
	}
	if within {
		log.WithField("window", s.opts.CooldownWindow.String()).Info("Notified recently, skipping this cycle")
		return CycleResult{Outcome: OutcomeCooldownActive}, nil
	}

	// 2. Fetch
	slots, err := s.source.FetchSlots(ctx, now, now.Add(s.opts.SearchWindow))
	if err != nil {
		log.WithError(err).Error("Failed to fetch reservation slots")
		return CycleResult{}, fmt.Errorf("failed to fetch slots: %w", err)
	}

	// 3. Filter
	available, err := slot.FilterAvailable(slots, now)
	if err != nil {
		log.WithError(err).Error("Failed to evaluate slot availability")
		return CycleResult{Fetched: len(slots)}, fmt.Errorf("failed to filter slots: %w", err)
	}
	result := CycleResult{Fetched: len(slots), Eligible: len(available)}
	log = log.WithFields(logrus.Fields{"fetched": result.Fetched, "eligible": result.Eligible})

	if len(available) == 0 {
		log.Info("No time slot available")
		result.Outcome = OutcomeNoSlots
		return result, nil
	}

	// 4. Compose and notify
	result.Message = ComposeMessage(s.opts.LoginURL, available)
	if err := s.notifier.Send(ctx, result.Message); err != nil {
		log.WithError(err).WithField("notifier", s.notifier.Name()).Error("Failed to deliver notification, cooldown not recorded")
		return result, fmt.Errorf("%w via %s: %w", ErrNotifyDelivery, s.notifier.Name(), err)
	}
	log.WithField("notifier", s.notifier.Name()).Info("Notification delivered")
	result.Outcome = OutcomeNotified

	// 5. Cooldown
	if err := s.cooldown.RecordNotified(ctx, now); err != nil {
		log.WithError(err).Error("Notification delivered but cooldown could not be recorded")
		return result, err
	}
	return result, nil
}
