package console

import (
	"context"

	"github.com/sirupsen/logrus"
)

// DryRunNotifier logs the composed message instead of delivering it.
type DryRunNotifier struct {
	logger *logrus.Entry
}

func NewDryRunNotifier(logger *logrus.Entry) *DryRunNotifier {
	return &DryRunNotifier{logger: logger.WithField("component", "dry_run_notifier")}
}

func (n *DryRunNotifier) Name() string { return "console" }

func (n *DryRunNotifier) Send(_ context.Context, text string) error {
	n.logger.WithField("length", len(text)).Info("Dry run, message not delivered:\n" + text)
	return nil
}
