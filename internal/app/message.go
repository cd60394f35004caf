package app

import (
	"fmt"
	"strings"
	"time"

	"vaccine_slot_notifier/internal/domain/slot"
)

const (
	messageHeader  = "ワクチン接種予約に空きがあるようですよ。"
	blockSeparator = "------"
)

// ComposeMessage renders the available slots into one broadcast message.
// Slots are rendered in the given order, one separated block each.
func ComposeMessage(loginURL string, slots []slot.Slot) string {
	var b strings.Builder
	b.WriteString(messageHeader)
	b.WriteString("\n")
	b.WriteString(loginURL)

	for _, s := range slots {
		b.WriteString("\n")
		b.WriteString(blockSeparator)
		b.WriteString("\n")
		b.WriteString(formatSlotBlock(s))
	}
	return b.String()
}

func formatSlotBlock(s slot.Slot) string {
	lines := []string{
		fmt.Sprintf("日時: %s", formatTimeRange(s.StartAt, s.EndAt)),
	}
	if s.Name != "" {
		lines = append(lines, fmt.Sprintf("会場: %s", s.Name))
	}
	lines = append(lines, fmt.Sprintf("空き: %d件 (最大: %d件)", s.Remaining(), s.ReservationCntLimit))
	if s.Next != nil {
		lines = append(lines, fmt.Sprintf("(2回目予定: %s)", formatTimeRange(s.Next.StartAt, s.Next.EndAt)))
	}
	return strings.Join(lines, "\n")
}

// formatTimeRange renders "YYYY/MM/DD HH:MM-HH:MM" in the offset the source
// published. Values that do not parse are shown as received.
func formatTimeRange(startAt, endAt string) string {
	start, err := time.Parse(time.RFC3339, startAt)
	if err != nil {
		return startAt + "-" + endAt
	}
	end, err := time.Parse(time.RFC3339, endAt)
	if err != nil {
		return fmt.Sprintf("%s %s-%s", start.Format("2006/01/02"), start.Format("15:04"), endAt)
	}
	return fmt.Sprintf("%s %s-%s", start.Format("2006/01/02"), start.Format("15:04"), end.Format("15:04"))
}
