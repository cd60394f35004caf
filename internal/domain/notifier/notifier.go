package notifier

import "context"

// Notifier delivers a composed text message to an external messaging channel.
// This keeps the application logic independent of any particular messaging API.
type Notifier interface {
	Name() string
	// Send returns nil only once the channel has accepted the message.
	Send(ctx context.Context, text string) error
}
