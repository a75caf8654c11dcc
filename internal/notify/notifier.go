package notify

import "context"

// Notifier delivers a human-readable text alert. The returned bool reports
// whether the channel accepted the message; there is no delivery confirmation
// beyond the immediate response and no retry.
type Notifier interface {
	Send(ctx context.Context, text string) bool
}
