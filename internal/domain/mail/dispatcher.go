package mail

import "context"

// Dispatcher delivers a rendered message to one recipient.
// Send reports delivery success; transport errors are handled by the implementation
// so that one bad recipient cannot abort a batch.
type Dispatcher interface {
	Send(ctx context.Context, recipientEmail, subject, plainBody, richBody string) bool
}
