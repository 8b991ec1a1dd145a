// Package push defines the outbound push-messaging capability the
// notification engine consumes. The concrete transport lives in
// internal/infrastructure/fcm.
package push

import "context"

// Sender delivers a data payload to a single device token and returns
// the transport's message id.
type Sender interface {
	Send(ctx context.Context, token string, data map[string]string) (string, error)
}
