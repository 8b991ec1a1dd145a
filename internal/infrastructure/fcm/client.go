// Package fcm adapts Firebase Cloud Messaging to the push.Sender
// capability consumed by the notification engine.
package fcm

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/salestrack/messenger-service/internal/domain/push"
)

// Client wraps a Firebase messaging client.
type Client struct {
	mc *messaging.Client
}

// NewClient initializes the Firebase app. credentialsPath may be empty,
// in which case Application Default Credentials are used.
func NewClient(ctx context.Context, credentialsPath string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, err
	}
	mc, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return &Client{mc: mc}, nil
}

// Send delivers a data message to a single device token and returns the
// FCM message id.
func (c *Client) Send(ctx context.Context, token string, data map[string]string) (string, error) {
	return c.mc.Send(ctx, &messaging.Message{
		Token: token,
		Data:  data,
	})
}

var _ push.Sender = (*Client)(nil)
