package push

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Sender delivers one message to one device.
type Sender interface {
	Send(ctx context.Context, token string, msg Message) error
}

// ProviderError wraps a failed FCM delivery. Code is a short label derived
// from the FCM error code and is used for logs only.
type ProviderError struct {
	Code string
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("push provider rejected message (%s): %v", e.Code, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// FirebaseConfig selects the Firebase project and service account used for
// FCM HTTP v1 deliveries. An empty CredentialsFile falls back to Application
// Default Credentials.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
	Endpoint        string
	Timeout         time.Duration
}

// messagingClient is the part of *messaging.Client the sender needs.
type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FirebaseSender delivers notifications through the Firebase Admin SDK.
type FirebaseSender struct {
	client  messagingClient
	timeout time.Duration
}

func NewFirebaseSender(ctx context.Context, cfg FirebaseConfig, opts ...option.ClientOption) (*FirebaseSender, error) {
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}
	return &FirebaseSender{client: client, timeout: cfg.Timeout}, nil
}

func (s *FirebaseSender) Send(ctx context.Context, token string, msg Message) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	_, err := s.client.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
	})
	if err != nil {
		return &ProviderError{Code: providerCode(err), Err: err}
	}
	return nil
}

func providerCode(err error) string {
	switch {
	case messaging.IsUnregistered(err):
		return "unregistered"
	case messaging.IsInvalidArgument(err):
		return "invalid_argument"
	case messaging.IsSenderIDMismatch(err):
		return "sender_id_mismatch"
	case messaging.IsQuotaExceeded(err):
		return "quota_exceeded"
	case messaging.IsUnavailable(err):
		return "unavailable"
	case messaging.IsInternal(err):
		return "internal"
	default:
		return "unknown"
	}
}
