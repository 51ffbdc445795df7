// Package email wraps the outbound email provider behind a single contract.
// Providers are selected by configuration; adding one means adding an
// implementation, not branching logic.
package email

import (
	"context"
	"fmt"
)

type SendRequest struct {
	ToEmail   string
	Subject   string
	BodyText  string
	FromEmail string
	FromName  string
	ReplyTo   string
}

type SendResult struct {
	Provider      string
	ProviderMsgID string
	DryRun        bool
}

type Provider interface {
	// Send performs a single outbound request. Any transport or auth error
	// comes back as a plain error; callers decide what failure means.
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}

// Sender is the configured sender identity stamped on every outbound email.
type Sender struct {
	FromEmail string
	FromName  string
	ReplyTo   string
}

// NewProvider builds the provider named by configuration.
func NewProvider(name, sendGridKey string, dryRun bool, testEmail string) (Provider, error) {
	switch name {
	case "sendgrid":
		return NewSendGridProvider(sendGridKey, dryRun, testEmail)
	default:
		return nil, fmt.Errorf("unsupported EMAIL_PROVIDER: %s", name)
	}
}
