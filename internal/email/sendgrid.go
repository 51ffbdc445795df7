package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type SendGridProvider struct {
	apiKey    string
	baseURL   string
	dryRun    bool
	testEmail string
	client    *http.Client
}

func NewSendGridProvider(apiKey string, dryRun bool, testEmail string) (*SendGridProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("SENDGRID_API_KEY is not set")
	}
	return &SendGridProvider{
		apiKey:    apiKey,
		baseURL:   "https://api.sendgrid.com",
		dryRun:    dryRun,
		testEmail: testEmail,
		client:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgMail struct {
	Personalizations []struct {
		To []sgAddress `json:"to"`
	} `json:"personalizations"`
	From    sgAddress  `json:"from"`
	ReplyTo *sgAddress `json:"reply_to,omitempty"`
	Subject string     `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func (p *SendGridProvider) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	toEmail := req.ToEmail
	if p.dryRun {
		if p.testEmail == "" {
			return SendResult{}, fmt.Errorf("OUTREACH_TEST_EMAIL must be set when OUTREACH_DRY_RUN=true")
		}
		toEmail = p.testEmail
	}

	var mail sgMail
	mail.Personalizations = []struct {
		To []sgAddress `json:"to"`
	}{{To: []sgAddress{{Email: toEmail}}}}
	mail.From = sgAddress{Email: req.FromEmail, Name: req.FromName}
	mail.Subject = req.Subject
	mail.Content = []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{{Type: "text/plain", Value: req.BodyText}}
	if req.ReplyTo != "" {
		mail.ReplyTo = &sgAddress{Email: req.ReplyTo}
	}

	body, err := json.Marshal(mail)
	if err != nil {
		return SendResult{}, fmt.Errorf("marshaling mail: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return SendResult{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return SendResult{}, fmt.Errorf("sendgrid request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return SendResult{}, fmt.Errorf("sendgrid error %d: %s", resp.StatusCode, string(respBody))
	}

	// SendGrid doesn't always return a message id in the body; the
	// X-Message-Id header is the reliable spot, with a generated fallback.
	msgID := resp.Header.Get("X-Message-Id")
	if msgID == "" {
		msgID = "sg-fallback-" + uuid.NewString()
	}

	return SendResult{Provider: "sendgrid", ProviderMsgID: msgID, DryRun: p.dryRun}, nil
}
