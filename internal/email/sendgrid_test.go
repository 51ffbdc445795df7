package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendGridSend(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding mail body: %v", err)
		}
		w.Header().Set("X-Message-Id", "msg-123")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	p, err := NewSendGridProvider("test-key", false, "")
	if err != nil {
		t.Fatal(err)
	}
	p.baseURL = server.URL

	res, err := p.Send(context.Background(), SendRequest{
		ToEmail:   "creator@example.com",
		Subject:   "Collab idea",
		BodyText:  "Hi!",
		FromEmail: "outreach@hellotonatural.com",
		FromName:  "Hello To Natural",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.ProviderMsgID != "msg-123" {
		t.Errorf("provider msg id: got %q, want msg-123", res.ProviderMsgID)
	}
	if res.Provider != "sendgrid" || res.DryRun {
		t.Errorf("unexpected result: %+v", res)
	}
	if captured["subject"] != "Collab idea" {
		t.Errorf("subject not forwarded: %v", captured["subject"])
	}
}

func TestSendGridDryRunRedirectsRecipient(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	p, _ := NewSendGridProvider("test-key", true, "me@hellotonatural.com")
	p.baseURL = server.URL

	res, err := p.Send(context.Background(), SendRequest{ToEmail: "creator@example.com", FromEmail: "outreach@hellotonatural.com"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.DryRun {
		t.Errorf("expected dry-run result")
	}
	raw, _ := json.Marshal(captured)
	if !strings.Contains(string(raw), "me@hellotonatural.com") || strings.Contains(string(raw), "creator@example.com") {
		t.Errorf("dry run should redirect to test email, got %s", raw)
	}
	// fallback id when the header is absent
	if !strings.HasPrefix(res.ProviderMsgID, "sg-fallback-") {
		t.Errorf("expected fallback provider msg id, got %q", res.ProviderMsgID)
	}
}

func TestSendGridErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"forbidden"}]}`, http.StatusForbidden)
	}))
	defer server.Close()

	p, _ := NewSendGridProvider("test-key", false, "")
	p.baseURL = server.URL

	if _, err := p.Send(context.Background(), SendRequest{ToEmail: "x@example.com"}); err == nil {
		t.Fatal("expected error on 403")
	}
}

func TestProviderFactory(t *testing.T) {
	if _, err := NewProvider("sendgrid", "key", false, ""); err != nil {
		t.Errorf("sendgrid with key: %v", err)
	}
	if _, err := NewProvider("sendgrid", "", false, ""); err == nil {
		t.Errorf("sendgrid without key should fail")
	}
	if _, err := NewProvider("carrierpigeon", "", false, ""); err == nil {
		t.Errorf("unknown provider should fail")
	}
}
