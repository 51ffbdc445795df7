package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hellotonatural/jeeves-backend/internal/service"
)

// WebhookHandler receives SendGrid inbound-parse posts for reply detection.
// Replies arrive at replies+<thread-uuid>@<domain>.
type WebhookHandler struct {
	Service *service.ThreadService
	Log     *logrus.Entry
}

var replyAddressPattern = regexp.MustCompile(`replies\+([0-9a-fA-F-]{36})@`)

// extractThreadID pulls the thread UUID out of the recipient addresses. The
// envelope is checked first; the To header can carry display names and
// multiple recipients.
func extractThreadID(envelope, to string) (uuid.UUID, bool) {
	if envelope != "" {
		var env struct {
			To []string `json:"to"`
		}
		if err := json.Unmarshal([]byte(envelope), &env); err == nil {
			for _, addr := range env.To {
				if m := replyAddressPattern.FindStringSubmatch(addr); m != nil {
					if id, err := uuid.Parse(m[1]); err == nil {
						return id, true
					}
				}
			}
		}
	}
	if m := replyAddressPattern.FindStringSubmatch(to); m != nil {
		if id, err := uuid.Parse(m[1]); err == nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

// Inbound always answers 200: SendGrid retries non-2xx responses and an
// unmatchable email will never match on retry.
func (h *WebhookHandler) Inbound(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			badRequest(w, "invalid form payload")
			return
		}
	}

	threadID, found := extractThreadID(r.FormValue("envelope"), r.FormValue("to"))
	if !found {
		h.log().WithField("to", r.FormValue("to")).Info("inbound email without thread address, ignoring")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	body := r.FormValue("text")
	if body == "" {
		body = r.FormValue("html")
	}

	msg, err := h.Service.IngestInbound(threadID, "", r.FormValue("subject"), body, time.Now().UTC())
	if err != nil {
		h.log().WithError(err).WithField("thread_id", threadID).Warn("inbound ingest failed")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "message_id": msg.ID})
}

func (h *WebhookHandler) log() *logrus.Entry {
	if h.Log != nil {
		return h.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
