package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Influencers *InfluencerHandler
	Campaigns   *CampaignHandler
	Threads     *ThreadHandler
	Messages    *MessageHandler
	Jobs        *JobHandler
	Webhooks    *WebhookHandler
}

func NewRouter(h Handlers) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/influencers", h.Influencers.Create)
	r.Get("/influencers", h.Influencers.List)
	r.Get("/influencers/top", h.Influencers.Top)
	r.Get("/influencers/{id}", h.Influencers.Get)
	r.Patch("/influencers/{id}", h.Influencers.Patch)

	r.Post("/campaigns", h.Campaigns.Create)
	r.Get("/campaigns", h.Campaigns.List)
	r.Get("/campaigns/{id}", h.Campaigns.Get)
	r.Post("/campaigns/{id}/fill-and-draft", h.Jobs.FillAndDraft)
	r.Post("/campaigns/{id}/approve-and-send", h.Jobs.ApproveAndSend)
	r.Post("/campaigns/{id}/pipeline", h.Jobs.Pipeline)

	r.Post("/threads", h.Threads.Create)
	r.Post("/threads/bulk", h.Threads.BulkCreate)
	r.Get("/threads", h.Threads.List)
	r.Get("/threads/{id}", h.Threads.Get)
	r.Get("/threads/{id}/messages", h.Threads.ListMessages)
	r.Post("/threads/{id}/simulate_inbound", h.Threads.SimulateInbound)

	r.Post("/messages/draft/{thread_id}", h.Messages.CreateDraft)
	r.Post("/messages/{id}/approve", h.Messages.Approve)
	r.Post("/messages/{id}/send", h.Messages.Send)

	r.Post("/jobs/initial-drafts", h.Jobs.InitialDrafts)
	r.Post("/jobs/followup-drafts", h.Jobs.FollowupDrafts)
	r.Post("/jobs/score", h.Jobs.Score)

	r.Post("/webhooks/sendgrid/inbound", h.Webhooks.Inbound)

	return r
}
