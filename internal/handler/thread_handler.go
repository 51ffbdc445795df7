package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hellotonatural/jeeves-backend/internal/model"
	"github.com/hellotonatural/jeeves-backend/internal/repository"
	"github.com/hellotonatural/jeeves-backend/internal/service"
)

type ThreadHandler struct {
	Service  *service.ThreadService
	Threads  repository.ThreadRepositoryInterface
	Messages repository.MessageRepositoryInterface

	// AllowTestEndpoints gates simulate_inbound, which exists for local
	// development without a reachable webhook.
	AllowTestEndpoints bool
}

func (h *ThreadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CampaignID   uuid.UUID `json:"campaign_id"`
		InfluencerID uuid.UUID `json:"influencer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if payload.CampaignID == uuid.Nil || payload.InfluencerID == uuid.Nil {
		badRequest(w, "campaign_id and influencer_id are required")
		return
	}

	thread, err := h.Service.CreateThread(payload.CampaignID, payload.InfluencerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, thread)
}

func (h *ThreadHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CampaignID    uuid.UUID   `json:"campaign_id"`
		InfluencerIDs []uuid.UUID `json:"influencer_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if payload.CampaignID == uuid.Nil || len(payload.InfluencerIDs) == 0 {
		badRequest(w, "campaign_id and influencer_ids are required")
		return
	}

	result, err := h.Service.BulkCreate(payload.CampaignID, payload.InfluencerIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ThreadHandler) List(w http.ResponseWriter, r *http.Request) {
	stage := r.URL.Query().Get("stage")
	switch stage {
	case "", model.StageNew, model.StageDrafting, model.StageNeedsApproval,
		model.StageWaiting, model.StageReplied:
	default:
		badRequest(w, "unknown stage: "+stage)
		return
	}
	limit := queryInt(r, "limit", 200)
	if limit < 1 || limit > 500 {
		badRequest(w, "limit must be between 1 and 500")
		return
	}

	threads, err := h.Threads.List(stage, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, threads)
}

func (h *ThreadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		badRequest(w, "invalid thread id")
		return
	}
	thread, err := h.Threads.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, thread)
}

func (h *ThreadHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		badRequest(w, "invalid thread id")
		return
	}
	if _, err := h.Threads.GetByID(id); err != nil {
		writeError(w, err)
		return
	}
	messages, err := h.Messages.ListByThread(id, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// SimulateInbound fakes a reply from the influencer.
func (h *ThreadHandler) SimulateInbound(w http.ResponseWriter, r *http.Request) {
	if !h.AllowTestEndpoints {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "test endpoints are disabled"})
		return
	}
	id, ok := pathUUID(r, "id")
	if !ok {
		badRequest(w, "invalid thread id")
		return
	}

	var payload struct {
		Channel string `json:"channel"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	msg, err := h.Service.IngestInbound(id, payload.Channel, payload.Subject, payload.Body, time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}
