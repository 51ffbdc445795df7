package handler

import (
	"net/http"
	"strconv"

	"github.com/hellotonatural/jeeves-backend/internal/queue"
	"github.com/hellotonatural/jeeves-backend/internal/scheduler"
)

// JobHandler triggers batch jobs over HTTP. Jobs run synchronously and the
// response carries the run's counters; with ?async=true and a publisher
// configured, the job is queued for the worker instead.
type JobHandler struct {
	Jobs      *scheduler.Jobs
	Publisher *queue.Publisher

	FollowupDays int
}

func (h *JobHandler) enqueue(w http.ResponseWriter, r *http.Request, req queue.JobRequest) bool {
	if r.URL.Query().Get("async") != "true" {
		return false
	}
	if h.Publisher == nil {
		badRequest(w, "async requested but no queue is configured")
		return true
	}
	if err := h.Publisher.Publish(req); err != nil {
		writeError(w, err)
		return true
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "job": req.Job})
	return true
}

func (h *JobHandler) InitialDrafts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 25)
	if limit < 1 {
		badRequest(w, "limit must be positive")
		return
	}
	if h.enqueue(w, r, queue.JobRequest{Job: queue.JobInitialDrafts, Limit: limit}) {
		return
	}

	result, err := h.Jobs.GenerateInitialDrafts(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *JobHandler) FollowupDrafts(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days_since_send", 3)
	limit := queryInt(r, "limit", 25)
	if days < 0 || limit < 1 {
		badRequest(w, "days_since_send must be >= 0 and limit positive")
		return
	}
	if h.enqueue(w, r, queue.JobRequest{Job: queue.JobFollowupDrafts, DaysSinceSend: days, Limit: limit}) {
		return
	}

	result, err := h.Jobs.GenerateFollowupDrafts(r.Context(), days, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *JobHandler) Score(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 200)
	maxAge := queryInt(r, "max_age_hours", 24)
	if limit < 1 || maxAge < 1 {
		badRequest(w, "limit and max_age_hours must be positive")
		return
	}
	if h.enqueue(w, r, queue.JobRequest{Job: queue.JobScore, Limit: limit, MaxAgeHours: maxAge}) {
		return
	}

	result, err := h.Jobs.ScoreInfluencers(r.Context(), limit, maxAge)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *JobHandler) fillParams(w http.ResponseWriter, r *http.Request) (scheduler.FillParams, bool) {
	var p scheduler.FillParams
	id, ok := pathUUID(r, "id")
	if !ok {
		badRequest(w, "invalid campaign id")
		return p, false
	}
	p.CampaignID = id

	p.MinScore = 70
	if v := r.URL.Query().Get("min_score"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			badRequest(w, "min_score must be a number")
			return p, false
		}
		p.MinScore = parsed
	}
	p.MaxNewThreads = queryInt(r, "max_new_threads", 25)
	if p.MaxNewThreads < 1 {
		badRequest(w, "max_new_threads must be positive")
		return p, false
	}
	p.Platform = r.URL.Query().Get("platform")
	p.RequireEmail = r.URL.Query().Get("require_email") != "false"
	return p, true
}

func (h *JobHandler) FillAndDraft(w http.ResponseWriter, r *http.Request) {
	p, ok := h.fillParams(w, r)
	if !ok {
		return
	}
	if h.enqueue(w, r, queue.JobRequest{
		Job: queue.JobFillAndDraft, CampaignID: p.CampaignID.String(),
		MinScore: p.MinScore, MaxNewThreads: p.MaxNewThreads,
		Platform: p.Platform, RequireEmail: p.RequireEmail,
	}) {
		return
	}

	result, err := h.Jobs.FillAndDraft(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *JobHandler) ApproveAndSend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		badRequest(w, "invalid campaign id")
		return
	}
	limit := queryInt(r, "limit", 25)
	if limit < 1 {
		badRequest(w, "limit must be positive")
		return
	}
	p := scheduler.SendParams{
		CampaignID:   id,
		Limit:        limit,
		FollowupDays: h.FollowupDays,
		RequireEmail: r.URL.Query().Get("require_email") != "false",
	}
	if h.enqueue(w, r, queue.JobRequest{
		Job: queue.JobApproveAndSend, CampaignID: id.String(),
		Limit: limit, FollowupDays: p.FollowupDays, RequireEmail: p.RequireEmail,
	}) {
		return
	}

	result, err := h.Jobs.ApproveAndSend(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *JobHandler) Pipeline(w http.ResponseWriter, r *http.Request) {
	fill, ok := h.fillParams(w, r)
	if !ok {
		return
	}
	p := scheduler.PipelineParams{
		CampaignID:    fill.CampaignID,
		MinScore:      fill.MinScore,
		MaxNewThreads: fill.MaxNewThreads,
		Platform:      fill.Platform,
		RequireEmail:  fill.RequireEmail,
		SendLimit:     queryInt(r, "send_limit", fill.MaxNewThreads),
		FollowupDays:  h.FollowupDays,
	}
	if p.SendLimit < 1 {
		badRequest(w, "send_limit must be positive")
		return
	}
	if h.enqueue(w, r, queue.JobRequest{
		Job: queue.JobPipeline, CampaignID: p.CampaignID.String(),
		MinScore: p.MinScore, MaxNewThreads: p.MaxNewThreads,
		Platform: p.Platform, RequireEmail: p.RequireEmail,
		Limit: p.SendLimit, FollowupDays: p.FollowupDays,
	}) {
		return
	}

	result, err := h.Jobs.RunPipeline(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
