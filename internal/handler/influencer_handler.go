package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hellotonatural/jeeves-backend/internal/model"
	"github.com/hellotonatural/jeeves-backend/internal/repository"
)

type InfluencerHandler struct {
	Repo repository.InfluencerRepositoryInterface
}

func (h *InfluencerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var inf model.Influencer
	if err := json.NewDecoder(r.Body).Decode(&inf); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if inf.Platform == "" || inf.Handle == "" {
		badRequest(w, "platform and handle are required")
		return
	}

	if err := h.Repo.Create(&inf); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inf)
}

func (h *InfluencerHandler) List(w http.ResponseWriter, r *http.Request) {
	f, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	influencers, err := h.Repo.List(f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, influencers)
}

// Top is List with outreach-ready defaults: scored at least 70, email on
// record, best first.
func (h *InfluencerHandler) Top(w http.ResponseWriter, r *http.Request) {
	minScore := 70.0
	if v := r.URL.Query().Get("min_score"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			badRequest(w, "min_score must be a number")
			return
		}
		minScore = parsed
	}
	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 500 {
		badRequest(w, "limit must be between 1 and 500")
		return
	}

	hasEmail := true
	influencers, err := h.Repo.List(repository.InfluencerFilter{
		Platform: r.URL.Query().Get("platform"),
		MinScore: &minScore,
		HasEmail: &hasEmail,
		Sort:     "score_desc",
		Limit:    limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, influencers)
}

func (h *InfluencerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		badRequest(w, "invalid influencer id")
		return
	}
	inf, err := h.Repo.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inf)
}

func (h *InfluencerHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		badRequest(w, "invalid influencer id")
		return
	}

	var patch model.InfluencerPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if err := h.Repo.Patch(id, patch); err != nil {
		writeError(w, err)
		return
	}

	inf, err := h.Repo.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inf)
}

func (h *InfluencerHandler) parseFilter(w http.ResponseWriter, r *http.Request) (repository.InfluencerFilter, bool) {
	q := r.URL.Query()
	f := repository.InfluencerFilter{
		Status:   q.Get("status"),
		Platform: q.Get("platform"),
		Sort:     q.Get("sort"),
	}

	if v := q.Get("min_score"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			badRequest(w, "min_score must be a number")
			return f, false
		}
		f.MinScore = &parsed
	}
	if v := q.Get("has_email"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(w, "has_email must be true or false")
			return f, false
		}
		f.HasEmail = &parsed
	}
	switch f.Sort {
	case "", "created_desc", "score_desc", "score_asc":
	default:
		badRequest(w, "sort must be one of: created_desc, score_desc, score_asc")
		return f, false
	}

	f.Limit = queryInt(r, "limit", 200)
	if f.Limit < 1 || f.Limit > 500 {
		badRequest(w, "limit must be between 1 and 500")
		return f, false
	}
	return f, true
}
