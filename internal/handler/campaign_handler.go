package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hellotonatural/jeeves-backend/internal/model"
	"github.com/hellotonatural/jeeves-backend/internal/repository"
)

type CampaignHandler struct {
	Repo repository.CampaignRepositoryInterface
}

func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name      string        `json:"name"`
		OfferType string        `json:"offer_type"`
		Rules     model.JSONMap `json:"rules"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if payload.Name == "" {
		badRequest(w, "name is required")
		return
	}
	if payload.OfferType == "" {
		payload.OfferType = "gifted"
	}

	campaign := &model.Campaign{
		Name:      payload.Name,
		OfferType: payload.OfferType,
		Rules:     payload.Rules,
	}
	if err := h.Repo.Create(campaign); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.Repo.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		badRequest(w, "invalid campaign id")
		return
	}
	campaign, err := h.Repo.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}
