package model

import (
	"time"

	"github.com/google/uuid"
)

// Campaign is a named outreach initiative. Rules carries the default draft
// context: brand_context, offer, and an optional keyword list. Campaigns are
// immutable once created.
type Campaign struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	OfferType string    `db:"offer_type" json:"offer_type"` // gifted/paid/affiliate
	Rules     JSONMap   `db:"rules" json:"rules,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BrandContext returns the rules' brand_context object, possibly nil.
func (c *Campaign) BrandContext() map[string]any {
	return c.Rules.SubMap("brand_context")
}

// Offer returns the rules' offer object, defaulting to the campaign's offer
// type when the rules leave it out.
func (c *Campaign) Offer() map[string]any {
	if offer := c.Rules.SubMap("offer"); offer != nil {
		return offer
	}
	return map[string]any{"type": c.OfferType}
}
