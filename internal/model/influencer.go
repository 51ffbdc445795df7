package model

import (
	"time"

	"github.com/google/uuid"
)

// Influencer lifecycle statuses. Status is a freeform string; these are the
// values the batch jobs write.
const (
	InfluencerStatusNew       = "new"
	InfluencerStatusQueued    = "queued"
	InfluencerStatusContacted = "contacted"
)

type Influencer struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Platform       string    `db:"platform" json:"platform"`
	Handle         string    `db:"handle" json:"handle"`
	DisplayName    *string   `db:"display_name" json:"display_name,omitempty"`
	ProfileURL     *string   `db:"profile_url" json:"profile_url,omitempty"`
	Email          *string   `db:"email" json:"email,omitempty"`
	Bio            *string   `db:"bio" json:"bio,omitempty"`
	Followers      *int      `db:"followers" json:"followers,omitempty"`
	EngagementRate *float64  `db:"engagement_rate" json:"engagement_rate,omitempty"`
	NicheTags      JSONMap   `db:"niche_tags" json:"niche_tags,omitempty"`

	// Score fields are either all null (never scored) or all set together
	// with ScoreUpdatedAt.
	BrandFitScore  *float64   `db:"brand_fit_score" json:"brand_fit_score,omitempty"`
	RiskScore      *float64   `db:"risk_score" json:"risk_score,omitempty"`
	OverallScore   *float64   `db:"overall_score" json:"overall_score,omitempty"`
	ScoreBreakdown JSONMap    `db:"score_breakdown" json:"score_breakdown,omitempty"`
	ScoreUpdatedAt *time.Time `db:"score_updated_at" json:"score_updated_at,omitempty"`

	DiscoveredSource *string `db:"discovered_source" json:"discovered_source,omitempty"`
	Status           string  `db:"status" json:"status"`
	Notes            *string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasEmail reports whether a non-empty email address is on record.
func (i *Influencer) HasEmail() bool {
	return i.Email != nil && *i.Email != ""
}

// InfluencerPatch is a partial update. Only non-nil fields are applied;
// absent fields are left untouched.
type InfluencerPatch struct {
	DisplayName    *string  `json:"display_name"`
	ProfileURL     *string  `json:"profile_url"`
	Email          *string  `json:"email"`
	Bio            *string  `json:"bio"`
	Followers      *int     `json:"followers"`
	EngagementRate *float64 `json:"engagement_rate"`
	NicheTags      *JSONMap `json:"niche_tags"`
	Status         *string  `json:"status"`
	Notes          *string  `json:"notes"`
}
