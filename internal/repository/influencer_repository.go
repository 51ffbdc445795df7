package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hellotonatural/jeeves-backend/internal/apperrors"
	"github.com/hellotonatural/jeeves-backend/internal/model"
)

type InfluencerFilter struct {
	Status   string
	Platform string
	MinScore *float64
	HasEmail *bool
	Sort     string // created_desc | score_desc | score_asc
	Limit    int
}

type InfluencerRepositoryInterface interface {
	Create(inf *model.Influencer) error
	GetByID(id uuid.UUID) (*model.Influencer, error)
	List(f InfluencerFilter) ([]*model.Influencer, error)
	Patch(id uuid.UUID, p model.InfluencerPatch) error
	ListCandidates(minScore float64, platform string, requireEmail bool, limit int) ([]*model.Influencer, error)
	ListStaleScores(before time.Time, limit int) ([]*model.Influencer, error)
	UpdateScores(id uuid.UUID, brandFit, risk, overall float64, breakdown any, at time.Time) error
	UpdateStatus(id uuid.UUID, status string) error
}

type InfluencerRepository struct {
	DB *sql.DB
}

const influencerColumns = `id, platform, handle, display_name, profile_url, email, bio, followers,
	engagement_rate, niche_tags, brand_fit_score, risk_score, overall_score,
	score_breakdown, score_updated_at, discovered_source, status, notes, created_at, updated_at`

func scanInfluencer(row interface{ Scan(...any) error }) (*model.Influencer, error) {
	var inf model.Influencer
	err := row.Scan(
		&inf.ID, &inf.Platform, &inf.Handle, &inf.DisplayName, &inf.ProfileURL,
		&inf.Email, &inf.Bio, &inf.Followers, &inf.EngagementRate, &inf.NicheTags,
		&inf.BrandFitScore, &inf.RiskScore, &inf.OverallScore, &inf.ScoreBreakdown,
		&inf.ScoreUpdatedAt, &inf.DiscoveredSource, &inf.Status, &inf.Notes,
		&inf.CreatedAt, &inf.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inf, nil
}

func (r *InfluencerRepository) Create(inf *model.Influencer) error {
	if inf.ID == uuid.Nil {
		inf.ID = uuid.New()
	}
	if inf.Status == "" {
		inf.Status = model.InfluencerStatusNew
	}
	now := time.Now().UTC()
	inf.CreatedAt = now
	inf.UpdatedAt = now

	query := `
        INSERT INTO influencers (id, platform, handle, display_name, profile_url, email, bio,
            followers, engagement_rate, niche_tags, discovered_source, status, notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `
	_, err := r.DB.Exec(query,
		inf.ID, inf.Platform, inf.Handle, inf.DisplayName, inf.ProfileURL, inf.Email, inf.Bio,
		inf.Followers, inf.EngagementRate, inf.NicheTags, inf.DiscoveredSource, inf.Status, inf.Notes,
		inf.CreatedAt, inf.UpdatedAt,
	)
	return err
}

func (r *InfluencerRepository) GetByID(id uuid.UUID) (*model.Influencer, error) {
	query := `SELECT ` + influencerColumns + ` FROM influencers WHERE id=$1`
	inf, err := scanInfluencer(r.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewInfluencerNotFound(id)
	}
	return inf, err
}

func (r *InfluencerRepository) List(f InfluencerFilter) ([]*model.Influencer, error) {
	query := `SELECT ` + influencerColumns + ` FROM influencers WHERE 1=1`
	args := []any{}
	argPos := 1

	if f.Status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, f.Status)
		argPos++
	}
	if f.Platform != "" {
		query += fmt.Sprintf(" AND platform=$%d", argPos)
		args = append(args, f.Platform)
		argPos++
	}
	if f.MinScore != nil {
		query += fmt.Sprintf(" AND overall_score IS NOT NULL AND overall_score >= $%d", argPos)
		args = append(args, *f.MinScore)
		argPos++
	}
	if f.HasEmail != nil {
		if *f.HasEmail {
			query += " AND email IS NOT NULL AND email <> ''"
		} else {
			query += " AND (email IS NULL OR email = '')"
		}
	}

	switch f.Sort {
	case "", "created_desc":
		query += " ORDER BY created_at DESC"
	case "score_desc":
		query += " ORDER BY overall_score DESC NULLS LAST, created_at DESC"
	case "score_asc":
		query += " ORDER BY overall_score ASC NULLS LAST, created_at DESC"
	default:
		return nil, fmt.Errorf("sort must be one of: created_desc, score_desc, score_asc")
	}

	limit := f.Limit
	if limit < 1 {
		limit = 200
	}
	query += fmt.Sprintf(" LIMIT $%d", argPos)
	args = append(args, limit)

	return r.queryInfluencers(query, args...)
}

// Patch applies only the fields present in the payload, teacher-style
// dynamic SQL with positional args.
func (r *InfluencerRepository) Patch(id uuid.UUID, p model.InfluencerPatch) error {
	sets := []string{}
	args := []any{}
	argPos := 1

	add := func(col string, val any) {
		sets = append(sets, fmt.Sprintf("%s=$%d", col, argPos))
		args = append(args, val)
		argPos++
	}

	if p.DisplayName != nil {
		add("display_name", *p.DisplayName)
	}
	if p.ProfileURL != nil {
		add("profile_url", *p.ProfileURL)
	}
	if p.Email != nil {
		add("email", *p.Email)
	}
	if p.Bio != nil {
		add("bio", *p.Bio)
	}
	if p.Followers != nil {
		add("followers", *p.Followers)
	}
	if p.EngagementRate != nil {
		add("engagement_rate", *p.EngagementRate)
	}
	if p.NicheTags != nil {
		add("niche_tags", *p.NicheTags)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}

	if len(sets) == 0 {
		return nil
	}

	add("updated_at", time.Now().UTC())
	query := fmt.Sprintf("UPDATE influencers SET %s WHERE id=$%d",
		joinSets(sets), argPos)
	args = append(args, id)

	res, err := r.DB.Exec(query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewInfluencerNotFound(id)
	}
	return nil
}

func joinSets(sets []string) string {
	out := ""
	for i, s := range sets {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

// ListCandidates returns scored influencers eligible for fill-and-draft,
// best score first, newest first within a score.
func (r *InfluencerRepository) ListCandidates(minScore float64, platform string, requireEmail bool, limit int) ([]*model.Influencer, error) {
	query := `SELECT ` + influencerColumns + ` FROM influencers
        WHERE overall_score IS NOT NULL AND overall_score >= $1`
	args := []any{minScore}
	argPos := 2

	if platform != "" {
		query += fmt.Sprintf(" AND platform=$%d", argPos)
		args = append(args, platform)
		argPos++
	}
	if requireEmail {
		query += " AND email IS NOT NULL AND email <> ''"
	}

	query += fmt.Sprintf(" ORDER BY overall_score DESC, created_at DESC LIMIT $%d", argPos)
	args = append(args, limit)

	return r.queryInfluencers(query, args...)
}

func (r *InfluencerRepository) ListStaleScores(before time.Time, limit int) ([]*model.Influencer, error) {
	query := `SELECT ` + influencerColumns + ` FROM influencers
        WHERE score_updated_at IS NULL OR score_updated_at < $1
        ORDER BY score_updated_at ASC NULLS FIRST, created_at ASC
        LIMIT $2`
	return r.queryInfluencers(query, before, limit)
}

// UpdateScores writes all score fields together so they are never partially set.
func (r *InfluencerRepository) UpdateScores(id uuid.UUID, brandFit, risk, overall float64, breakdown any, at time.Time) error {
	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("marshaling score breakdown: %w", err)
	}
	query := `
        UPDATE influencers
        SET brand_fit_score=$1, risk_score=$2, overall_score=$3, score_breakdown=$4,
            score_updated_at=$5, updated_at=$5
        WHERE id=$6
    `
	_, err = r.DB.Exec(query, brandFit, risk, overall, breakdownJSON, at, id)
	return err
}

func (r *InfluencerRepository) UpdateStatus(id uuid.UUID, status string) error {
	query := `UPDATE influencers SET status=$1, updated_at=$2 WHERE id=$3`
	_, err := r.DB.Exec(query, status, time.Now().UTC(), id)
	return err
}

func (r *InfluencerRepository) queryInfluencers(query string, args ...any) ([]*model.Influencer, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	influencers := []*model.Influencer{}
	for rows.Next() {
		inf, err := scanInfluencer(rows)
		if err != nil {
			return nil, err
		}
		influencers = append(influencers, inf)
	}
	return influencers, rows.Err()
}

var _ InfluencerRepositoryInterface = (*InfluencerRepository)(nil)
