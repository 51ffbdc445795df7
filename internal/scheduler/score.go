package scheduler

import (
	"context"
	"time"

	"github.com/hellotonatural/jeeves-backend/internal/scoring"
)

type ScoreResult struct {
	Scored int `json:"scored"`
	Failed int `json:"failed"`
}

// ScoreInfluencers recomputes scores for influencers that were never scored
// or whose score is older than maxAgeHours.
func (j *Jobs) ScoreInfluencers(ctx context.Context, limit, maxAgeHours int) (ScoreResult, error) {
	now := j.now()
	log := j.log().WithField("job", "score_influencers")

	if maxAgeHours < 1 {
		maxAgeHours = 24
	}
	cutoff := now.Add(-time.Duration(maxAgeHours) * time.Hour)

	var result ScoreResult
	stale, err := j.Influencers.ListStaleScores(cutoff, limit)
	if err != nil {
		return result, err
	}

	for _, inf := range stale {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		bio := ""
		if inf.Bio != nil {
			bio = *inf.Bio
		}
		res := scoring.Compute(scoring.Input{
			Platform:       inf.Platform,
			Followers:      inf.Followers,
			EngagementRate: inf.EngagementRate,
			Bio:            bio,
		})

		err := j.Influencers.UpdateScores(inf.ID, res.BrandFit, res.Risk, res.Overall, res.Breakdown, now)
		if err != nil {
			log.WithError(err).WithField("influencer_id", inf.ID).Warn("score persist failed")
			result.Failed++
			continue
		}
		result.Scored++
	}

	log.WithFields(map[string]any{
		"scored": result.Scored,
		"failed": result.Failed,
	}).Info("scoring run complete")
	return result, nil
}
