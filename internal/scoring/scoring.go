// Package scoring ranks influencer candidates for brand fit. Compute is a
// pure function: same input, same output, no I/O.
package scoring

import (
	"regexp"
	"sort"
	"strings"
)

// Tuned for Hello To Natural.
var keywordWeights = map[string]int{
	// High intent / brand-aligned
	"natural":      4,
	"holistic":     4,
	"herbal":       4,
	"plant based":  4,
	"plant-based":  4,
	"vegan":        3,
	"wellness":     3,
	"clean beauty": 4,
	"skincare":     3,
	"body oil":     4,
	"hair":         2,
	"self care":    2,
	"self-care":    2,
	"tea":          2,
	"coffee":       2,
	"sourdough":    2,
	"organic":      3,
}

var platformWeights = map[string]int{
	"instagram": 10,
	"tiktok":    9,
	"youtube":   8,
	"pinterest": 6,
}

// Word-boundary patterns for single-word keywords; phrases and hyphenated
// keywords are matched as substrings.
var wordPatterns = func() map[string]*regexp.Regexp {
	ps := make(map[string]*regexp.Regexp, len(keywordWeights))
	for kw := range keywordWeights {
		if !strings.ContainsAny(kw, " -") {
			ps[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		}
	}
	return ps
}()

type Input struct {
	Platform       string
	Followers      *int
	EngagementRate *float64 // fraction 0-1 or percent >1; normalized here
	Bio            string
	OutreachCount  int
	ReplyCount     int
}

type Breakdown struct {
	FollowersScore       int      `json:"followers_score"`
	EngagementScore      int      `json:"engagement_score"`
	KeywordFitScore      int      `json:"keyword_fit_score"`
	PlatformScore        int      `json:"platform_score"`
	ResponsivenessAdjust int      `json:"responsiveness_adjust"`
	KeywordHits          []string `json:"keyword_hits"`
	Notes                []string `json:"notes"`
}

type Result struct {
	BrandFit  float64
	Risk      float64
	Overall   float64
	Breakdown Breakdown
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func followersScore(followers *int) int {
	if followers == nil {
		return 8
	}
	f := *followers
	switch {
	case f < 1_000:
		return 5
	case f < 3_000:
		return 10
	case f <= 50_000:
		return 20
	case f <= 250_000:
		return 15
	default:
		return 10
	}
}

// normalizeRate treats values above 1.0 as percentages.
func normalizeRate(rate float64) float64 {
	if rate > 1.0 {
		return rate / 100.0
	}
	return rate
}

func engagementScore(rate *float64) int {
	if rate == nil {
		return 12
	}
	r := normalizeRate(*rate)
	switch {
	case r < 0.01:
		return 5
	case r < 0.02:
		return 15
	case r < 0.04:
		return 25
	case r < 0.08:
		return 35
	default:
		// very high engagement reads as an anomaly signal
		return 30
	}
}

func keywordFitScore(bio string) (int, []string) {
	text := norm(bio)
	if text == "" {
		return 6, nil
	}

	var hits []string
	points := 0
	for kw, weight := range keywordWeights {
		var found bool
		if p, ok := wordPatterns[kw]; ok {
			found = p.MatchString(text)
		} else {
			found = strings.Contains(text, kw)
		}
		if found {
			hits = append(hits, kw)
			points += weight
		}
	}
	sort.Strings(hits)

	// soft cap at 25, baseline 8 for any non-empty bio
	score := int(float64(points) * 1.5)
	if score > 25 {
		score = 25
	}
	if score < 8 {
		score = 8
	}
	return score, hits
}

func platformScore(platform string) int {
	if w, ok := platformWeights[norm(platform)]; ok {
		return w
	}
	return 5
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Compute scores an influencer. The responsiveness adjustment only kicks in
// with at least two recorded outreaches; current callers pass zero counts.
func Compute(in Input) Result {
	fScore := followersScore(in.Followers)        // 0-20
	eScore := engagementScore(in.EngagementRate)  // 0-35
	kScore, hits := keywordFitScore(in.Bio)       // 0-25
	pScore := platformScore(in.Platform)          // 0-10

	respAdj := 0
	if in.OutreachCount >= 2 {
		rate := float64(in.ReplyCount) / float64(in.OutreachCount)
		switch {
		case rate == 0:
			respAdj = -10
		case rate < 0.10:
			respAdj = -3
		case rate < 0.25:
			respAdj = 3
		default:
			respAdj = 10
		}
	}

	overall := clamp(float64(fScore+eScore+kScore+pScore+respAdj), 0, 100)

	brandFit := clamp(float64(int(float64(kScore)*2.4+float64(pScore)*3.0+float64(eScore)*1.2)), 0, 100)

	risk := 0.0
	if in.EngagementRate == nil {
		risk += 10
	} else if normalizeRate(*in.EngagementRate) < 0.01 {
		risk += 20
	}
	if in.Followers == nil {
		risk += 10
	} else if *in.Followers > 250_000 {
		risk += 10
	}
	if norm(in.Bio) == "" {
		risk += 10
	}
	risk = clamp(risk, 0, 100)

	notes := []string{}
	if in.Followers != nil && *in.Followers >= 3_000 && *in.Followers <= 50_000 {
		notes = append(notes, "Ideal follower range for gifted collab")
	}
	if kScore >= 18 {
		notes = append(notes, "Bio strongly matches brand niche")
	}
	if eScore >= 30 {
		notes = append(notes, "Strong engagement rate")
	}

	return Result{
		BrandFit: brandFit,
		Risk:     risk,
		Overall:  overall,
		Breakdown: Breakdown{
			FollowersScore:       fScore,
			EngagementScore:      eScore,
			KeywordFitScore:      kScore,
			PlatformScore:        pScore,
			ResponsivenessAdjust: respAdj,
			KeywordHits:          hits,
			Notes:                notes,
		},
	}
}
