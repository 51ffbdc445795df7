package scoring

import (
	"reflect"
	"testing"
)

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestComputeIsDeterministic(t *testing.T) {
	in := Input{
		Platform:       "instagram",
		Followers:      intPtr(20000),
		EngagementRate: floatPtr(0.05),
		Bio:            "I love natural skincare and herbal tea",
	}

	first := Compute(in)
	for i := 0; i < 10; i++ {
		if got := Compute(in); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestComputeScoresWithinRange(t *testing.T) {
	inputs := []Input{
		{},
		{Platform: "instagram"},
		{Platform: "tiktok", Followers: intPtr(0), EngagementRate: floatPtr(0)},
		{Platform: "youtube", Followers: intPtr(5_000_000), EngagementRate: floatPtr(25.0), Bio: "natural holistic herbal plant-based vegan wellness clean beauty skincare body oil organic"},
		{Platform: "other", Followers: intPtr(1), EngagementRate: floatPtr(0.001), Bio: "x", OutreachCount: 5, ReplyCount: 0},
		{Platform: "pinterest", OutreachCount: 10, ReplyCount: 10},
	}

	for i, in := range inputs {
		res := Compute(in)
		for name, v := range map[string]float64{"overall": res.Overall, "brand_fit": res.BrandFit, "risk": res.Risk} {
			if v < 0 || v > 100 {
				t.Errorf("input %d: %s score %v out of [0,100]", i, name, v)
			}
		}
	}
}

func TestEngagementNormalization(t *testing.T) {
	asFraction := Compute(Input{Platform: "instagram", EngagementRate: floatPtr(0.045)})
	asPercent := Compute(Input{Platform: "instagram", EngagementRate: floatPtr(4.5)})

	if asFraction.Breakdown.EngagementScore != asPercent.Breakdown.EngagementScore {
		t.Fatalf("fraction and percent forms disagree: %d vs %d",
			asFraction.Breakdown.EngagementScore, asPercent.Breakdown.EngagementScore)
	}
	if asFraction.Breakdown.EngagementScore != 35 {
		t.Fatalf("expected engagement score 35 for 4.5%%, got %d", asFraction.Breakdown.EngagementScore)
	}
}

func TestFollowerBuckets(t *testing.T) {
	cases := []struct {
		followers *int
		want      int
	}{
		{nil, 8},
		{intPtr(999), 5},
		{intPtr(1_000), 10},
		{intPtr(2_999), 10},
		{intPtr(3_000), 20},
		{intPtr(50_000), 20},
		{intPtr(50_001), 15},
		{intPtr(250_000), 15},
		{intPtr(250_001), 10},
	}
	for _, c := range cases {
		res := Compute(Input{Platform: "instagram", Followers: c.followers})
		if res.Breakdown.FollowersScore != c.want {
			t.Errorf("followers %v: got %d, want %d", c.followers, res.Breakdown.FollowersScore, c.want)
		}
	}
}

func TestMicroInfluencerScenario(t *testing.T) {
	res := Compute(Input{
		Platform:       "instagram",
		Followers:      intPtr(20000),
		EngagementRate: floatPtr(0.05),
		Bio:            "I love natural skincare and herbal tea",
	})

	b := res.Breakdown
	if b.FollowersScore != 20 {
		t.Errorf("followers score: got %d, want 20", b.FollowersScore)
	}
	if b.EngagementScore < 25 {
		t.Errorf("engagement score: got %d, want >= 25", b.EngagementScore)
	}
	for _, kw := range []string{"natural", "skincare", "herbal", "tea"} {
		found := false
		for _, hit := range b.KeywordHits {
			if hit == kw {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected keyword hit %q, got %v", kw, b.KeywordHits)
		}
	}
	if res.Overall < 70 {
		t.Errorf("overall score: got %v, want >= 70", res.Overall)
	}
}

func TestKeywordMatching(t *testing.T) {
	// "tea" must not match inside "team"; phrases match as substrings.
	noHit := Compute(Input{Platform: "instagram", Bio: "our team ships fast"})
	for _, hit := range noHit.Breakdown.KeywordHits {
		if hit == "tea" {
			t.Fatalf("'tea' matched inside 'team'")
		}
	}

	phrase := Compute(Input{Platform: "instagram", Bio: "all about clean beauty here"})
	found := false
	for _, hit := range phrase.Breakdown.KeywordHits {
		if hit == "clean beauty" {
			found = true
		}
	}
	if !found {
		t.Fatalf("phrase 'clean beauty' not matched: %v", phrase.Breakdown.KeywordHits)
	}

	// baseline for non-empty bio without hits, flat 6 for empty bio
	if got := noHit.Breakdown.KeywordFitScore; got != 8 {
		t.Errorf("non-empty bio floor: got %d, want 8", got)
	}
	empty := Compute(Input{Platform: "instagram"})
	if got := empty.Breakdown.KeywordFitScore; got != 6 {
		t.Errorf("empty bio: got %d, want 6", got)
	}
}

func TestRiskComponents(t *testing.T) {
	// missing engagement + missing followers + empty bio
	allMissing := Compute(Input{Platform: "instagram"})
	if allMissing.Risk != 30 {
		t.Errorf("all-missing risk: got %v, want 30", allMissing.Risk)
	}

	// very low engagement counts 20, huge following counts 10
	risky := Compute(Input{Platform: "instagram", EngagementRate: floatPtr(0.005), Followers: intPtr(300_000), Bio: "hello"})
	if risky.Risk != 30 {
		t.Errorf("low-engagement/huge-following risk: got %v, want 30", risky.Risk)
	}

	healthy := Compute(Input{Platform: "instagram", EngagementRate: floatPtr(0.05), Followers: intPtr(20_000), Bio: "natural skincare"})
	if healthy.Risk != 0 {
		t.Errorf("healthy profile risk: got %v, want 0", healthy.Risk)
	}
}

func TestResponsivenessAdjustment(t *testing.T) {
	cases := []struct {
		outreach, replies int
		want              int
	}{
		{0, 0, 0},  // hook dormant below two outreaches
		{1, 1, 0},
		{4, 0, -10},
		{20, 1, -3},
		{10, 2, 3},
		{4, 2, 10},
	}
	for _, c := range cases {
		res := Compute(Input{Platform: "instagram", OutreachCount: c.outreach, ReplyCount: c.replies})
		if res.Breakdown.ResponsivenessAdjust != c.want {
			t.Errorf("outreach=%d replies=%d: got %d, want %d",
				c.outreach, c.replies, res.Breakdown.ResponsivenessAdjust, c.want)
		}
	}
}
