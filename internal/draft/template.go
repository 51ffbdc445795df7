package draft

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// TemplateGenerator is the deterministic generator. Output depends only on
// its inputs; a short stable tag in the subject keeps repeat drafts for the
// same pairing recognizable.
type TemplateGenerator struct{}

func stableTag(parts ...string) string {
	raw := strings.Join(parts, "|")
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:8]
}

func (TemplateGenerator) Outreach(_ context.Context, brand map[string]any, inf InfluencerView, offer map[string]any) (Draft, error) {
	brandName := strField(brand, "brand_name", "Hello To Natural")
	site := strField(brand, "site", "")

	handle := inf.Handle
	if handle == "" {
		handle = "there"
	}
	display := inf.DisplayName
	if display == "" {
		display = handle
	}
	platform := inf.Platform
	if platform == "" {
		platform = "social"
	}
	bio := strings.TrimSpace(inf.Bio)

	offerType := strField(offer, "type", "gifted")
	offerDetails := strField(offer, "details", "a product set")
	cta := strField(offer, "cta", "If you're open, reply with your email + shipping info.")

	tag := stableTag(brandName, handle, platform, offerType, offerDetails)

	subject := fmt.Sprintf("Collab idea for %s (%s) [%s]", display, offerType, tag)

	firstLine := fmt.Sprintf("I came across your %s content—really enjoyed your vibe.", platform)
	if bio != "" {
		snippet := bio
		if len(snippet) > 80 {
			snippet = snippet[:80]
		}
		firstLine = fmt.Sprintf("I came across your %s and noticed you share about %s.", platform, snippet)
	}

	lines := []string{
		fmt.Sprintf("Hi %s,", display),
		firstLine,
		fmt.Sprintf("I'm reaching out from %s.", brandName),
		fmt.Sprintf("We'd love to offer you %s as a %s collab.", offerDetails, offerType),
		cta,
	}
	if site != "" {
		lines = append(lines, fmt.Sprintf("Website: %s", site))
	}
	lines = append(lines,
		`If you're not open to collaborations right now, just reply "no thanks" and I won't follow up.`,
		fmt.Sprintf("— %s Team", brandName),
	)

	return Draft{Subject: subject, Body: strings.Join(lines, "\n")}, nil
}

func (TemplateGenerator) Followup(_ context.Context, brand map[string]any, inf InfluencerView, offer map[string]any) (Draft, error) {
	brandName := strField(brand, "brand_name", "Hello To Natural")

	handle := inf.Handle
	if handle == "" {
		handle = "there"
	}
	display := inf.DisplayName
	if display == "" {
		display = handle
	}
	platform := inf.Platform
	if platform == "" {
		platform = "social"
	}

	offerType := strField(offer, "type", "gifted")
	offerDetails := strField(offer, "details", "a product set")

	tag := stableTag(brandName, handle, platform, offerType, offerDetails)

	subject := fmt.Sprintf("Re: Collab idea for %s [%s]", display, tag)
	lines := []string{
		fmt.Sprintf("Hi %s,", display),
		"Just floating this back to the top of your inbox.",
		fmt.Sprintf("We'd still love to send you %s as a %s collab—no strings attached.", offerDetails, offerType),
		"If now isn't a good time, no worries at all. A quick \"no thanks\" and I'll close this out.",
		fmt.Sprintf("— %s Team", brandName),
	}

	return Draft{Subject: subject, Body: strings.Join(lines, "\n")}, nil
}
