package draft

import (
	"context"
	"strings"
	"testing"
)

func TestOutreachIsDeterministic(t *testing.T) {
	gen := TemplateGenerator{}
	brand := map[string]any{"brand_name": "Hello To Natural", "site": "https://hellotonatural.com"}
	inf := InfluencerView{Handle: "earthmama", DisplayName: "Earth Mama", Platform: "instagram", Bio: "natural skincare"}
	offer := map[string]any{"type": "gifted", "details": "a body oil set"}

	first, err := gen.Outreach(context.Background(), brand, inf, offer)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := gen.Outreach(context.Background(), brand, inf, offer)
	if first != second {
		t.Fatalf("same inputs produced different drafts")
	}

	if !strings.Contains(first.Subject, "Earth Mama") {
		t.Errorf("subject missing display name: %q", first.Subject)
	}
	if !strings.Contains(first.Body, "a body oil set") {
		t.Errorf("body missing offer details")
	}
	if !strings.Contains(first.Body, "https://hellotonatural.com") {
		t.Errorf("body missing site line")
	}
}

func TestOutreachToleratesEmptyInputs(t *testing.T) {
	gen := TemplateGenerator{}

	d, err := gen.Outreach(context.Background(), nil, InfluencerView{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.Subject == "" || d.Body == "" {
		t.Fatalf("empty inputs should still yield generic draft, got %+v", d)
	}
	if !strings.Contains(d.Body, "Hi there,") {
		t.Errorf("expected generic greeting, got %q", d.Body)
	}
	if strings.Contains(d.Body, "Website:") {
		t.Errorf("site line should be dropped when brand has no site")
	}
}

func TestFollowupMentionsOffer(t *testing.T) {
	gen := TemplateGenerator{}
	offer := map[string]any{"type": "paid", "details": "a three-post package"}

	d, err := gen.Followup(context.Background(), nil, InfluencerView{Handle: "teafan"}, offer)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(d.Subject, "Re: ") {
		t.Errorf("follow-up subject should read as a reply: %q", d.Subject)
	}
	if !strings.Contains(d.Body, "a three-post package") || !strings.Contains(d.Body, "paid") {
		t.Errorf("follow-up should restate the offer: %q", d.Body)
	}
}

func TestFactoryDefaultsToTemplate(t *testing.T) {
	if _, ok := NewGenerator("openai", "", "gpt-4o-mini").(TemplateGenerator); !ok {
		t.Errorf("openai mode without a key should fall back to template generator")
	}
	if _, ok := NewGenerator("template", "ignored", "").(TemplateGenerator); !ok {
		t.Errorf("template mode should return template generator")
	}
	if _, ok := NewGenerator("openai", "sk-test", "gpt-4o-mini").(*OpenAIGenerator); !ok {
		t.Errorf("openai mode with key should return openai generator")
	}
}
