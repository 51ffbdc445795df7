package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAIGenerator calls the OpenAI responses API. Falls back to a generic
// subject when the model output cannot be split apart.
type OpenAIGenerator struct {
	APIKey  string
	Model   string
	BaseURL string
	client  *http.Client
}

func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	return &OpenAIGenerator{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: "https://api.openai.com",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (g *OpenAIGenerator) Outreach(ctx context.Context, brand map[string]any, inf InfluencerView, offer map[string]any) (Draft, error) {
	instructions := "Write a concise, warm outreach email.\n" +
		"- Be truthful: only reference details present in the influencer data.\n" +
		"- Do not mention trademarks.\n" +
		"- Include a clear next step and an opt-out line."
	return g.generate(ctx, brand, inf, offer, instructions)
}

func (g *OpenAIGenerator) Followup(ctx context.Context, brand map[string]any, inf InfluencerView, offer map[string]any) (Draft, error) {
	instructions := "Write a short, polite follow-up to an unanswered outreach email.\n" +
		"- Keep it to three sentences.\n" +
		"- Restate the offer briefly and include an opt-out line."
	return g.generate(ctx, brand, inf, offer, instructions)
}

func (g *OpenAIGenerator) generate(ctx context.Context, brand map[string]any, inf InfluencerView, offer map[string]any, instructions string) (Draft, error) {
	prompt := map[string]any{
		"brand": brand,
		"influencer": map[string]any{
			"handle":       inf.Handle,
			"display_name": inf.DisplayName,
			"platform":     inf.Platform,
			"bio":          inf.Bio,
			"followers":    inf.Followers,
			"profile_url":  inf.ProfileURL,
		},
		"offer":        offer,
		"instructions": instructions,
	}

	promptJSON, err := json.Marshal(prompt)
	if err != nil {
		return Draft{}, fmt.Errorf("marshaling prompt: %w", err)
	}

	body, err := json.Marshal(map[string]any{
		"model": g.Model,
		"input": string(promptJSON),
	})
	if err != nil {
		return Draft{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/v1/responses", bytes.NewReader(body))
	if err != nil {
		return Draft{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return Draft{}, fmt.Errorf("openai API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return Draft{}, fmt.Errorf("openai API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		OutputText string `json:"output_text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Draft{}, fmt.Errorf("decoding response: %w", err)
	}

	display := inf.DisplayName
	if display == "" {
		display = inf.Handle
	}
	return Draft{
		Subject: fmt.Sprintf("Collab idea for %s", display),
		Body:    result.OutputText,
	}, nil
}
