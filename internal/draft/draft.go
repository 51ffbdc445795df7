// Package draft produces outreach email text. The batch jobs depend only on
// the Generator contract and must tolerate empty or partial output.
package draft

import "context"

type Draft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// InfluencerView is the slice of influencer data a generator may reference.
// Every field is optional; generators degrade to generic phrasing.
type InfluencerView struct {
	Handle      string
	DisplayName string
	Platform    string
	Bio         string
	ProfileURL  string
	Followers   *int
}

type Generator interface {
	Outreach(ctx context.Context, brand map[string]any, inf InfluencerView, offer map[string]any) (Draft, error)
	Followup(ctx context.Context, brand map[string]any, inf InfluencerView, offer map[string]any) (Draft, error)
}

func strField(m map[string]any, key, def string) string {
	if m == nil {
		return def
	}
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return def
}
