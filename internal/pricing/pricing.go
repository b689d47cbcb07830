// Package pricing defines the static subscription tiers and their quotas.
package pricing

import "fmt"

// Unlimited marks a quota with no cap.
const Unlimited = -1

// Tier describes one subscription plan.
type Tier struct {
	Name                 string
	PriceUSD             int
	MaxChildren          int
	PhotosPerMonth       int
	AIQueriesPerDay      int
	VoiceMinutesPerMonth int
	Features             []string
}

// Feature names gated by tier.
const (
	FeatureEmail             = "email"
	FeatureSMS               = "sms"
	FeatureVoice             = "voice"
	FeatureBasicAnalytics    = "basic_analytics"
	FeatureAdvancedAnalytics = "advanced_analytics"
	FeaturePrioritySupport   = "priority_support"
	FeatureCustomBranding    = "custom_branding"
)

var tiers = map[string]Tier{
	"free": {
		Name:                 "free",
		PriceUSD:             0,
		MaxChildren:          50,
		PhotosPerMonth:       100,
		AIQueriesPerDay:      20,
		VoiceMinutesPerMonth: 0,
		Features:             []string{FeatureEmail, FeatureBasicAnalytics},
	},
	"starter": {
		Name:                 "starter",
		PriceUSD:             29,
		MaxChildren:          100,
		PhotosPerMonth:       500,
		AIQueriesPerDay:      100,
		VoiceMinutesPerMonth: 10,
		Features:             []string{FeatureEmail, FeatureSMS, FeatureVoice, FeatureAdvancedAnalytics},
	},
	"professional": {
		Name:                 "professional",
		PriceUSD:             99,
		MaxChildren:          Unlimited,
		PhotosPerMonth:       Unlimited,
		AIQueriesPerDay:      Unlimited,
		VoiceMinutesPerMonth: 60,
		Features:             []string{"all", FeaturePrioritySupport, FeatureCustomBranding},
	},
}

// DefaultTier is the plan new organizations start on.
const DefaultTier = "free"

// Get returns the tier by name, or an error for unknown names.
func Get(name string) (Tier, error) {
	tier, ok := tiers[name]
	if !ok {
		return Tier{}, fmt.Errorf("unknown pricing tier: %s", name)
	}
	return tier, nil
}

// Names returns the tier names in ascending price order.
func Names() []string {
	return []string{"free", "starter", "professional"}
}

// All returns the tiers in ascending price order.
func All() []Tier {
	out := make([]Tier, 0, len(tiers))
	for _, name := range Names() {
		out = append(out, tiers[name])
	}
	return out
}

// Allows reports whether the tier includes the named feature.
func (t Tier) Allows(feature string) bool {
	for _, f := range t.Features {
		if f == "all" || f == feature {
			return true
		}
	}
	return false
}

// WithinQuota reports whether used is within a quota limit. A limit of
// Unlimited always passes.
func WithinQuota(used, limit int) bool {
	if limit == Unlimited {
		return true
	}
	return used < limit
}
