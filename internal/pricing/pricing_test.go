package pricing

import "testing"

func TestGet(t *testing.T) {
	for _, name := range Names() {
		tier, err := Get(name)
		if err != nil {
			t.Errorf("Get(%q) error = %v", name, err)
		}
		if tier.Name != name {
			t.Errorf("Get(%q).Name = %q", name, tier.Name)
		}
	}

	if _, err := Get("platinum"); err == nil {
		t.Error("Get(platinum) = nil error, want error")
	}
	if _, err := Get(""); err == nil {
		t.Error("Get(\"\") = nil error, want error")
	}
}

func TestDefaultTierExists(t *testing.T) {
	if _, err := Get(DefaultTier); err != nil {
		t.Fatalf("default tier %q not defined: %v", DefaultTier, err)
	}
}

func TestAllows(t *testing.T) {
	tests := []struct {
		tier    string
		feature string
		want    bool
	}{
		{"free", FeatureEmail, true},
		{"free", FeatureSMS, false},
		{"free", FeatureVoice, false},
		{"starter", FeatureSMS, true},
		{"starter", FeatureVoice, true},
		{"starter", FeatureCustomBranding, false},
		{"professional", FeatureVoice, true},
		{"professional", FeatureSMS, true},
		{"professional", FeatureCustomBranding, true},
	}

	for _, tt := range tests {
		t.Run(tt.tier+"/"+tt.feature, func(t *testing.T) {
			tier, err := Get(tt.tier)
			if err != nil {
				t.Fatalf("Get(%q): %v", tt.tier, err)
			}
			if got := tier.Allows(tt.feature); got != tt.want {
				t.Errorf("Allows(%q) = %v, want %v", tt.feature, got, tt.want)
			}
		})
	}
}

func TestWithinQuota(t *testing.T) {
	tests := []struct {
		name  string
		used  int
		limit int
		want  bool
	}{
		{"under limit", 5, 10, true},
		{"at limit", 10, 10, false},
		{"over limit", 11, 10, false},
		{"zero limit blocks everything", 0, 0, false},
		{"unlimited", 1000000, Unlimited, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinQuota(tt.used, tt.limit); got != tt.want {
				t.Errorf("WithinQuota(%d, %d) = %v, want %v", tt.used, tt.limit, got, tt.want)
			}
		})
	}
}

func TestTiersAreOrderedByPrice(t *testing.T) {
	all := All()
	if len(all) != 3 {
		t.Fatalf("len(All()) = %d, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].PriceUSD <= all[i-1].PriceUSD {
			t.Errorf("tier %q priced %d not above %q at %d",
				all[i].Name, all[i].PriceUSD, all[i-1].Name, all[i-1].PriceUSD)
		}
	}
}
