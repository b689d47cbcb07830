package classifier

import (
	"testing"
	"time"
)

func TestActivity(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "lunch caption",
			text:     "lunch time",
			expected: "meal",
		},
		{
			name:     "nap from filename",
			text:     "IMG_2041_naptime.jpg",
			expected: "nap",
		},
		{
			name:     "art keyword",
			text:     "Emma loves painting today",
			expected: "art",
		},
		{
			name:     "learning keyword",
			text:     "reading corner",
			expected: "learning",
		},
		{
			name:     "outdoor keyword",
			text:     "walk in the park",
			expected: "outdoor",
		},
		{
			name:     "case insensitive",
			text:     "SNACK BREAK",
			expected: "meal",
		},
		{
			name:     "meal wins over nap by scan order",
			text:     "tired after lunch",
			expected: "meal",
		},
		{
			name:     "no keywords falls back",
			text:     "xyzzy",
			expected: DefaultActivity,
		},
		{
			name:     "empty string falls back",
			text:     "",
			expected: DefaultActivity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Activity(tt.text)
			if got != tt.expected {
				t.Errorf("Activity(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestActivityIsPure(t *testing.T) {
	// Same input, same output, across repeated runs
	for i := 0; i < 50; i++ {
		if got := Activity("no recognizable keywords here"); got != DefaultActivity {
			t.Fatalf("run %d: Activity() = %q, want %q", i, got, DefaultActivity)
		}
		if got := Activity("lunch time"); got != "meal" {
			t.Fatalf("run %d: Activity() = %q, want meal", i, got)
		}
	}
}

func TestMood(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"smiling at the camera", "happy"},
		{"a peaceful moment", "calm"},
		{"concentrating on blocks", "focused"},
		{"yawning before nap", "tired"},
		{"nothing recognizable", DefaultMood},
		{"", DefaultMood},
	}

	for _, tt := range tests {
		if got := Mood(tt.text); got != tt.expected {
			t.Errorf("Mood(%q) = %q, want %q", tt.text, got, tt.expected)
		}
	}
}

func TestActivityCategories(t *testing.T) {
	categories := ActivityCategories()
	if len(categories) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(categories))
	}
	if categories[0] != "meal" {
		t.Errorf("first category = %q, want meal", categories[0])
	}
}

func TestTimeOfDayActivity(t *testing.T) {
	tests := []struct {
		hour     int
		expected string
		ok       bool
	}{
		{9, "", false},
		{11, "meal", true},
		{12, "meal", true},
		{13, "nap", true},
		{14, "nap", true},
		{15, "", false},
		{20, "", false},
	}

	for _, tt := range tests {
		at := time.Date(2025, 6, 2, tt.hour, 30, 0, 0, time.UTC)
		got, ok := TimeOfDayActivity(at)
		if got != tt.expected || ok != tt.ok {
			t.Errorf("TimeOfDayActivity(%02d:30) = (%q, %v), want (%q, %v)", tt.hour, got, ok, tt.expected, tt.ok)
		}
	}
}
