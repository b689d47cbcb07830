package facerec

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Encoding
		expected float64
	}{
		{
			name:     "identical vectors",
			a:        Encoding{1, 2, 3},
			b:        Encoding{1, 2, 3},
			expected: 0,
		},
		{
			name:     "unit apart",
			a:        Encoding{0, 0},
			b:        Encoding{1, 0},
			expected: 1,
		},
		{
			name:     "3-4-5 triangle",
			a:        Encoding{0, 0},
			b:        Encoding{3, 4},
			expected: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Distance() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDistanceMismatchedLengths(t *testing.T) {
	if d := Distance(Encoding{1, 2}, Encoding{1, 2, 3}); !math.IsInf(d, 1) {
		t.Errorf("Distance() for mismatched lengths = %v, want +Inf", d)
	}
	if d := Distance(Encoding{}, Encoding{}); !math.IsInf(d, 1) {
		t.Errorf("Distance() for empty encodings = %v, want +Inf", d)
	}
}

func TestMatch(t *testing.T) {
	candidates := []Candidate{
		{ID: "emma", Encoding: Encoding{0, 0, 0}},
		{ID: "liam", Encoding: Encoding{1, 1, 1}},
	}

	tests := []struct {
		name      string
		query     Encoding
		tolerance float64
		wantID    string
		wantOK    bool
	}{
		{
			name:      "exact match",
			query:     Encoding{0, 0, 0},
			tolerance: 0.6,
			wantID:    "emma",
			wantOK:    true,
		},
		{
			name:      "closest under tolerance",
			query:     Encoding{0.9, 1.0, 1.1},
			tolerance: 0.6,
			wantID:    "liam",
			wantOK:    true,
		},
		{
			name:      "nothing under tolerance",
			query:     Encoding{10, 10, 10},
			tolerance: 0.6,
			wantOK:    false,
		},
		{
			name:      "no candidates",
			query:     Encoding{0, 0, 0},
			tolerance: 0.6,
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cands := candidates
			if tt.name == "no candidates" {
				cands = nil
			}
			id, ok := Match(tt.query, cands, tt.tolerance)
			if ok != tt.wantOK {
				t.Fatalf("Match() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && id != tt.wantID {
				t.Errorf("Match() id = %q, want %q", id, tt.wantID)
			}
		})
	}
}

func TestHTTPEncoder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/encodings" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"encodings": [[0.1, 0.2], [0.3, 0.4]]}`))
	}))
	defer server.Close()

	encoder := NewHTTPEncoder(server.URL)
	encodings, err := encoder.Encode(context.Background(), []byte("fake-image"))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if len(encodings) != 2 {
		t.Fatalf("expected 2 encodings, got %d", len(encodings))
	}
	if encodings[0][0] != 0.1 || encodings[1][1] != 0.4 {
		t.Errorf("unexpected encodings: %v", encodings)
	}
}

func TestHTTPEncoderNoFace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"encodings": []}`))
	}))
	defer server.Close()

	encoder := NewHTTPEncoder(server.URL)
	_, err := encoder.Encode(context.Background(), []byte("fake-image"))
	if !errors.Is(err, ErrNoFace) {
		t.Errorf("Encode() error = %v, want ErrNoFace", err)
	}
}

func TestHTTPEncoderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	encoder := NewHTTPEncoder(server.URL)
	if _, err := encoder.Encode(context.Background(), []byte("fake-image")); err == nil {
		t.Error("expected error for recognizer 500")
	}
}
