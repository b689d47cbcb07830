// Package facerec delegates face recognition to an external service. The
// application never computes embeddings itself; it only stores the opaque
// vectors the recognizer returns and compares them by euclidean distance.
package facerec

import (
	"context"
	"errors"
	"math"
)

// DefaultTolerance is the distance threshold under which two encodings are
// considered the same person. Matches the recognizer's recommended default.
const DefaultTolerance = 0.6

// ErrNoFace is returned when the recognizer finds no face in an image.
var ErrNoFace = errors.New("no face detected")

// Encoding is a fixed-length numeric vector representing one detected face.
type Encoding []float64

// Encoder extracts face encodings from an image. Implementations call an
// external recognition service.
type Encoder interface {
	// Encode returns one encoding per detected face, in detection order.
	// Returns ErrNoFace when the image contains no detectable face.
	Encode(ctx context.Context, image []byte) ([]Encoding, error)
}

// Candidate pairs an owner ID with one of their stored encodings.
type Candidate struct {
	ID       string
	Encoding Encoding
}

// Distance returns the euclidean distance between two encodings. Encodings
// of different lengths never match.
func Distance(a, b Encoding) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Match returns the ID of the closest candidate within tolerance, or
// ("", false) when no candidate is close enough.
func Match(query Encoding, candidates []Candidate, tolerance float64) (string, bool) {
	bestID := ""
	best := math.Inf(1)
	for _, c := range candidates {
		if d := Distance(query, c.Encoding); d < best {
			best = d
			bestID = c.ID
		}
	}
	if best <= tolerance {
		return bestID, true
	}
	return "", false
}
