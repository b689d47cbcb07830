package facerec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPEncoder calls a face-recognition sidecar over HTTP. The sidecar
// accepts a raw image body on POST /encodings and responds with
// {"encodings": [[...], ...]} — one vector per detected face.
type HTTPEncoder struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEncoder creates an encoder talking to the recognizer at baseURL
func NewHTTPEncoder(baseURL string) *HTTPEncoder {
	return &HTTPEncoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type encodeResponse struct {
	Encodings []Encoding `json:"encodings"`
}

// Encode sends the image to the recognizer and returns the detected face
// encodings. ErrNoFace is returned when the image contains no face.
func (e *HTTPEncoder) Encode(ctx context.Context, image []byte) ([]Encoding, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/encodings", bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("failed to create recognizer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recognizer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("recognizer returned %d: %s", resp.StatusCode, body)
	}

	var decoded encodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode recognizer response: %w", err)
	}

	if len(decoded.Encodings) == 0 {
		return nil, ErrNoFace
	}

	return decoded.Encodings, nil
}
