package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"daycaremoments/internal/service"
	"daycaremoments/internal/validation"
)

func decodeErrorBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	return body
}

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, 418, "Teapot", "", nil)

	if recorder.Code != 418 {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}
	if body := decodeErrorBody(t, recorder); body["error"] != "Teapot" {
		t.Fatalf("expected error 'Teapot', got %q", body["error"])
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	recorder := httptest.NewRecorder()
	err := errors.New("boom")

	respondWithError(recorder, 500, "Internal server error", "", err)

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Internal server error") {
		t.Fatalf("expected log to include user message, got %q", logOutput)
	}
	if !strings.Contains(logOutput, "boom") {
		t.Fatalf("expected log to include error, got %q", logOutput)
	}
}

func TestRespondServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "email taken", err: service.ErrEmailTaken, wantStatus: http.StatusConflict},
		{name: "bad credentials", err: service.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{name: "photo missing", err: service.ErrPhotoNotFound, wantStatus: http.StatusNotFound},
		{name: "photo too large", err: service.ErrPhotoTooLarge, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "photo quota", err: service.ErrPhotoQuotaReached, wantStatus: http.StatusForbidden},
		{name: "chat quota", err: service.ErrChatQuotaReached, wantStatus: http.StatusForbidden},
		{name: "child quota", err: service.ErrChildQuotaReached, wantStatus: http.StatusForbidden},
		{name: "feature disabled", err: service.ErrFeatureDisabled, wantStatus: http.StatusForbidden},
		{name: "wrapped sentinel", err: fmt.Errorf("context: %w", service.ErrEmailTaken), wantStatus: http.StatusConflict},
		{name: "unknown error", err: errors.New("database exploded"), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondServiceError(recorder, tt.err)
			if recorder.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}
		})
	}
}

func TestRespondServiceErrorValidation(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondServiceError(recorder, validation.ValidationError{Field: "email", Message: "Invalid email format"})

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", recorder.Code)
	}
	body := decodeErrorBody(t, recorder)
	if body["field"] != "email" {
		t.Errorf("field = %q, want %q", body["field"], "email")
	}
	if body["error"] != "Invalid email format" {
		t.Errorf("error = %q, want %q", body["error"], "Invalid email format")
	}
}

func TestRespondServiceErrorHidesInternalDetail(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondServiceError(recorder, errors.New("dial tcp 10.0.0.5: connection refused"))

	body := decodeErrorBody(t, recorder)
	if strings.Contains(body["error"], "10.0.0.5") {
		t.Fatalf("internal detail leaked to client: %q", body["error"])
	}
}
