package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	claudeBaseURL    = "https://api.anthropic.com/v1"
	claudeModel      = "claude-3-5-haiku-latest"
	claudeAPIVersion = "2023-06-01"
	claudeMaxTokens  = 1024
)

// ClaudeClient backs chat with the Anthropic Messages REST API.
type ClaudeClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClaudeClient creates a Claude-backed chat client.
func NewClaudeClient(apiKey string) *ClaudeClient {
	return &ClaudeClient{
		apiKey:     apiKey,
		baseURL:    claudeBaseURL,
		model:      claudeModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *ClaudeClient) Name() string { return "claude" }

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *ClaudeClient) Chat(ctx context.Context, messages []Message) (string, error) {
	reqBody := claudeRequest{
		Model:     c.model,
		MaxTokens: claudeMaxTokens,
	}
	for _, m := range messages {
		if m.Role == RoleSystem {
			reqBody.System = m.Content
			continue
		}
		reqBody.Messages = append(reqBody.Messages, claudeMessage{Role: m.Role, Content: m.Content})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("claude marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("claude request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", claudeAPIVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("claude chat: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("claude chat: status %d: %s", resp.StatusCode, body)
	}

	var parsed claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("claude decode: %w", err)
	}
	for _, block := range parsed.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("claude chat: empty response")
}

// StreamChat delivers the full reply as one chunk.
func (c *ClaudeClient) StreamChat(ctx context.Context, messages []Message, onChunk func(string) error) error {
	reply, err := c.Chat(ctx, messages)
	if err != nil {
		return err
	}
	return onChunk(reply)
}
