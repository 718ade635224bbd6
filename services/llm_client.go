package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ChatClient is the external scoring provider. The engine only ever needs a
// structured JSON completion; keeping the surface this small lets tests swap
// in a fake without any network.
type ChatClient interface {
	CompleteJSON(ctx context.Context, system, user string) ([]byte, error)
	Model() string
}

// OpenAIClient calls the chat-completions endpoint in JSON-object mode with
// low temperature, so responses stay small and run-to-run variance stays low.
type OpenAIClient struct {
	client  *http.Client
	apiKey  string
	baseURL string
	model   string
}

func NewOpenAIClient() *OpenAIClient {
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIClient{
		client:  &http.Client{Timeout: 15 * time.Second},
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

func (c *OpenAIClient) Model() string { return c.model }

func (c *OpenAIClient) CompleteJSON(ctx context.Context, system, user string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"response_format": map[string]string{"type": "json_object"},
		"temperature":     0.1,
		"max_tokens":      1500,
	}
	b, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build openai request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request error: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openai response error: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(respBytes, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("openai api error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("openai api error (%d): %s", resp.StatusCode, string(respBytes))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &out); err != nil {
		preview := string(respBytes)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return nil, fmt.Errorf("decode openai response error: %v | body: %s", err, preview)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("empty completion from openai")
	}
	return []byte(out.Choices[0].Message.Content), nil
}
