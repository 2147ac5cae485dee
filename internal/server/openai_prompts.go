package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const openAIChatURL = "https://api.openai.com/v1/chat/completions"

const promptSystemMessage = "You write single drawing prompts for a party game. " +
	"Reply with exactly one prompt of roughly 8 to 16 words describing a visual, comedic scene. " +
	"No numbering, no quotes, no commentary."

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// generatePrompt asks the OpenAI chat API for one drawing prompt. Callers
// must wrap it with the static fallback; it errors on any upstream failure
// or a degenerate result.
func (s *Server) generatePrompt(ctx context.Context, familyFriendly bool) (string, error) {
	if strings.TrimSpace(s.cfg.OpenAIAPIKey) == "" {
		return "", errors.New("OpenAI API key is not configured")
	}

	tone := "Edgy adult humor is welcome, but nothing hateful or explicit."
	if familyFriendly {
		tone = "Keep it family friendly and safe for all ages."
	}
	reqBody := openAIChatRequest{
		Model: s.cfg.OpenAIModel,
		Messages: []openAIChatMessage{
			{Role: "system", Content: promptSystemMessage},
			{Role: "user", Content: "Give me one drawing prompt. " + tone},
		},
		Temperature: 0.9,
		MaxTokens:   60,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to build OpenAI request")
	}

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, openAIChatURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build OpenAI request")
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(s.cfg.OpenAIAPIKey))
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach OpenAI")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read OpenAI response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("OpenAI request failed (%d)", resp.StatusCode)
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse OpenAI response")
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", fmt.Errorf("OpenAI error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("OpenAI returned no choices")
	}
	return sanitizePrompt(parsed.Choices[0].Message.Content)
}

// sanitizePrompt strips surrounding quotes, collapses internal whitespace
// and rejects degenerate results.
func sanitizePrompt(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'“”‘’")
	fields := strings.Fields(clean)
	clean = strings.Join(fields, " ")
	if clean == "" {
		return "", errors.New("generated prompt is empty")
	}
	if len(fields) < 3 {
		return "", errors.New("generated prompt is too short")
	}
	return clean, nil
}
