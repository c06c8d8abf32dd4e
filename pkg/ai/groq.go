package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/johnquangdev/meeting-processor/pkg/config"
)

const (
	summarizeSystemPrompt = "Summarize the meeting in 1-2 sentences. Be direct and concise."

	extractSystemPrompt = `You are a JSON extraction assistant. Your ONLY job is to extract tasks and return valid JSON.

RULES:
1. Output ONLY valid JSON - no explanations, no markdown, no text before or after
2. Every response must start with { and end with }
3. Use this exact format: {"tasks": [{"title": "task description", "assignee": "person name", "due_date": "YYYY-MM-DD"}]}
4. If no clear assignee, use null
5. If a relative due date is mentioned ("by Friday", "next week"), copy the phrase as due_date
6. If no due date mentioned, use null
7. If no tasks found, return: {"tasks": []}
8. Look for action words like: will, should, needs to, assigned to, responsible for`
)

// GroqClient is a minimal client for Groq chat completions. It implements the
// pipeline's Summarizer and TaskExtractor.
type GroqClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewGroqClient creates a Groq client using values from the provided config
func NewGroqClient(cfg config.GroqConfig) *GroqClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.groq.com"
	}
	model := cfg.Model
	if model == "" {
		model = "llama-3.1-8b-instant"
	}
	return &GroqClient{
		apiKey:  cfg.APIKey,
		baseURL: base,
		model:   model,
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

// ChatMessage is one message of a chat completion request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model          string            `json:"model,omitempty"`
	Messages       []ChatMessage     `json:"messages,omitempty"`
	Temperature    float64           `json:"temperature,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Summarize returns a short summary of the transcript
func (g *GroqClient) Summarize(ctx context.Context, transcript string) (string, error) {
	content, err := g.complete(ctx, ChatRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: summarizeSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Transcript:\n%s\n\nSummary:", transcript)},
		},
		Temperature: 0.2,
		MaxTokens:   512,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// ExtractTasks asks the model for action items and returns its raw output.
// The output is not validated here.
func (g *GroqClient) ExtractTasks(ctx context.Context, transcript, summary string) (string, error) {
	var user strings.Builder
	if summary != "" {
		user.WriteString("Meeting summary:\n")
		user.WriteString(summary)
		user.WriteString("\n\n")
	}
	user.WriteString("Extract all tasks/action items from this transcript and return ONLY JSON:\n\n")
	user.WriteString(transcript)
	user.WriteString("\n\nRespond with JSON only:")

	return g.complete(ctx, ChatRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: extractSystemPrompt},
			{Role: "user", Content: user.String()},
		},
		Temperature:    0.1,
		MaxTokens:      2048,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
}

func (g *GroqClient) complete(ctx context.Context, reqBody ChatRequest) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("groq api key not configured")
	}
	reqBody.Model = g.model

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := g.baseURL + "/openai/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("groq returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode groq response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty response from groq")
	}
	return cr.Choices[0].Message.Content, nil
}
