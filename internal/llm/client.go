// Package llm implements the extraction classifier against an
// OpenAI-compatible chat completion endpoint.
package llm

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/cookbase/dishindex/pkg/dishindex/corpus"
	"github.com/cookbase/dishindex/pkg/dishindex/extract"
)

const systemPrompt = `You are a culinary taxonomist. For each recipe title you receive,
extract the dish it describes. Reply with JSON only:
{"extractions": [{"video_id": "...", "original_title": "...", "dish_name": "...",
"dish_category": "...", "regional_style": "...", "is_technique_focused": false,
"confidence": "high"}]}
Rules: dish_category is a lowercase hyphenated slug. dish_name omits superlatives,
time prefixes ("15-minute"), and channel branding. regional_style is the regional or
stylistic qualifier ("Korean", "Nashville") or omitted when there is none.
confidence is one of high, medium, low. Return one extraction per input title.`

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string

	HTTPClient *http.Client
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type extractionPayload struct {
	Extractions []extract.DishExtraction `json:"extractions"`
}

// ExtractBatch implements extract.Classifier. A response that does not
// parse as the expected schema is a hard batch failure.
func (c *Client) ExtractBatch(ctx context.Context, records []corpus.RecipeTitleRecord) ([]extract.DishExtraction, error) {
	content, err := c.chat(ctx, systemPrompt, formatBatch(records))
	if err != nil {
		return nil, err
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(stripFences(content)), &payload); err != nil {
		return nil, fmt.Errorf("llm: response is not extraction JSON: %w", err)
	}
	if payload.Extractions == nil {
		return nil, fmt.Errorf("llm: response missing extractions array")
	}
	return payload.Extractions, nil
}

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	if c.BaseURL == "" || c.Model == "" {
		return "", fmt.Errorf("llm: base URL and model required")
	}
	messages := []chatMessage{{Role: "system", Content: system}, {Role: "user", Content: user}}
	payload, err := c.send(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response")
	}
	return payload.Choices[0].Message.Content, nil
}

func (c *Client) send(ctx context.Context, messages []chatMessage) (*chatResponse, error) {
	reqBody, err := json.Marshal(chatRequest{Model: c.Model, Messages: messages})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("llm: http %d", resp.StatusCode)
	}
	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("llm error: %s", payload.Error.Message)
	}
	return &payload, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func formatBatch(records []corpus.RecipeTitleRecord) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Titles:\n")
	for _, r := range records {
		fmt.Fprintf(&buf, "- video_id: %s title: %s\n", r.VideoID, r.Title)
	}
	return buf.String()
}

// stripFences unwraps a fenced code block if the model returned one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
