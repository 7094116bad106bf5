package llm

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/cookbase/dishindex/pkg/dishindex/corpus"
)

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

func chatBody(content string) string {
	// Assemble a chat completion envelope whose message content is the
	// given JSON string.
	escaped := strings.ReplaceAll(content, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	return `{"choices":[{"message":{"role":"assistant","content":"` + escaped + `"}}]}`
}

func testClient(t *testing.T, respond func(req *http.Request) string) *Client {
	t.Helper()
	return &Client{
		BaseURL: "https://api.test/v1/chat/completions",
		Model:   "gpt-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				return &http.Response{
					StatusCode: 200,
					Body:       io.NopCloser(strings.NewReader(respond(req))),
					Header:     make(http.Header),
				}
			}),
		},
	}
}

func TestExtractBatchSuccess(t *testing.T) {
	client := testClient(t, func(req *http.Request) string {
		body, _ := io.ReadAll(req.Body)
		if !strings.Contains(string(body), "Korean Fried Chicken") {
			t.Fatalf("expected titles in payload")
		}
		return chatBody(`{"extractions":[{"video_id":"v1","original_title":"Korean Fried Chicken",` +
			`"dish_name":"Korean Fried Chicken","dish_category":"fried-chicken",` +
			`"regional_style":"Korean","confidence":"high"}]}`)
	})

	out, err := client.ExtractBatch(context.Background(), []corpus.RecipeTitleRecord{
		{VideoID: "v1", Title: "Korean Fried Chicken"},
	})
	if err != nil {
		t.Fatalf("ExtractBatch: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 extraction, got %d", len(out))
	}
	if out[0].DishCategory != "fried-chicken" || out[0].RegionalStyle != "Korean" {
		t.Fatalf("unexpected extraction: %+v", out[0])
	}
}

func TestExtractBatchFencedResponse(t *testing.T) {
	client := testClient(t, func(req *http.Request) string {
		return chatBody("```json\n{\"extractions\":[{\"video_id\":\"v1\",\"dish_name\":\"Ramen\",\"dish_category\":\"ramen\"}]}\n```")
	})

	out, err := client.ExtractBatch(context.Background(), []corpus.RecipeTitleRecord{
		{VideoID: "v1", Title: "Ramen"},
	})
	if err != nil {
		t.Fatalf("ExtractBatch: %v", err)
	}
	if len(out) != 1 || out[0].DishName != "Ramen" {
		t.Fatalf("unexpected extractions: %+v", out)
	}
}

func TestExtractBatchNonJSON(t *testing.T) {
	client := testClient(t, func(req *http.Request) string {
		return chatBody("Sorry, I cannot help with that.")
	})

	if _, err := client.ExtractBatch(context.Background(), []corpus.RecipeTitleRecord{
		{VideoID: "v1", Title: "Ramen"},
	}); err == nil {
		t.Fatal("expected error for non-JSON content")
	}
}

func TestExtractBatchAPIError(t *testing.T) {
	client := testClient(t, func(req *http.Request) string {
		return `{"error":{"message":"rate limited"}}`
	})

	if _, err := client.ExtractBatch(context.Background(), []corpus.RecipeTitleRecord{
		{VideoID: "v1", Title: "Ramen"},
	}); err == nil {
		t.Fatal("expected error")
	}
}

func TestExtractBatchRequiresConfig(t *testing.T) {
	client := &Client{}
	if _, err := client.ExtractBatch(context.Background(), nil); err == nil {
		t.Fatal("expected error without base URL and model")
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripFences(tc.in); got != tc.want {
			t.Errorf("stripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
