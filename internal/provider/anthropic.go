package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dreamlens/internal/logging"
)

// AnthropicClient implements Client against the Anthropic messages API.
type AnthropicClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

const anthropicVersion = "2023-06-01"

// NewAnthropicClient creates an Anthropic adapter.
func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		apiKey:  apiKey,
		baseURL: "https://api.anthropic.com/v1",
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
	Stream      bool               `json:"stream,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// anthropicStreamEvent covers the event frames we care about; other event
// types are skipped.
type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta *struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicClient) buildBody(req *Request, stream bool) (*anthropicRequest, string, string, error) {
	systemPrompt, history, userMessage, err := buildPrompt(req)
	if err != nil {
		return nil, "", "", err
	}
	var messages []anthropicMessage
	for _, m := range history {
		messages = append(messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, anthropicMessage{Role: "user", Content: userMessage})

	return &anthropicRequest{
		Model:       req.Model,
		MaxTokens:   2000,
		System:      systemPrompt,
		Messages:    messages,
		Temperature: 0.7,
		Stream:      stream,
	}, systemPrompt, userMessage, nil
}

func (c *AnthropicClient) doRequest(ctx context.Context, body *anthropicRequest) (*http.Response, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}

	maxRetries := 3
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(1<<uint(attempt-1)) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/messages", bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("rate limit exceeded (429): %s", strings.TrimSpace(string(b)))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(b))
		}
		return resp, nil
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// Interpret runs one non-streaming interpretation turn.
func (c *AnthropicClient) Interpret(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	body, systemPrompt, userMessage, err := c.buildBody(req, false)
	if err != nil {
		return nil, err
	}
	logging.ProviderDebug("[Anthropic] Interpret: model=%s follow_up=%v", req.Model, req.IsFollowUp())

	resp, err := c.doRequest(ctx, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("API error: %s", parsed.Error.Message)
	}

	var full strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			full.WriteString(block.Text)
		}
	}
	if full.Len() == 0 {
		return nil, fmt.Errorf("no completion returned")
	}

	var inTok, outTok int
	if parsed.Usage != nil {
		inTok = parsed.Usage.InputTokens
		outTok = parsed.Usage.OutputTokens
	}
	logging.Provider("[Anthropic] Interpret: completed in %v", time.Since(start))
	return buildResponse(req.Model, systemPrompt, userMessage, full.String(), inTok, outTok), nil
}

// InterpretStream runs one streaming interpretation turn.
func (c *AnthropicClient) InterpretStream(ctx context.Context, req *Request) *Stream {
	fragments := make(chan string, 100)
	result := make(chan StreamResult, 1)

	go func() {
		defer close(fragments)

		start := time.Now()
		body, systemPrompt, userMessage, err := c.buildBody(req, true)
		if err != nil {
			result <- StreamResult{Err: err}
			return
		}
		logging.ProviderDebug("[Anthropic] InterpretStream: model=%s follow_up=%v", req.Model, req.IsFollowUp())

		resp, err := c.doRequest(ctx, body)
		if err != nil {
			result <- StreamResult{Err: err}
			return
		}
		defer resp.Body.Close()

		var full strings.Builder
		err = scanSSE(ctx, resp.Body, func(data string) (bool, error) {
			var event anthropicStreamEvent
			if err := json.Unmarshal([]byte(data), &event); err != nil {
				return false, nil
			}
			switch event.Type {
			case "content_block_delta":
				if event.Delta != nil && event.Delta.Text != "" {
					full.WriteString(event.Delta.Text)
					select {
					case fragments <- event.Delta.Text:
					case <-ctx.Done():
						return false, ctx.Err()
					}
				}
			case "message_stop":
				return true, nil
			case "error":
				if event.Error != nil {
					return false, fmt.Errorf("API error: %s", event.Error.Message)
				}
				return false, fmt.Errorf("API error")
			}
			return false, nil
		})
		if err != nil {
			logging.Get(logging.CategoryProvider).Error("[Anthropic] InterpretStream: %v", err)
			result <- StreamResult{Err: err}
			return
		}

		logging.Provider("[Anthropic] InterpretStream: completed in %v", time.Since(start))
		result <- StreamResult{Response: buildResponse(req.Model, systemPrompt, userMessage, full.String(), 0, 0)}
	}()

	return &Stream{Fragments: fragments, Result: result}
}
