package provider

import (
	"bufio"
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

// OpenAIClient implements Client against the OpenAI chat completions API.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIClient creates an OpenAI adapter.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: "https://api.openai.com/v1",
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Stream      bool            `json:"stream,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message *openAIMessage `json:"message,omitempty"`
		Delta   *openAIMessage `json:"delta,omitempty"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) buildBody(req *Request, stream bool) (*openAIRequest, string, string, error) {
	systemPrompt, history, userMessage, err := buildPrompt(req)
	if err != nil {
		return nil, "", "", err
	}
	messages := []openAIMessage{{Role: "system", Content: systemPrompt}}
	for _, m := range history {
		messages = append(messages, openAIMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: userMessage})

	return &openAIRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   2000,
		Temperature: 0.7,
		Stream:      stream,
	}, systemPrompt, userMessage, nil
}

func (c *OpenAIClient) doRequest(ctx context.Context, body *openAIRequest, accept string) (*http.Response, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}

	// Retry loop for rate limits
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
		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		if accept != "" {
			req.Header.Set("Accept", accept)
		}

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
func (c *OpenAIClient) Interpret(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	body, systemPrompt, userMessage, err := c.buildBody(req, false)
	if err != nil {
		return nil, err
	}
	logging.ProviderDebug("[OpenAI] Interpret: model=%s follow_up=%v", req.Model, req.IsFollowUp())

	resp, err := c.doRequest(ctx, body, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	var parsed openAIResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message == nil {
		return nil, fmt.Errorf("no completion returned")
	}

	var inTok, outTok int
	if parsed.Usage != nil {
		inTok = parsed.Usage.PromptTokens
		outTok = parsed.Usage.CompletionTokens
	}
	logging.Provider("[OpenAI] Interpret: completed in %v", time.Since(start))
	return buildResponse(req.Model, systemPrompt, userMessage, parsed.Choices[0].Message.Content, inTok, outTok), nil
}

// InterpretStream runs one streaming interpretation turn.
func (c *OpenAIClient) InterpretStream(ctx context.Context, req *Request) *Stream {
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
		logging.ProviderDebug("[OpenAI] InterpretStream: model=%s follow_up=%v", req.Model, req.IsFollowUp())

		resp, err := c.doRequest(ctx, body, "text/event-stream")
		if err != nil {
			result <- StreamResult{Err: err}
			return
		}
		defer resp.Body.Close()

		var full strings.Builder
		err = scanSSE(ctx, resp.Body, func(data string) (bool, error) {
			if data == "[DONE]" {
				return true, nil
			}
			var chunk openAIResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				return false, nil
			}
			if chunk.Error != nil {
				return false, fmt.Errorf("API error: %s", chunk.Error.Message)
			}
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta != nil {
				delta := chunk.Choices[0].Delta.Content
				if delta != "" {
					full.WriteString(delta)
					select {
					case fragments <- delta:
					case <-ctx.Done():
						return false, ctx.Err()
					}
				}
			}
			return false, nil
		})
		if err != nil {
			logging.Get(logging.CategoryProvider).Error("[OpenAI] InterpretStream: %v", err)
			result <- StreamResult{Err: err}
			return
		}

		logging.Provider("[OpenAI] InterpretStream: completed in %v", time.Since(start))
		result <- StreamResult{Response: buildResponse(req.Model, systemPrompt, userMessage, full.String(), 0, 0)}
	}()

	return &Stream{Fragments: fragments, Result: result}
}

// scanSSE reads `data:` frames from an event stream body, handing each
// payload to fn. fn returns done=true on the terminal frame. Returns the
// first error from fn or the scanner.
func scanSSE(ctx context.Context, body io.Reader, fn func(data string) (done bool, err error)) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		done, err := fn(data)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream error: %w", err)
	}
	return nil
}
