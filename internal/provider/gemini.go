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

// GeminiClient implements Client against the Gemini REST API.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient creates a Gemini adapter.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		MaxOutputTokens int     `json:"maxOutputTokens"`
		Temperature     float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *GeminiClient) buildBody(req *Request) (*geminiRequest, string, string, error) {
	systemPrompt, history, userMessage, err := buildPrompt(req)
	if err != nil {
		return nil, "", "", err
	}

	body := &geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}},
	}
	for _, m := range history {
		role := m.Role
		if role == "assistant" {
			role = "model"
		}
		body.Contents = append(body.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	body.Contents = append(body.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: userMessage}}})
	body.GenerationConfig.MaxOutputTokens = 2000
	body.GenerationConfig.Temperature = 0.7
	return body, systemPrompt, userMessage, nil
}

func (c *GeminiClient) doRequest(ctx context.Context, model, method string, body *geminiRequest) (*http.Response, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}

	sep := "?"
	if strings.Contains(method, "?") {
		sep = "&"
	}
	url := fmt.Sprintf("%s/models/%s:%s%skey=%s", c.baseURL, model, method, sep, c.apiKey)

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
		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

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

func candidateText(r *geminiResponse) string {
	var b strings.Builder
	for _, cand := range r.Candidates {
		for _, part := range cand.Content.Parts {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// Interpret runs one non-streaming interpretation turn.
func (c *GeminiClient) Interpret(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	body, systemPrompt, userMessage, err := c.buildBody(req)
	if err != nil {
		return nil, err
	}
	logging.ProviderDebug("[Gemini] Interpret: model=%s follow_up=%v", req.Model, req.IsFollowUp())

	resp, err := c.doRequest(ctx, req.Model, "generateContent", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("API error: %s", parsed.Error.Message)
	}

	text := candidateText(&parsed)
	if text == "" {
		return nil, fmt.Errorf("no completion returned")
	}

	var inTok, outTok int
	if parsed.UsageMetadata != nil {
		inTok = parsed.UsageMetadata.PromptTokenCount
		outTok = parsed.UsageMetadata.CandidatesTokenCount
	}
	logging.Provider("[Gemini] Interpret: completed in %v", time.Since(start))
	return buildResponse(req.Model, systemPrompt, userMessage, text, inTok, outTok), nil
}

// InterpretStream runs one streaming interpretation turn.
func (c *GeminiClient) InterpretStream(ctx context.Context, req *Request) *Stream {
	fragments := make(chan string, 100)
	result := make(chan StreamResult, 1)

	go func() {
		defer close(fragments)

		start := time.Now()
		body, systemPrompt, userMessage, err := c.buildBody(req)
		if err != nil {
			result <- StreamResult{Err: err}
			return
		}
		logging.ProviderDebug("[Gemini] InterpretStream: model=%s follow_up=%v", req.Model, req.IsFollowUp())

		resp, err := c.doRequest(ctx, req.Model, "streamGenerateContent?alt=sse", body)
		if err != nil {
			result <- StreamResult{Err: err}
			return
		}
		defer resp.Body.Close()

		var full strings.Builder
		err = scanSSE(ctx, resp.Body, func(data string) (bool, error) {
			var chunk geminiResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				return false, nil
			}
			if chunk.Error != nil {
				return false, fmt.Errorf("API error: %s", chunk.Error.Message)
			}
			if delta := candidateText(&chunk); delta != "" {
				full.WriteString(delta)
				select {
				case fragments <- delta:
				case <-ctx.Done():
					return false, ctx.Err()
				}
			}
			return false, nil
		})
		if err != nil {
			logging.Get(logging.CategoryProvider).Error("[Gemini] InterpretStream: %v", err)
			result <- StreamResult{Err: err}
			return
		}

		logging.Provider("[Gemini] InterpretStream: completed in %v", time.Since(start))
		result <- StreamResult{Response: buildResponse(req.Model, systemPrompt, userMessage, full.String(), 0, 0)}
	}()

	return &Stream{Fragments: fragments, Result: result}
}
