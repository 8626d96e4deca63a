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

	"dreamlens/internal/journal"
	"dreamlens/internal/logging"
)

// ProxyClient implements Client against the subscription proxy daemon. The
// daemon holds the backend credential and forces the subscriber model, so
// token and cost accounting stay zero on this path.
type ProxyClient struct {
	baseURL      string
	sessionToken string
	httpClient   *http.Client
}

// NewProxyClient creates a proxy adapter authenticated by a session token.
func NewProxyClient(baseURL, sessionToken string) *ProxyClient {
	return &ProxyClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		sessionToken: sessionToken,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// ProxyPayload is the interpret request body on the proxy wire.
type ProxyPayload struct {
	EntryBody           string                  `json:"entryBody"`
	EntryTitle          string                  `json:"entryTitle,omitempty"`
	Tags                []journal.Tag           `json:"tags"`
	Lens                journal.LensID          `json:"lens"`
	ConversationHistory []journal.Message       `json:"conversationHistory,omitempty"`
	PersonalSymbols     []journal.SymbolMeaning `json:"personalSymbols,omitempty"`
}

// ProxyFrame is one SSE data frame on the proxy wire. Exactly one of
// Content, Done or Error is meaningful per frame.
type ProxyFrame struct {
	Content string `json:"content,omitempty"`
	Done    bool   `json:"done,omitempty"`
	Model   string `json:"model,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (c *ProxyClient) payload(req *Request) *ProxyPayload {
	tags := req.Tags
	if tags == nil {
		tags = []journal.Tag{}
	}
	return &ProxyPayload{
		EntryBody:           req.EntryBody,
		EntryTitle:          req.EntryTitle,
		Tags:                tags,
		Lens:                req.Lens,
		ConversationHistory: req.ConversationHistory,
		PersonalSymbols:     req.PersonalSymbols,
	}
}

func (c *ProxyClient) doRequest(ctx context.Context, req *Request) (*http.Response, error) {
	if c.sessionToken == "" {
		return nil, fmt.Errorf("session token not configured")
	}

	jsonData, err := json.Marshal(c.payload(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/interpret", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.sessionToken)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("proxy request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return resp, nil
}

// Interpret runs one non-streaming turn by draining the stream.
func (c *ProxyClient) Interpret(ctx context.Context, req *Request) (*Response, error) {
	stream := c.InterpretStream(ctx, req)
	for range stream.Fragments {
	}
	res := <-stream.Result
	return res.Response, res.Err
}

// InterpretStream runs one streaming turn through the proxy. Marker
// extraction and cleaning happen locally after the stream ends; the daemon
// sends raw deltas.
func (c *ProxyClient) InterpretStream(ctx context.Context, req *Request) *Stream {
	fragments := make(chan string, 100)
	result := make(chan StreamResult, 1)

	go func() {
		defer close(fragments)

		start := time.Now()
		logging.Proxy("[Proxy] InterpretStream: lens=%s follow_up=%v", req.Lens, req.IsFollowUp())

		resp, err := c.doRequest(ctx, req)
		if err != nil {
			result <- StreamResult{Err: err}
			return
		}
		defer resp.Body.Close()

		var full strings.Builder
		model := journal.SubscriberModel
		err = scanSSE(ctx, resp.Body, func(data string) (bool, error) {
			var frame ProxyFrame
			if err := json.Unmarshal([]byte(data), &frame); err != nil {
				return false, nil
			}
			if frame.Error != "" {
				return false, fmt.Errorf("proxy error: %s", frame.Error)
			}
			if frame.Done {
				if frame.Model != "" {
					model = frame.Model
				}
				return true, nil
			}
			if frame.Content != "" {
				full.WriteString(frame.Content)
				select {
				case fragments <- frame.Content:
				case <-ctx.Done():
					return false, ctx.Err()
				}
			}
			return false, nil
		})
		if err != nil {
			logging.Get(logging.CategoryProxy).Error("[Proxy] InterpretStream: %v", err)
			result <- StreamResult{Err: err}
			return
		}

		raw := full.String()
		logging.Proxy("[Proxy] InterpretStream: completed in %v model=%s", time.Since(start), model)
		// Subscribers are not metered locally.
		result <- StreamResult{Response: &Response{
			Content:            CleanContent(raw),
			SuggestedFollowUps: ExtractSuggestedFollowUps(raw),
			IdentifiedSymbols:  ExtractIdentifiedSymbols(raw),
		}}
	}()

	return &Stream{Fragments: fragments, Result: result}
}
