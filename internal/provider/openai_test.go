package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"dreamlens/internal/journal"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sseHandler(t *testing.T, frames []string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, f := range frames {
			fmt.Fprintf(w, "data: %s\n\n", f)
			flusher.Flush()
		}
	}
}

func collect(t *testing.T, stream *Stream) (string, StreamResult) {
	t.Helper()
	var full string
	for frag := range stream.Fragments {
		full += frag
	}
	select {
	case res := <-stream.Result:
		return full, res
	case <-time.After(5 * time.Second):
		t.Fatal("stream result never delivered")
		return "", StreamResult{}
	}
}

func TestOpenAIInterpretStream(t *testing.T) {
	frames := []string{
		`{"choices":[{"delta":{"content":"Hello "}}]}`,
		`{"choices":[{"delta":{"content":"world"}}]}`,
		`[DONE]`,
	}
	srv := httptest.NewServer(sseHandler(t, frames))
	defer srv.Close()

	client := NewOpenAIClient("test-key")
	client.baseURL = srv.URL

	req := &Request{Lens: journal.LensJung, Model: "gpt-4o-mini", EntryBody: "A dream."}
	full, res := collect(t, client.InterpretStream(context.Background(), req))

	assert.Equal(t, "Hello world", full)
	require.NoError(t, res.Err)
	require.NotNil(t, res.Response)
	assert.Equal(t, "Hello world", res.Response.Content)
	assert.Equal(t, journal.EstimateTokens("Hello world"), res.Response.TokenCount.Output)
	assert.Greater(t, res.Response.TokenCount.Input, 0)
	assert.Greater(t, res.Response.CostUSD, 0.0)
	assert.Empty(t, res.Response.SuggestedFollowUps)
}

func TestOpenAIInterpretStreamExtractsMarkers(t *testing.T) {
	frames := []string{
		`{"choices":[{"delta":{"content":"The [SYMBOL]ocean[/SYMBOL] is deep.\n"}}]}`,
		`{"choices":[{"delta":{"content":"[FOLLOW_UP]Why the ocean?[/FOLLOW_UP]"}}]}`,
		`[DONE]`,
	}
	srv := httptest.NewServer(sseHandler(t, frames))
	defer srv.Close()

	client := NewOpenAIClient("test-key")
	client.baseURL = srv.URL

	req := &Request{Lens: journal.LensJung, Model: "gpt-4o-mini", EntryBody: "A dream."}
	_, res := collect(t, client.InterpretStream(context.Background(), req))

	require.NoError(t, res.Err)
	assert.Equal(t, "The ocean is deep.", res.Response.Content)
	assert.Equal(t, []string{"Why the ocean?"}, res.Response.SuggestedFollowUps)
	assert.Equal(t, []string{"ocean"}, res.Response.IdentifiedSymbols)
}

func TestOpenAIInterpretStreamAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad request"}}`)
	}))
	defer srv.Close()

	client := NewOpenAIClient("test-key")
	client.baseURL = srv.URL

	req := &Request{Lens: journal.LensJung, Model: "gpt-4o-mini", EntryBody: "A dream."}
	full, res := collect(t, client.InterpretStream(context.Background(), req))

	assert.Empty(t, full)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "status 400")
}

func TestOpenAIInterpretStreamMissingKey(t *testing.T) {
	client := NewOpenAIClient("")
	req := &Request{Lens: journal.LensJung, Model: "gpt-4o-mini", EntryBody: "A dream."}
	_, res := collect(t, client.InterpretStream(context.Background(), req))
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "API key not configured")
}

func TestOpenAIInterpretStreamAbandoned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewOpenAIClient("test-key")
	client.baseURL = srv.URL

	ctx, cancel := context.WithCancel(context.Background())
	req := &Request{Lens: journal.LensJung, Model: "gpt-4o-mini", EntryBody: "A dream."}
	stream := client.InterpretStream(ctx, req)

	frag := <-stream.Fragments
	assert.Equal(t, "partial", frag)

	// Cancelling the context unblocks the producing goroutine; goleak in
	// TestMain verifies nothing is left behind.
	cancel()
	_, res := collect(t, stream)
	require.Error(t, res.Err)
}

func TestOpenAIInterpret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"choices":[{"message":{"role":"assistant","content":"An interpretation."}}],
			"usage":{"prompt_tokens":120,"completion_tokens":40}
		}`)
	}))
	defer srv.Close()

	client := NewOpenAIClient("test-key")
	client.baseURL = srv.URL

	req := &Request{Lens: journal.LensJung, Model: "gpt-4o-mini", EntryBody: "A dream."}
	resp, err := client.Interpret(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "An interpretation.", resp.Content)
	assert.Equal(t, TokenCount{Input: 120, Output: 40}, resp.TokenCount)
	assert.InDelta(t, journal.CalculateCost("gpt-4o-mini", 120, 40), resp.CostUSD, 1e-12)
}

func TestFactory(t *testing.T) {
	for _, p := range []journal.ProviderID{journal.ProviderOpenAI, journal.ProviderAnthropic, journal.ProviderGoogle} {
		c, err := NewClient(p, "key")
		require.NoError(t, err)
		assert.NotNil(t, c)
	}
	_, err := NewClient("cohere", "key")
	assert.Error(t, err)
}
