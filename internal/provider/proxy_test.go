package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dreamlens/internal/journal"
)

func TestProxyInterpretStream(t *testing.T) {
	var gotAuth string
	frames := []string{
		`{"content":"The water "}`,
		`{"content":"carries you."}`,
		`{"done":true,"model":"gpt-4o-mini"}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/interpret", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, f := range frames {
			fmt.Fprintf(w, "data: %s\n\n", f)
		}
	}))
	defer srv.Close()

	client := NewProxyClient(srv.URL, "session-token")
	req := &Request{Lens: journal.LensJung, EntryBody: "A dream."}
	full, res := collect(t, client.InterpretStream(context.Background(), req))

	assert.Equal(t, "Bearer session-token", gotAuth)
	assert.Equal(t, "The water carries you.", full)
	require.NoError(t, res.Err)
	assert.Equal(t, "The water carries you.", res.Response.Content)
	// Subscriber turns are not metered on the client.
	assert.Equal(t, TokenCount{}, res.Response.TokenCount)
	assert.Equal(t, 0.0, res.Response.CostUSD)
}

func TestProxyStreamMarkerSplitAcrossFrames(t *testing.T) {
	frames := []string{
		`{"content":"A [SYM"}`,
		`{"content":"BOL]river[/SYMBOL] flows."}`,
		`{"done":true}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, f := range frames {
			fmt.Fprintf(w, "data: %s\n\n", f)
		}
	}))
	defer srv.Close()

	client := NewProxyClient(srv.URL, "session-token")
	req := &Request{Lens: journal.LensJung, EntryBody: "A dream."}
	_, res := collect(t, client.InterpretStream(context.Background(), req))

	require.NoError(t, res.Err)
	assert.Equal(t, "A river flows.", res.Response.Content)
	assert.Equal(t, []string{"river"}, res.Response.IdentifiedSymbols)
}

func TestProxyStreamErrorFrame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"error\":\"Stream error\"}\n\n")
	}))
	defer srv.Close()

	client := NewProxyClient(srv.URL, "session-token")
	req := &Request{Lens: journal.LensJung, EntryBody: "A dream."}
	_, res := collect(t, client.InterpretStream(context.Background(), req))

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "Stream error")
}

func TestProxyStreamUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"Invalid session"}`)
	}))
	defer srv.Close()

	client := NewProxyClient(srv.URL, "stale-token")
	req := &Request{Lens: journal.LensJung, EntryBody: "A dream."}
	_, res := collect(t, client.InterpretStream(context.Background(), req))

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "status 401")
}

func TestProxyStreamMissingToken(t *testing.T) {
	client := NewProxyClient("http://localhost:1", "")
	req := &Request{Lens: journal.LensJung, EntryBody: "A dream."}
	_, res := collect(t, client.InterpretStream(context.Background(), req))
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "session token")
}
