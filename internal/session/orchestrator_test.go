package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dreamlens/internal/journal"
	"dreamlens/internal/provider"
	"dreamlens/internal/store"
)

type fakeCreds struct {
	keys       map[journal.ProviderID]string
	subscribed bool
}

func (c fakeCreds) APIKey(p journal.ProviderID) string { return c.keys[p] }
func (c fakeCreds) IsSubscribed() bool                 { return c.subscribed }
func (c fakeCreds) ProxySession() (string, string)     { return "https://proxy.test", "tok" }

// fakeClient replays a scripted stream. The optional gate blocks the result
// delivery until released, to hold a session in the Streaming state.
type fakeClient struct {
	fragments []string
	err       error
	gate      chan struct{}

	lastReq *provider.Request
}

func (f *fakeClient) InterpretStream(ctx context.Context, req *provider.Request) *provider.Stream {
	f.lastReq = req
	fragments := make(chan string, 100)
	result := make(chan provider.StreamResult, 1)
	go func() {
		defer close(fragments)
		if f.gate != nil {
			<-f.gate
		}
		if f.err != nil {
			result <- provider.StreamResult{Err: f.err}
			return
		}
		var full string
		for _, frag := range f.fragments {
			full += frag
			fragments <- frag
		}
		result <- provider.StreamResult{Response: &provider.Response{
			Content:            provider.CleanContent(full),
			SuggestedFollowUps: provider.ExtractSuggestedFollowUps(full),
			IdentifiedSymbols:  provider.ExtractIdentifiedSymbols(full),
			TokenCount:         provider.TokenCount{Input: 100, Output: 50},
			CostUSD:            0.001,
		}}
	}()
	return &provider.Stream{Fragments: fragments, Result: result}
}

func (f *fakeClient) Interpret(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	stream := f.InterpretStream(ctx, req)
	for range stream.Fragments {
	}
	res := <-stream.Result
	return res.Response, res.Err
}

func newTestOrchestrator(t *testing.T, creds Credentials, client provider.Client) (*Orchestrator, *store.Store, *journal.Entry) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	entry := &journal.Entry{Title: "Flight", Body: "I was flying over the sea."}
	require.NoError(t, s.CreateEntry(entry))

	o := New(s, creds, entry)
	o.newDirect = func(p journal.ProviderID, apiKey string) (provider.Client, error) { return client, nil }
	o.newProxy = func(baseURL, token string) provider.Client { return client }
	return o, s, entry
}

func directCreds() fakeCreds {
	return fakeCreds{keys: map[journal.ProviderID]string{journal.ProviderOpenAI: "sk-test"}}
}

func TestInterpretMissingCredential(t *testing.T) {
	client := &fakeClient{}
	o, _, _ := newTestOrchestrator(t, fakeCreds{}, client)

	_, err := o.Interpret(context.Background(), journal.LensJung, "gpt-4o-mini")
	assert.ErrorIs(t, err, journal.ErrMissingCredential)
	assert.Equal(t, StateIdle, o.State())
	assert.Nil(t, client.lastReq)
}

func TestInterpretSettles(t *testing.T) {
	client := &fakeClient{fragments: []string{
		"The [SYMBOL]sea[/SYMBOL] below you. ",
		"[FOLLOW_UP]What did the sea feel like?[/FOLLOW_UP]",
	}}
	o, s, entry := newTestOrchestrator(t, directCreds(), client)

	sea := &journal.Symbol{Name: "sea", Meaning: "the unknown"}
	require.NoError(t, s.CreateSymbol(sea))

	var streamed string
	o.OnFragment = func(f string) { streamed += f }

	res, err := o.Interpret(context.Background(), journal.LensJung, "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, StateSettled, o.State())
	assert.Empty(t, o.LastError())
	assert.Contains(t, streamed, "[SYMBOL]sea[/SYMBOL]")

	assert.Equal(t, "The sea below you.", res.Analysis.Content)
	assert.Equal(t, journal.LensJung, res.Analysis.Lens)
	assert.Equal(t, journal.ProviderOpenAI, res.Analysis.Provider)
	assert.Equal(t, 150, res.Analysis.TokenCount)

	persisted, err := s.GetAnalysis(res.Analysis.ID)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, entry.ID, persisted.EntryID)

	conv, err := s.GetConversationForAnalysis(res.Analysis.ID)
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Empty(t, conv.Messages)

	thread := o.Thread()
	require.Len(t, thread, 1)
	assert.Equal(t, journal.RoleAssistant, thread[0].Role)
	assert.Equal(t, "The sea below you.", thread[0].Content)

	assert.Equal(t, []string{"What did the sea feel like?"}, o.SuggestedFollowUps())

	bumped, err := s.GetSymbol(sea.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, bumped.Frequency)

	// Personal symbols flowed into the request.
	require.NotNil(t, client.lastReq)
	require.Len(t, client.lastReq.PersonalSymbols, 1)
	assert.Equal(t, "sea", client.lastReq.PersonalSymbols[0].Name)
}

func TestInterpretStreamErrorDiscardsEverything(t *testing.T) {
	client := &fakeClient{err: errors.New("connection reset")}
	o, s, _ := newTestOrchestrator(t, directCreds(), client)

	_, err := o.Interpret(context.Background(), journal.LensJung, "gpt-4o-mini")
	require.Error(t, err)
	assert.Equal(t, StateIdle, o.State())
	assert.Equal(t, "connection reset", o.LastError())
	assert.Empty(t, o.StreamingContent())

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Analyses)
	assert.Zero(t, stats.Conversations)
}

func TestInterpretRejectsConcurrentStream(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{fragments: []string{"slow"}, gate: gate}
	o, _, _ := newTestOrchestrator(t, directCreds(), client)

	done := make(chan error, 1)
	go func() {
		_, err := o.Interpret(context.Background(), journal.LensJung, "gpt-4o-mini")
		done <- err
	}()

	// Wait for the first call to enter Streaming.
	for o.State() != StateStreaming {
		time.Sleep(time.Millisecond)
	}
	_, err := o.Interpret(context.Background(), journal.LensJung, "gpt-4o-mini")
	assert.ErrorIs(t, err, journal.ErrStreamActive)

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, StateSettled, o.State())
}

func TestFollowUpAppendsToConversation(t *testing.T) {
	client := &fakeClient{fragments: []string{"Because the sea is vast."}}
	o, s, _ := newTestOrchestrator(t, directCreds(), client)

	res, err := o.Interpret(context.Background(), journal.LensJung, "gpt-4o-mini")
	require.NoError(t, err)

	_, err = o.FollowUp(context.Background(), "Why the sea?", journal.LensJung, "gpt-4o-mini", res.Analysis.Content, res.Analysis.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSettled, o.State())

	conv, err := s.GetConversationForAnalysis(res.Analysis.ID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, journal.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, "Why the sea?", conv.Messages[0].Content)
	assert.Equal(t, journal.RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, "Because the sea is vast.", conv.Messages[1].Content)

	// In-memory thread: seed, question, reply.
	thread := o.Thread()
	require.Len(t, thread, 3)
	assert.Equal(t, "Why the sea?", thread[1].Content)

	// Follow-up history reached the provider with the question last.
	history := client.lastReq.ConversationHistory
	require.NotEmpty(t, history)
	assert.Equal(t, "Why the sea?", history[len(history)-1].Content)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Conversations)
}

func TestFollowUpErrorPopsUnansweredQuestion(t *testing.T) {
	client := &fakeClient{fragments: []string{"An interpretation."}}
	o, s, _ := newTestOrchestrator(t, directCreds(), client)

	res, err := o.Interpret(context.Background(), journal.LensJung, "gpt-4o-mini")
	require.NoError(t, err)

	client.err = errors.New("timeout")
	_, err = o.FollowUp(context.Background(), "Lost question?", journal.LensJung, "gpt-4o-mini", res.Analysis.Content, res.Analysis.ID)
	require.Error(t, err)
	assert.Equal(t, StateIdle, o.State())
	assert.Equal(t, "timeout", o.LastError())

	thread := o.Thread()
	require.Len(t, thread, 1)
	assert.Equal(t, journal.RoleAssistant, thread[0].Role)

	conv, err := s.GetConversationForAnalysis(res.Analysis.ID)
	require.NoError(t, err)
	assert.Empty(t, conv.Messages)
}

func TestFollowUpCreatesConversationLazily(t *testing.T) {
	client := &fakeClient{fragments: []string{"A reply."}}
	o, s, entry := newTestOrchestrator(t, directCreds(), client)

	// Analysis persisted without a conversation, as an import might leave it.
	a := &journal.Analysis{EntryID: entry.ID, Lens: journal.LensFreud, Provider: journal.ProviderOpenAI, Model: "gpt-4o-mini", Content: "Prior interpretation."}
	require.NoError(t, s.CreateAnalysis(a))

	_, err := o.FollowUp(context.Background(), "And then?", journal.LensFreud, "gpt-4o-mini", a.Content, a.ID)
	require.NoError(t, err)

	conv, err := s.GetConversationForAnalysis(a.ID)
	require.NoError(t, err)
	require.NotNil(t, conv)
	require.Len(t, conv.Messages, 2)
}

func TestLoadConversation(t *testing.T) {
	client := &fakeClient{fragments: []string{"Reply one."}}
	o, s, _ := newTestOrchestrator(t, directCreds(), client)

	res, err := o.Interpret(context.Background(), journal.LensJung, "gpt-4o-mini")
	require.NoError(t, err)
	_, err = o.FollowUp(context.Background(), "Q1?", journal.LensJung, "gpt-4o-mini", res.Analysis.Content, res.Analysis.ID)
	require.NoError(t, err)

	// A fresh orchestrator reloading the same analysis sees seed + 2 messages.
	entry, err := s.GetEntry(res.Analysis.EntryID)
	require.NoError(t, err)
	fresh := New(s, directCreds(), entry)
	require.NoError(t, fresh.LoadConversation(res.Analysis.ID, res.Analysis.Content))

	thread := fresh.Thread()
	require.Len(t, thread, 3)
	assert.Equal(t, res.Analysis.Content, thread[0].Content)
	assert.Equal(t, "Q1?", thread[1].Content)
	assert.Equal(t, StateIdle, fresh.State())
}

func TestClearConversation(t *testing.T) {
	client := &fakeClient{fragments: []string{"Text."}}
	o, _, _ := newTestOrchestrator(t, directCreds(), client)

	_, err := o.Interpret(context.Background(), journal.LensJung, "gpt-4o-mini")
	require.NoError(t, err)

	o.ClearConversation()
	assert.Equal(t, StateIdle, o.State())
	assert.Empty(t, o.Thread())
	assert.Empty(t, o.SuggestedFollowUps())
}

func TestSubscriberForcesProxyModel(t *testing.T) {
	client := &fakeClient{fragments: []string{"Proxied."}}
	o, _, _ := newTestOrchestrator(t, fakeCreds{subscribed: true}, client)

	res, err := o.Interpret(context.Background(), journal.LensJung, "gpt-4")
	require.NoError(t, err)

	// The requested model is overridden with the subscriber model.
	assert.Equal(t, journal.SubscriberModel, client.lastReq.Model)
	assert.Equal(t, journal.SubscriberModel, res.Analysis.Model)
}
