// Package session drives one interpretation session per journal entry: the
// Idle/Streaming/Settled state machine, the transient stream buffer, and the
// in-memory conversation thread.
package session

import (
	"context"
	"strings"
	"sync"

	"dreamlens/internal/journal"
	"dreamlens/internal/logging"
	"dreamlens/internal/provider"
	"dreamlens/internal/store"
)

// State is the session lifecycle phase.
type State string

const (
	StateIdle      State = "idle"
	StateStreaming State = "streaming"
	StateSettled   State = "settled"
)

// Credentials is the slice of ambient configuration the orchestrator reads.
// *settings.Settings satisfies it.
type Credentials interface {
	APIKey(p journal.ProviderID) string
	IsSubscribed() bool
	ProxySession() (baseURL, token string)
}

// Result is the settled outcome of an Interpret or FollowUp call.
type Result struct {
	Analysis *journal.Analysis
	Response *provider.Response
}

// Orchestrator manages one entry's interpretation session. One instance per
// entry; driving two streaming calls concurrently on the same instance is a
// caller error and is rejected with journal.ErrStreamActive.
type Orchestrator struct {
	store *store.Store
	creds Credentials
	entry *journal.Entry

	// Injection points for tests.
	newDirect func(p journal.ProviderID, apiKey string) (provider.Client, error)
	newProxy  func(baseURL, token string) provider.Client

	// OnFragment, when set, observes each raw fragment as it arrives, in
	// order, on the consuming goroutine. Set before the first call.
	OnFragment func(fragment string)

	mu                 sync.Mutex
	state              State
	buffer             strings.Builder
	lastError          string
	thread             []journal.Message
	analysisID         string
	conversationID     string
	suggestedFollowUps []string
}

// New creates an orchestrator bound to one entry.
func New(st *store.Store, creds Credentials, entry *journal.Entry) *Orchestrator {
	return &Orchestrator{
		store:     st,
		creds:     creds,
		entry:     entry,
		state:     StateIdle,
		newDirect: provider.NewClient,
		newProxy: func(baseURL, token string) provider.Client {
			return provider.NewProxyClient(baseURL, token)
		},
	}
}

// State returns the current lifecycle phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// StreamingContent returns the transient buffer accumulated so far. Only
// meaningful while Streaming; cleared on settle and on error.
func (o *Orchestrator) StreamingContent() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buffer.String()
}

// LastError returns the recorded user-facing error string, empty when the
// last operation succeeded.
func (o *Orchestrator) LastError() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastError
}

// Thread returns a copy of the in-memory conversation thread.
func (o *Orchestrator) Thread() []journal.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]journal.Message, len(o.thread))
	copy(out, o.thread)
	return out
}

// SuggestedFollowUps returns the follow-up questions recorded at the last
// settle.
func (o *Orchestrator) SuggestedFollowUps() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.suggestedFollowUps))
	copy(out, o.suggestedFollowUps)
	return out
}

// selectClient picks the adapter and effective model for a call. Subscribers
// go through the proxy with the forced subscriber model; everyone else needs
// a provider key for a direct adapter. No usable access at all is the
// synchronous MissingCredential condition.
func (o *Orchestrator) selectClient(modelID string) (provider.Client, string, error) {
	if o.creds.IsSubscribed() {
		baseURL, token := o.creds.ProxySession()
		return o.newProxy(baseURL, token), journal.SubscriberModel, nil
	}

	p := journal.ProviderOpenAI
	if m := journal.FindModel(modelID); m != nil {
		p = m.Provider
	}
	apiKey := o.creds.APIKey(p)
	if apiKey == "" {
		return nil, "", journal.ErrMissingCredential
	}
	client, err := o.newDirect(p, apiKey)
	if err != nil {
		return nil, "", err
	}
	return client, modelID, nil
}

// enterStreaming transitions Idle/Settled -> Streaming, clearing the buffer
// and the prior error. Rejects re-entry while a stream is in flight.
func (o *Orchestrator) enterStreaming() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateStreaming {
		return journal.ErrStreamActive
	}
	o.state = StateStreaming
	o.buffer.Reset()
	o.lastError = ""
	return nil
}

// fail aborts the session: buffer discarded, error recorded, back to Idle.
// Nothing partial is persisted.
func (o *Orchestrator) fail(err error) error {
	o.mu.Lock()
	o.state = StateIdle
	o.buffer.Reset()
	o.lastError = err.Error()
	o.mu.Unlock()
	logging.Session("Session failed: %v", err)
	return err
}

// consume drains a stream into the transient buffer and waits for its
// terminal result.
func (o *Orchestrator) consume(stream *provider.Stream) (*provider.Response, error) {
	for frag := range stream.Fragments {
		o.mu.Lock()
		o.buffer.WriteString(frag)
		o.mu.Unlock()
		if o.OnFragment != nil {
			o.OnFragment(frag)
		}
	}
	res := <-stream.Result
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Response, nil
}

// personalSymbols projects the glossary into the name/meaning pairs handed
// to prompt construction. A glossary read failure degrades to no personal
// symbols rather than blocking the interpretation.
func (o *Orchestrator) personalSymbols() []journal.SymbolMeaning {
	symbols, err := o.store.ListSymbols()
	if err != nil {
		logging.Get(logging.CategorySession).Warn("Glossary unavailable for prompt: %v", err)
		return nil
	}
	out := make([]journal.SymbolMeaning, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, journal.SymbolMeaning{Name: s.Name, Meaning: s.Meaning})
	}
	return out
}

// Interpret runs a fresh interpretation of the entry through one lens,
// persists the settled Analysis with its Conversation, and seeds the
// in-memory thread with the cleaned content.
func (o *Orchestrator) Interpret(ctx context.Context, lensID journal.LensID, modelID string) (*Result, error) {
	client, effectiveModel, err := o.selectClient(modelID)
	if err != nil {
		return nil, err
	}
	if err := o.enterStreaming(); err != nil {
		return nil, err
	}
	logging.Session("Interpret: entry=%s lens=%s model=%s", o.entry.ID, lensID, effectiveModel)

	req := &provider.Request{
		Lens:            lensID,
		Model:           effectiveModel,
		EntryTitle:      o.entry.Title,
		EntryBody:       o.entry.Body,
		Tags:            o.entry.Tags,
		PersonalSymbols: o.personalSymbols(),
	}

	resp, err := o.consume(client.InterpretStream(ctx, req))
	if err != nil {
		return nil, o.fail(err)
	}

	analysis := &journal.Analysis{
		EntryID:    o.entry.ID,
		Lens:       lensID,
		Provider:   providerFor(effectiveModel),
		Model:      effectiveModel,
		Content:    resp.Content,
		TokenCount: resp.TokenCount.Input + resp.TokenCount.Output,
		CostUSD:    resp.CostUSD,
	}
	if err := o.store.CreateAnalysis(analysis); err != nil {
		return nil, o.fail(err)
	}
	conversation := &journal.Conversation{AnalysisID: analysis.ID}
	if err := o.store.CreateConversation(conversation); err != nil {
		return nil, o.fail(err)
	}

	o.mu.Lock()
	o.state = StateSettled
	o.buffer.Reset()
	o.analysisID = analysis.ID
	o.conversationID = conversation.ID
	o.thread = []journal.Message{{Role: journal.RoleAssistant, Content: resp.Content, Timestamp: analysis.CreatedAt}}
	o.suggestedFollowUps = resp.SuggestedFollowUps
	o.mu.Unlock()

	o.reconcileSymbols(resp.IdentifiedSymbols)

	logging.Session("Interpret settled: analysis=%s tokens=%d cost=%s", analysis.ID, analysis.TokenCount, journal.FormatCost(analysis.CostUSD))
	return &Result{Analysis: analysis, Response: resp}, nil
}

// FollowUp asks one follow-up question in the context of an analysis. The
// question and the settled reply are persisted as two sequential appends,
// user first. An interruption between the two durably records the question
// without the reply; that at-least-the-question-was-saved degradation is
// accepted rather than papered over with a transaction.
func (o *Orchestrator) FollowUp(ctx context.Context, message string, lensID journal.LensID, modelID, currentAnalysisContent, analysisID string) (*Result, error) {
	client, effectiveModel, err := o.selectClient(modelID)
	if err != nil {
		return nil, err
	}
	if err := o.enterStreaming(); err != nil {
		return nil, err
	}
	logging.Session("FollowUp: analysis=%s lens=%s model=%s", analysisID, lensID, effectiveModel)

	conversation, err := o.store.GetConversationForAnalysis(analysisID)
	if err != nil {
		return nil, o.fail(err)
	}
	if conversation == nil {
		conversation = &journal.Conversation{AnalysisID: analysisID}
		if err := o.store.CreateConversation(conversation); err != nil {
			return nil, o.fail(err)
		}
	}

	o.mu.Lock()
	if len(o.thread) == 0 && currentAnalysisContent != "" {
		o.thread = []journal.Message{{Role: journal.RoleAssistant, Content: currentAnalysisContent}}
	}
	o.thread = append(o.thread, journal.Message{Role: journal.RoleUser, Content: message})
	o.analysisID = analysisID
	o.conversationID = conversation.ID
	history := make([]journal.Message, len(o.thread))
	copy(history, o.thread)
	o.mu.Unlock()

	req := &provider.Request{
		Lens:                lensID,
		Model:               effectiveModel,
		EntryTitle:          o.entry.Title,
		EntryBody:           o.entry.Body,
		Tags:                o.entry.Tags,
		PersonalSymbols:     o.personalSymbols(),
		ConversationHistory: history,
	}

	resp, err := o.consume(client.InterpretStream(ctx, req))
	if err != nil {
		o.mu.Lock()
		// The unanswered question stays out of the thread.
		o.thread = o.thread[:len(o.thread)-1]
		o.mu.Unlock()
		return nil, o.fail(err)
	}

	if err := o.store.AppendMessage(conversation.ID, journal.RoleUser, message); err != nil {
		return nil, o.fail(err)
	}
	if err := o.store.AppendMessage(conversation.ID, journal.RoleAssistant, resp.Content); err != nil {
		return nil, o.fail(err)
	}

	o.mu.Lock()
	o.state = StateSettled
	o.buffer.Reset()
	o.thread = append(o.thread, journal.Message{Role: journal.RoleAssistant, Content: resp.Content})
	o.suggestedFollowUps = resp.SuggestedFollowUps
	o.mu.Unlock()

	o.reconcileSymbols(resp.IdentifiedSymbols)

	logging.Session("FollowUp settled: conversation=%s", conversation.ID)
	return &Result{Response: resp}, nil
}

// LoadConversation synchronizes the in-memory thread with what is on disk
// for a freshly selected analysis: the analysis content becomes the implicit
// first assistant turn, followed by the persisted messages. Transient state
// is reset so the thread never straddles two analyses.
func (o *Orchestrator) LoadConversation(analysisID, analysisContent string) error {
	o.mu.Lock()
	if o.state == StateStreaming {
		o.mu.Unlock()
		return journal.ErrStreamActive
	}
	o.mu.Unlock()

	conversation, err := o.store.GetConversationForAnalysis(analysisID)
	if err != nil {
		return err
	}

	thread := []journal.Message{{Role: journal.RoleAssistant, Content: analysisContent}}
	conversationID := ""
	if conversation != nil {
		thread = append(thread, conversation.Messages...)
		conversationID = conversation.ID
	}

	o.mu.Lock()
	o.state = StateIdle
	o.buffer.Reset()
	o.lastError = ""
	o.thread = thread
	o.analysisID = analysisID
	o.conversationID = conversationID
	o.suggestedFollowUps = nil
	o.mu.Unlock()

	logging.SessionDebug("Loaded conversation for analysis %s (%d messages)", analysisID, len(thread))
	return nil
}

// ClearConversation resets all in-memory thread state without touching
// persisted data.
func (o *Orchestrator) ClearConversation() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateIdle
	o.buffer.Reset()
	o.lastError = ""
	o.thread = nil
	o.analysisID = ""
	o.conversationID = ""
	o.suggestedFollowUps = nil
}

// reconcileSymbols bumps the glossary frequency counter for every
// identified symbol already present in the glossary. Best effort; a miss or
// store error never fails the settled session.
func (o *Orchestrator) reconcileSymbols(identified []string) {
	for _, name := range identified {
		sym, err := o.store.FindSymbolByName(name)
		if err != nil || sym == nil {
			continue
		}
		if err := o.store.IncrementSymbolFrequency(sym.ID); err != nil {
			logging.Get(logging.CategorySession).Warn("Frequency bump failed for %q: %v", name, err)
		}
	}
}

// providerFor maps a model ID back to its provider via the rate table,
// defaulting to OpenAI for models the table does not know.
func providerFor(modelID string) journal.ProviderID {
	if m := journal.FindModel(modelID); m != nil {
		return m.Provider
	}
	return journal.ProviderOpenAI
}
