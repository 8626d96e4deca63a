// Package provider adapts model backends to one interpretation contract.
// Direct adapters speak each provider's HTTP API with hand-rolled SSE
// scanning; the proxy adapter speaks the subscription daemon's protocol.
package provider

import (
	"context"

	"dreamlens/internal/journal"
)

// Request carries everything an adapter needs for one interpretation turn.
// A non-empty ConversationHistory marks a follow-up turn: the last history
// message is the user's newest question.
type Request struct {
	Lens                journal.LensID
	Model               string
	EntryTitle          string
	EntryBody           string
	Tags                []journal.Tag
	PersonalSymbols     []journal.SymbolMeaning
	ConversationHistory []journal.Message
}

// IsFollowUp reports whether this request continues a conversation.
func (r *Request) IsFollowUp() bool {
	return len(r.ConversationHistory) > 0
}

// TokenCount splits a call's token usage by direction.
type TokenCount struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// Response is the settled outcome of one interpretation turn. Content has
// the marker tags stripped; the markers' payloads live in SuggestedFollowUps
// and IdentifiedSymbols.
type Response struct {
	Content            string     `json:"content"`
	TokenCount         TokenCount `json:"tokenCount"`
	CostUSD            float64    `json:"costUsd"`
	SuggestedFollowUps []string   `json:"suggestedFollowUps"`
	IdentifiedSymbols  []string   `json:"identifiedSymbols"`
}

// StreamResult is the terminal value of a stream: a settled Response or an
// error, never both.
type StreamResult struct {
	Response *Response
	Err      error
}

// Stream is a live interpretation. Fragments delivers raw content deltas in
// order and is closed after the last one; Result then delivers exactly one
// StreamResult. Abandoning a Stream requires cancelling the context it was
// started with, otherwise the producing goroutine blocks on Fragments.
type Stream struct {
	Fragments <-chan string
	Result    <-chan StreamResult
}

// Client is one interpretation backend.
type Client interface {
	Interpret(ctx context.Context, req *Request) (*Response, error)
	InterpretStream(ctx context.Context, req *Request) *Stream
}
