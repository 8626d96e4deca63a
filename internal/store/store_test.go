package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dreamlens/internal/journal"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedEntry(t *testing.T, s *Store, title, body string, tags ...journal.Tag) *journal.Entry {
	t.Helper()
	e := &journal.Entry{Title: title, Body: body, Tags: tags}
	require.NoError(t, s.CreateEntry(e))
	return e
}

func TestEntryCRUD(t *testing.T) {
	s := openTestStore(t)

	e := seedEntry(t, s, "Falling", "I was falling through clouds.",
		journal.Tag{Category: journal.TagEmotion, Value: "fear"},
		journal.Tag{Category: journal.TagAction, Value: "falling"},
	)
	require.NotEmpty(t, e.ID)
	assert.False(t, e.RecordedAt.IsZero())

	got, err := s.GetEntry(e.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Falling", got.Title)
	assert.Len(t, got.Tags, 2)

	missing, err := s.GetEntry("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	newBody := "I was falling, then flying."
	updated, err := s.UpdateEntry(e.ID, EntryPatch{Body: &newBody})
	require.NoError(t, err)
	assert.Equal(t, newBody, updated.Body)
	assert.Equal(t, "Falling", updated.Title)
	assert.True(t, updated.UpdatedAt.After(e.CreatedAt) || updated.UpdatedAt.Equal(e.CreatedAt))

	_, err = s.UpdateEntry("nope", EntryPatch{Body: &newBody})
	assert.ErrorIs(t, err, journal.ErrNotFound)
}

func TestEntryTagReplacement(t *testing.T) {
	s := openTestStore(t)
	e := seedEntry(t, s, "", "body", journal.Tag{Category: journal.TagEmotion, Value: "joy"})

	newTags := []journal.Tag{
		{Category: journal.TagPlace, Value: "forest"},
		{Category: journal.TagPlace, Value: "forest"},
	}
	_, err := s.UpdateEntry(e.ID, EntryPatch{Tags: &newTags})
	require.NoError(t, err)

	got, err := s.GetEntry(e.ID)
	require.NoError(t, err)
	// Duplicate pairs collapse; the old tag set is gone.
	require.Len(t, got.Tags, 1)
	assert.Equal(t, journal.TagPlace, got.Tags[0].Category)
	assert.Equal(t, "forest", got.Tags[0].Value)
}

func TestListEntriesNewestFirst(t *testing.T) {
	s := openTestStore(t)
	old := &journal.Entry{Body: "old", RecordedAt: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, s.CreateEntry(old))
	recent := &journal.Entry{Body: "recent", RecordedAt: time.Now()}
	require.NoError(t, s.CreateEntry(recent))

	entries, err := s.ListEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, recent.ID, entries[0].ID)
	assert.Equal(t, old.ID, entries[1].ID)
}

func TestDeleteEntryCascades(t *testing.T) {
	s := openTestStore(t)
	e := seedEntry(t, s, "t", "body", journal.Tag{Category: journal.TagEmotion, Value: "awe"})

	a := &journal.Analysis{EntryID: e.ID, Lens: journal.LensJung, Provider: journal.ProviderOpenAI, Model: "gpt-4o-mini", Content: "interpretation"}
	require.NoError(t, s.CreateAnalysis(a))
	c := &journal.Conversation{AnalysisID: a.ID}
	require.NoError(t, s.CreateConversation(c))
	require.NoError(t, s.AppendMessage(c.ID, journal.RoleUser, "why?"))

	require.NoError(t, s.DeleteEntry(e.ID))

	got, err := s.GetEntry(e.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	gotA, err := s.GetAnalysis(a.ID)
	require.NoError(t, err)
	assert.Nil(t, gotA)
	gotC, err := s.GetConversationForAnalysis(a.ID)
	require.NoError(t, err)
	assert.Nil(t, gotC)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestAnalysesForEntryNewestFirst(t *testing.T) {
	s := openTestStore(t)
	e := seedEntry(t, s, "", "body")

	first := &journal.Analysis{EntryID: e.ID, Lens: journal.LensJung, Provider: journal.ProviderOpenAI, Model: "gpt-4o-mini", Content: "a", CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, s.CreateAnalysis(first))
	second := &journal.Analysis{EntryID: e.ID, Lens: journal.LensFreud, Provider: journal.ProviderOpenAI, Model: "gpt-4o-mini", Content: "b"}
	require.NoError(t, s.CreateAnalysis(second))

	got, err := s.GetAnalysesForEntry(e.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
}

func TestAppendMessageSequencing(t *testing.T) {
	s := openTestStore(t)
	e := seedEntry(t, s, "", "body")
	a := &journal.Analysis{EntryID: e.ID, Lens: journal.LensJung, Provider: journal.ProviderOpenAI, Model: "gpt-4o-mini", Content: "x"}
	require.NoError(t, s.CreateAnalysis(a))

	c := &journal.Conversation{AnalysisID: a.ID}
	require.NoError(t, s.CreateConversation(c))

	require.NoError(t, s.AppendMessage(c.ID, journal.RoleUser, "first"))
	require.NoError(t, s.AppendMessage(c.ID, journal.RoleAssistant, "second"))
	require.NoError(t, s.AppendMessage(c.ID, journal.RoleUser, "third"))

	got, err := s.GetConversationForAnalysis(a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "first", got.Messages[0].Content)
	assert.Equal(t, journal.RoleAssistant, got.Messages[1].Role)
	assert.Equal(t, "third", got.Messages[2].Content)

	err = s.AppendMessage("nope", journal.RoleUser, "lost")
	assert.ErrorIs(t, err, journal.ErrNotFound)
}

func TestConversationSeedMessages(t *testing.T) {
	s := openTestStore(t)
	e := seedEntry(t, s, "", "body")
	a := &journal.Analysis{EntryID: e.ID, Lens: journal.LensJung, Provider: journal.ProviderOpenAI, Model: "gpt-4o-mini", Content: "x"}
	require.NoError(t, s.CreateAnalysis(a))

	c := &journal.Conversation{
		AnalysisID: a.ID,
		Messages: []journal.Message{
			{Role: journal.RoleUser, Content: "seeded question"},
		},
	}
	require.NoError(t, s.CreateConversation(c))
	require.NoError(t, s.AppendMessage(c.ID, journal.RoleAssistant, "answer"))

	got, err := s.GetConversationForAnalysis(a.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "seeded question", got.Messages[0].Content)
	assert.Equal(t, "answer", got.Messages[1].Content)
}

func TestSymbolLifecycle(t *testing.T) {
	s := openTestStore(t)

	sym := &journal.Symbol{Name: "Ocean", Meaning: "the unconscious", Valence: journal.ValenceAmbivalent}
	require.NoError(t, s.CreateSymbol(sym))
	require.NotEmpty(t, sym.ID)

	found, err := s.FindSymbolByName("ocean")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, sym.ID, found.ID)
	assert.Equal(t, []string{}, found.RelatedSymbolIDs)

	missing, err := s.FindSymbolByName("desert")
	require.NoError(t, err)
	assert.Nil(t, missing)

	newMeaning := "depth and mystery"
	updated, err := s.UpdateSymbol(sym.ID, SymbolPatch{Meaning: &newMeaning})
	require.NoError(t, err)
	assert.Equal(t, newMeaning, updated.Meaning)

	_, err = s.UpdateSymbol("nope", SymbolPatch{Meaning: &newMeaning})
	assert.ErrorIs(t, err, journal.ErrNotFound)

	require.NoError(t, s.IncrementSymbolFrequency(sym.ID))
	require.NoError(t, s.IncrementSymbolFrequency(sym.ID))
	got, err := s.GetSymbol(sym.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Frequency)

	err = s.IncrementSymbolFrequency("nope")
	assert.ErrorIs(t, err, journal.ErrNotFound)

	require.NoError(t, s.DeleteSymbol(sym.ID))
	gone, err := s.GetSymbol(sym.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// Deleting a missing symbol is a no-op.
	assert.NoError(t, s.DeleteSymbol(sym.ID))
}

func TestListSymbolsByFrequency(t *testing.T) {
	s := openTestStore(t)
	rare := &journal.Symbol{Name: "mirror", Meaning: "self"}
	require.NoError(t, s.CreateSymbol(rare))
	common := &journal.Symbol{Name: "water", Meaning: "emotion", Frequency: 5}
	require.NoError(t, s.CreateSymbol(common))

	got, err := s.ListSymbols()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "water", got[0].Name)
	assert.Equal(t, "mirror", got[1].Name)
}

func TestSubscribeNotifications(t *testing.T) {
	s := openTestStore(t)

	var seen []Collection
	unsubscribe := s.Subscribe(func(c Collection) { seen = append(seen, c) })

	e := seedEntry(t, s, "", "body")
	require.Equal(t, []Collection{CollectionEntries}, seen)

	unsubscribe()
	_, err := s.UpdateEntry(e.ID, EntryPatch{})
	require.NoError(t, err)
	assert.Len(t, seen, 1)
}
