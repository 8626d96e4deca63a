package store

import "sync"

// Collection names a notification channel for store changes.
type Collection string

const (
	CollectionEntries       Collection = "entries"
	CollectionAnalyses      Collection = "analyses"
	CollectionConversations Collection = "conversations"
	CollectionSymbols       Collection = "symbols"
)

// notifier fans out change notifications to subscribers. Callbacks run
// synchronously on the writing goroutine; subscribers that need to do real
// work should hand off to their own goroutine.
type notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Collection)
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[int]func(Collection))}
}

func (n *notifier) subscribe(fn func(Collection)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *notifier) emit(c Collection) {
	n.mu.Lock()
	fns := make([]func(Collection), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}

// Subscribe registers a callback invoked after every successful write, with
// the collection that changed. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(Collection)) func() {
	return s.notifier.subscribe(fn)
}
