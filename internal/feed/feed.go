// Package feed owns the displayed message sequence for one page scope
// and keeps it consistent across initial load, incremental polls, and
// optimistic appends after a send.
package feed

import (
	"sync"

	"pagechat/internal/models"
)

// Feed is the authoritative local message sequence for one page. The
// sequence never contains two messages with the same defined id;
// messages without an id (optimistically appended, pre-persist) are
// never deduped against poll results until they acquire one.
type Feed struct {
	mu           sync.Mutex
	pageUniqueID string
	messages     []models.ChatMessage
	lastID       int64
	seen         map[int64]struct{}
}

func New(pageUniqueID string) *Feed {
	return &Feed{
		pageUniqueID: pageUniqueID,
		seen:         make(map[int64]struct{}),
	}
}

func (f *Feed) PageUniqueID() string {
	return f.pageUniqueID
}

// Load replaces the sequence wholesale and sets the high-water mark
// to the maximum id seen.
func (f *Feed) Load(items []models.ChatMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.messages = append(f.messages[:0:0], items...)
	f.lastID = 0
	f.seen = make(map[int64]struct{}, len(items))
	for _, m := range items {
		f.register(m)
	}
}

// Merge appends the items whose id is not already present; items
// without an id are always considered new. Existing entries are never
// reordered. Returns the number of items appended.
func (f *Feed) Merge(items []models.ChatMessage) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	appended := 0
	for _, m := range items {
		if m.ID != nil {
			if _, ok := f.seen[*m.ID]; ok {
				continue
			}
		}
		f.messages = append(f.messages, m)
		f.register(m)
		appended++
	}
	return appended
}

// Append adds a just-sent message for optimistic display, before the
// next poll cycle can return it. Appending and poll-merging commute:
// either order yields one entry per id.
func (f *Feed) Append(m models.ChatMessage) {
	f.Merge([]models.ChatMessage{m})
}

// Messages returns a snapshot of the displayed sequence.
func (f *Feed) Messages() []models.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ChatMessage(nil), f.messages...)
}

// LastMessageID is the high-water mark: the largest id already
// fetched, used to request only newer records on each poll.
func (f *Feed) LastMessageID() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastID
}

func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

// register must be called with f.mu held.
func (f *Feed) register(m models.ChatMessage) {
	if m.ID == nil {
		return
	}
	f.seen[*m.ID] = struct{}{}
	if *m.ID > f.lastID {
		f.lastID = *m.ID
	}
}
