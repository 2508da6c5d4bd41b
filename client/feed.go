package client

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultFeedCap matches the server's most-recent-N window.
const DefaultFeedCap = 200

// pendingPrefix marks locally synthesized entries whose authoritative row
// has not arrived yet.
const pendingPrefix = "temp-"

// Entry is one displayed feed row: either a pending entry synthesized at
// submission time or a confirmed entry from a fetch or the change feed.
type Entry struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	SupportCount int64     `json:"support_count"`
	RelateCount  int64     `json:"relate_count"`
	UserSupport  bool      `json:"user_support"`
	UserRelate   bool      `json:"user_relate"`
}

// Pending reports whether the entry is still awaiting its authoritative
// counterpart.
func (e Entry) Pending() bool {
	return strings.HasPrefix(e.ID, pendingPrefix)
}

// ReactionUpdate is a tagged single-entry count update.
type ReactionUpdate struct {
	Kind   string
	Count  int64
	Active bool
}

// Feed merges three event sources into one recency-ordered list: fetch
// results, change-feed insert events, and local pending entries. All
// sources go through Merge so no interleaving produces duplicate rows;
// the mutex serializes callers (the fetch goroutine and the change-feed
// read loop are independent).
type Feed struct {
	mu      sync.Mutex
	entries []Entry
	cap     int
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultFeedCap
	}
	return &Feed{cap: capacity}
}

// Merge reconciles an incoming confirmed entry with the current list.
// An entry with the same id is replaced in place. A pending entry with
// the same content is claimed by the incoming entry, also in place: that
// is how a local optimistic insert collapses with the authoritative row,
// whichever of fetch or change feed delivers it first. Anything else is
// prepended. The list is then truncated to the cap.
func (f *Feed) Merge(incoming Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := -1
	for i, existing := range f.entries {
		if existing.ID == incoming.ID {
			idx = i
			break
		}
		// Content match only claims pending entries; two genuinely
		// distinct confirmed posts with identical text stay separate.
		if existing.Pending() && existing.Content == incoming.Content {
			idx = i
			break
		}
	}

	if idx != -1 {
		f.entries[idx] = incoming
	} else {
		f.entries = append([]Entry{incoming}, f.entries...)
	}

	if len(f.entries) > f.cap {
		f.entries = f.entries[:f.cap]
	}
}

// AddPending synthesizes and prepends a pending entry for content before
// any network round trip completes. It carries a temporary identifier,
// a client-generated timestamp, zero counts, and no active reactions.
func (f *Feed) AddPending(content string) Entry {
	entry := Entry{
		ID:        fmt.Sprintf("%s%d", pendingPrefix, time.Now().UnixNano()),
		Content:   content,
		CreatedAt: time.Now(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries = append([]Entry{entry}, f.entries...)
	if len(f.entries) > f.cap {
		f.entries = f.entries[:f.cap]
	}

	return entry
}

// Remove drops the entry with the given id. Used to roll back a pending
// entry when its submission fails.
func (f *Feed) Remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, existing := range f.entries {
		if existing.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return
		}
	}
}

// Replace swaps the whole list for fetched entries, newest first.
func (f *Feed) Replace(entries []Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(entries) > f.cap {
		entries = entries[:f.cap]
	}
	f.entries = append([]Entry(nil), entries...)
}

// ApplyReaction updates a single entry's count and active flag in place.
// It never resyncs the rest of the list.
func (f *Feed) ApplyReaction(id string, update ReactionUpdate) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.entries {
		if f.entries[i].ID != id {
			continue
		}
		switch update.Kind {
		case "support":
			f.entries[i].SupportCount = update.Count
			f.entries[i].UserSupport = update.Active
		case "relate":
			f.entries[i].RelateCount = update.Count
			f.entries[i].UserRelate = update.Active
		}
		return
	}
}

// Get returns the entry with the given id.
func (f *Feed) Get(id string) (Entry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.entries {
		if existing.ID == id {
			return existing, true
		}
	}
	return Entry{}, false
}

// Entries returns a snapshot of the displayed list, newest first.
func (f *Feed) Entries() []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]Entry(nil), f.entries...)
}

// Len returns the number of displayed entries.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.entries)
}
