package state

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Album is a record album as served by the albums API.
type Album struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Artist string  `json:"artist"`
	Price  float32 `json:"price"`
}

// Snapshot is a copy of the store contents at one point in time.
type Snapshot struct {
	Albums        []Album
	Errors        []string
	Messages      []string
	WaitingOnAjax bool
}

// HasErrors reports whether the snapshot carries any error strings.
func (s Snapshot) HasErrors() bool {
	return len(s.Errors) > 0
}

type subscriber struct {
	id uuid.UUID
	fn func(Snapshot)
}

// Store is the shared application state. Construct one with New and hand the
// pointer to every consumer; the zero value is also ready to use.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	callSeq  uint64
	version  uint64

	subMu       sync.Mutex
	subscribers []subscriber

	// notifyMu guards the delivery queue. Only the newest queued snapshot
	// is kept, and one goroutine at a time delivers.
	notifyMu   sync.Mutex
	queued     uint64
	pending    Snapshot
	delivering bool
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Subscribe registers fn to be called after mutations. Callbacks never run
// concurrently and never see an older snapshot after a newer one; when
// mutations race, intermediate snapshots may be skipped, but the last one
// delivered always matches Snapshot. The returned function removes the
// subscription and is safe to call more than once.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	if fn == nil {
		return func() {}
	}
	id := uuid.New()

	s.subMu.Lock()
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		s.subscribers = slices.DeleteFunc(s.subscribers, func(sub subscriber) bool {
			return sub.id == id
		})
	}
}

// SetWaitingOnAjax replaces the in-flight flag.
func (s *Store) SetWaitingOnAjax(waiting bool) {
	s.mutate(func(snap *Snapshot) {
		snap.WaitingOnAjax = waiting
	})
}

// SetErrors replaces the error list with errs.
func (s *Store) SetErrors(errs []string) {
	s.mutate(func(snap *Snapshot) {
		snap.Errors = cloneStrings(errs)
	})
}

// SetError replaces the error list with a single entry.
func (s *Store) SetError(err string) {
	s.SetErrors([]string{err})
}

// ClearErrors empties the error list.
func (s *Store) ClearErrors() {
	s.mutate(func(snap *Snapshot) {
		snap.Errors = []string{}
	})
}

// SetMessages replaces the message list with a one-element list holding msg.
func (s *Store) SetMessages(msg string) {
	s.mutate(func(snap *Snapshot) {
		snap.Messages = []string{msg}
	})
}

// ClearMessages empties the message list.
func (s *Store) ClearMessages() {
	s.mutate(func(snap *Snapshot) {
		snap.Messages = []string{}
	})
}

// SetAlbums replaces the album list.
func (s *Store) SetAlbums(albums []Album) {
	s.mutate(func(snap *Snapshot) {
		snap.Albums = cloneAlbums(albums)
	})
}

// UpsertAlbum replaces the album with the same ID or appends it.
func (s *Store) UpsertAlbum(album Album) {
	s.mutate(func(snap *Snapshot) {
		idx := slices.IndexFunc(snap.Albums, func(a Album) bool { return a.ID == album.ID })
		if idx >= 0 {
			albums := cloneAlbums(snap.Albums)
			albums[idx] = album
			snap.Albums = albums
			return
		}
		snap.Albums = append(cloneAlbums(snap.Albums), album)
	})
}

// RemoveAlbum drops the album with the given ID, if present.
func (s *Store) RemoveAlbum(id int64) {
	s.mutate(func(snap *Snapshot) {
		snap.Albums = slices.DeleteFunc(cloneAlbums(snap.Albums), func(a Album) bool {
			return a.ID == id
		})
	})
}

// BeginCall starts a request: errors and messages are cleared, the in-flight
// flag is raised and a token identifying the call is returned. Subscribers
// see the cleared lists and the raised flag in one notification.
func (s *Store) BeginCall() uint64 {
	var token uint64
	s.mutate(func(snap *Snapshot) {
		s.callSeq++
		token = s.callSeq
		snap.Errors = []string{}
		snap.Messages = []string{}
		snap.WaitingOnAjax = true
	})
	return token
}

// IsCurrent reports whether token belongs to the most recently begun call.
func (s *Store) IsCurrent(token uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return token == s.callSeq
}

// FinishCall lowers the in-flight flag when token is still the latest call.
// A superseded call leaves the flag to its successor and returns false.
func (s *Store) FinishCall(token uint64) bool {
	return s.CompleteCall(token, CallResult{})
}

// CallResult is what a finished call writes to the store.
type CallResult struct {
	Errors     []string
	HasErrors  bool
	Message    string
	HasMessage bool
}

// CompleteCall lowers the in-flight flag and applies r, but only while token
// is the latest call. The check and the writes happen under one lock and
// produce one notification. A superseded call changes nothing and returns
// false.
func (s *Store) CompleteCall(token uint64, r CallResult) bool {
	s.mu.Lock()
	if token != s.callSeq {
		s.mu.Unlock()
		return false
	}
	s.snapshot.WaitingOnAjax = false
	if r.HasErrors {
		s.snapshot.Errors = cloneStrings(r.Errors)
	}
	if r.HasMessage {
		s.snapshot.Messages = []string{r.Message}
	}
	snap, version := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap, version)
	return true
}

func (s *Store) mutate(apply func(*Snapshot)) {
	s.mu.Lock()
	apply(&s.snapshot)
	snap, version := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap, version)
}

func (s *Store) commitLocked() (Snapshot, uint64) {
	s.version++
	return s.copyLocked(), s.version
}

// notify queues snap for delivery. Snapshots older than the queued one are
// dropped. If another goroutine is already delivering it picks snap up when
// its current round ends, so a callback that mutates the store does not
// deadlock.
func (s *Store) notify(snap Snapshot, version uint64) {
	s.notifyMu.Lock()
	if version <= s.queued {
		s.notifyMu.Unlock()
		return
	}
	s.queued = version
	s.pending = snap
	if s.delivering {
		s.notifyMu.Unlock()
		return
	}
	s.delivering = true

	for {
		current, sent := s.pending, s.queued
		s.notifyMu.Unlock()

		s.deliver(current)

		s.notifyMu.Lock()
		if s.queued == sent {
			s.delivering = false
			s.notifyMu.Unlock()
			return
		}
	}
}

func (s *Store) deliver(snap Snapshot) {
	s.subMu.Lock()
	subs := slices.Clone(s.subscribers)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(cloneSnapshot(snap))
	}
}

func (s *Store) copyLocked() Snapshot {
	return cloneSnapshot(s.snapshot)
}

func cloneSnapshot(in Snapshot) Snapshot {
	out := in
	out.Albums = cloneAlbums(in.Albums)
	out.Errors = cloneStrings(in.Errors)
	out.Messages = cloneStrings(in.Messages)
	return out
}

func cloneAlbums(items []Album) []Album {
	if items == nil {
		return nil
	}
	dup := make([]Album, len(items))
	copy(dup, items)
	return dup
}

func cloneStrings(items []string) []string {
	if items == nil {
		return nil
	}
	dup := make([]string, len(items))
	copy(dup, items)
	return dup
}
