// Package blob keeps binary objects in memory behind revocable references,
// the way a browser keeps object URLs.
package blob

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
)

// Scheme prefixes every blob reference
const Scheme = "blob:"

var (
	// ErrNotFound is returned for references that were never created or were revoked
	ErrNotFound = errors.New("blob not found")
	// ErrRevoked is returned when reading through a released handle
	ErrRevoked = errors.New("blob handle revoked")
)

// Stats counts creations and revocations over the store's lifetime
type Stats struct {
	Created int
	Revoked int
	Live    int
}

// Store holds blob contents keyed by reference
type Store struct {
	mu      sync.RWMutex
	blobs   map[string][]byte
	created int
	revoked int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		blobs: make(map[string][]byte),
	}
}

// Create stores a copy of data and returns the handle that owns it
func (s *Store) Create(data []byte) *Handle {
	ref := Scheme + uuid.New().String()

	// Keep our own copy so the caller can reuse its buffer
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.blobs[ref] = buf
	s.created++
	s.mu.Unlock()

	return &Handle{
		store: s,
		ref:   ref,
		size:  len(buf),
	}
}

// Get returns the contents behind ref
func (s *Store) Get(ref string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[ref]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

// Revoke drops ref. It reports whether ref was live.
func (s *Store) Revoke(ref string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[ref]; !ok {
		return false
	}
	delete(s.blobs, ref)
	s.revoked++
	return true
}

// Len returns the number of live blobs
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Stats returns lifetime counters
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{Created: s.created, Revoked: s.revoked, Live: len(s.blobs)}
}

// Handle is the single owner of one blob. Release revokes it exactly once.
type Handle struct {
	store *Store
	ref   string
	size  int

	mu      sync.Mutex
	revoked bool
}

// URL returns the blob reference, usable until Release
func (h *Handle) URL() string {
	return h.ref
}

// Size returns the blob length in bytes
func (h *Handle) Size() int {
	return h.size
}

// Open returns a reader over the blob contents
func (h *Handle) Open() (io.Reader, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.revoked {
		return nil, ErrRevoked
	}
	data, err := h.store.Get(h.ref)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// WriteTo copies the blob contents to w
func (h *Handle) WriteTo(w io.Writer) (int64, error) {
	r, err := h.Open()
	if err != nil {
		return 0, err
	}
	return io.Copy(w, r)
}

// Release revokes the blob. Only the first call on a handle revokes; later
// calls, and calls on a nil handle, report false.
func (h *Handle) Release() bool {
	if h == nil {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.revoked {
		return false
	}
	h.revoked = true
	return h.store.Revoke(h.ref)
}
