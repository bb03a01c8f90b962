package capture

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when a relative index has no resident entry.
var ErrNotFound = errors.New("capture: no such request")

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 100

// Store is a fixed-capacity ring buffer of the most recent captured requests.
// Indexes handed out by Record are strictly increasing for the lifetime of
// the store and are never reused, even across eviction, so entries keep a
// stable identity while they remain resident.
type Store struct {
	mu       sync.Mutex
	entries  []*Request // modular arena, len == capacity
	next     uint64     // next index to assign == total recorded
	capacity int
}

// NewStore creates a Store holding at most capacity entries.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		entries:  make([]*Request, capacity),
		capacity: capacity,
	}
}

// Record appends req, assigns it the next monotonic index and returns it.
// The oldest entry is overwritten once the buffer is full. Record never fails.
func (s *Store) Record(req *Request) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.next
	req.Index = idx
	s.entries[idx%uint64(s.capacity)] = req
	s.next++
	return idx
}

// GetRelative returns the entry n positions back from the newest (0 = most
// recent). It fails with ErrNotFound when n is negative, the store is empty,
// or n reaches past the resident entries.
func (s *Store) GetRelative(n int) (*Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 0 || n >= s.countLocked() {
		return nil, ErrNotFound
	}
	idx := s.next - 1 - uint64(n)
	return s.entries[idx%uint64(s.capacity)], nil
}

// Count reports the number of entries currently resident (0..capacity).
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked()
}

// Capacity reports the fixed size of the ring buffer.
func (s *Store) Capacity() int {
	return s.capacity
}

// TotalRecorded reports how many requests have ever been recorded,
// including evicted ones.
func (s *Store) TotalRecorded() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Snapshot returns the resident entries ordered newest-first. The slice is a
// copy; the entries themselves are immutable and shared.
func (s *Store) Snapshot() []*Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.countLocked()
	out := make([]*Request, count)
	for n := 0; n < count; n++ {
		idx := s.next - 1 - uint64(n)
		out[n] = s.entries[idx%uint64(s.capacity)]
	}
	return out
}

func (s *Store) countLocked() int {
	if s.next < uint64(s.capacity) {
		return int(s.next)
	}
	return s.capacity
}
