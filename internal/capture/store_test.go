//go:build !integration && !e2e
// +build !integration,!e2e

package capture

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(path string) *Request {
	return &Request{
		Method:     "GET",
		Path:       path,
		ReceivedAt: time.Now().UTC(),
	}
}

func TestStore_RecordAssignsMonotonicIndexes(t *testing.T) {
	s := NewStore(3)

	for i := 0; i < 10; i++ {
		idx := s.Record(newRequest(fmt.Sprintf("/req-%d", i)))
		assert.Equal(t, uint64(i), idx, "indexes must be strictly increasing across eviction")
	}

	assert.Equal(t, uint64(10), s.TotalRecorded())
}

func TestStore_GetRelative_Empty(t *testing.T) {
	s := NewStore(5)

	_, err := s.GetRelative(0)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetRelative(-1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_EvictionKeepsNewest(t *testing.T) {
	// Capacity 3; record A, B, C, D. D..B stay resident, A is evicted.
	s := NewStore(3)
	for _, p := range []string{"/a", "/b", "/c", "/d"} {
		s.Record(newRequest(p))
	}

	assert.Equal(t, 3, s.Count())

	newest, err := s.GetRelative(0)
	require.NoError(t, err)
	assert.Equal(t, "/d", newest.Path)

	second, err := s.GetRelative(1)
	require.NoError(t, err)
	assert.Equal(t, "/c", second.Path)

	oldest, err := s.GetRelative(2)
	require.NoError(t, err)
	assert.Equal(t, "/b", oldest.Path)

	_, err = s.GetRelative(3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_GetRelative_OutOfRangeForEveryCount(t *testing.T) {
	s := NewStore(4)
	for i := 0; i < 6; i++ {
		_, err := s.GetRelative(s.Count())
		assert.ErrorIs(t, err, ErrNotFound, "count=%d", s.Count())
		s.Record(newRequest("/x"))
	}
}

func TestStore_CountNeverExceedsCapacity(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 50; i++ {
		s.Record(newRequest("/x"))
	}
	assert.Equal(t, 3, s.Count())
	assert.Equal(t, 3, s.Capacity())
}

func TestStore_Snapshot_NewestFirst(t *testing.T) {
	s := NewStore(3)
	for _, p := range []string{"/1", "/2", "/3", "/4", "/5"} {
		s.Record(newRequest(p))
	}

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "/5", snap[0].Path)
	assert.Equal(t, "/4", snap[1].Path)
	assert.Equal(t, "/3", snap[2].Path)
}

func TestStore_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, NewStore(0).Capacity())
	assert.Equal(t, DefaultCapacity, NewStore(-7).Capacity())
}

func TestStore_ConcurrentRecordAndLookup(t *testing.T) {
	s := NewStore(16)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				s.Record(newRequest(fmt.Sprintf("/g%d-%d", g, i)))
				if r, err := s.GetRelative(0); err == nil {
					assert.NotNil(t, r)
				}
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 16, s.Count())
	assert.Equal(t, uint64(8*200), s.TotalRecorded())
}

func TestHeadersFromHTTP_PreservesDuplicates(t *testing.T) {
	h := http.Header{}
	h.Add("X-Tag", "one")
	h.Add("X-Tag", "two")
	h.Add("Accept", "application/json")

	headers := HeadersFromHTTP(h)
	require.Len(t, headers, 3)

	assert.Equal(t, []Header{
		{Name: "Accept", Value: "application/json"},
		{Name: "X-Tag", Value: "one"},
		{Name: "X-Tag", Value: "two"},
	}, headers)

	// Round trip back to http.Header.
	rebuilt := HTTPHeader(headers)
	assert.Equal(t, []string{"one", "two"}, rebuilt.Values("X-Tag"))
}

func TestHeaderValue_CaseInsensitive(t *testing.T) {
	headers := []Header{{Name: "Content-Type", Value: "text/plain"}}
	assert.Equal(t, "text/plain", HeaderValue(headers, "content-type"))
	assert.Equal(t, "", HeaderValue(headers, "Accept"))
}
