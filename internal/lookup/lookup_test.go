package lookup

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotoba-reader/kotoba/internal/dictionary"
)

type mapNormalizer map[string]string

func (m mapNormalizer) Normalize(_ context.Context, word string) string {
	if base, ok := m[word]; ok {
		return base
	}
	return word
}

type fakeSearcher struct {
	entries map[string][]dictionary.DictionaryEntry
	err     error
	release chan struct{}
	calls   atomic.Int32

	mu   sync.Mutex
	keys []string
}

func (f *fakeSearcher) Search(_ context.Context, key string) ([]dictionary.DictionaryEntry, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	if entries, ok := f.entries[key]; ok {
		return entries, nil
	}
	return []dictionary.DictionaryEntry{}, nil
}

func entry(id string) dictionary.DictionaryEntry {
	return dictionary.DictionaryEntry{ID: id}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		want    string
		wantErr error
	}{
		{name: "plain word", keyword: "猫", want: "猫"},
		{name: "punctuation and spaces removed", keyword: " 行きます。\r\n", want: "行きます"},
		{name: "inner spaces removed", keyword: "東京　タワー", want: "東京タワー"},
		{name: "markup stripped", keyword: `<ruby>漢字<rt>かんじ</rt></ruby>`, want: "漢字かんじ"},
		{name: "blank", keyword: "   ", wantErr: ErrKeywordRequired},
		{name: "markup only", keyword: "<br/>", wantErr: ErrKeywordRequired},
		{name: "punctuation only", keyword: "。、！？", wantErr: ErrEmptyKeyword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Clean(tt.keyword)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Lookup(t *testing.T) {
	normalizer := mapNormalizer{"食べた": "食べる", "行った": "行う"}
	searcher := &fakeSearcher{entries: map[string][]dictionary.DictionaryEntry{
		"食べる": {entry("eat")},
		"行った": {entry("went")},
		"猫":   {entry("cat")},
	}}
	service := NewService(normalizer, searcher)

	tests := []struct {
		name     string
		keyword  string
		wantIDs  []string
		wantKeys []string
		wantErr  error
	}{
		{
			name:     "dictionary form found",
			keyword:  "食べた。",
			wantIDs:  []string{"eat"},
			wantKeys: []string{"食べる"},
		},
		{
			name:     "falls back to the surface form",
			keyword:  "行った",
			wantIDs:  []string{"went"},
			wantKeys: []string{"行う", "行った"},
		},
		{
			name:     "no fallback when normalization is a no-op",
			keyword:  "犬",
			wantIDs:  []string{},
			wantKeys: []string{"犬"},
		},
		{
			name:     "already dictionary form",
			keyword:  "猫",
			wantIDs:  []string{"cat"},
			wantKeys: []string{"猫"},
		},
		{
			name:    "blank keyword",
			keyword: " ",
			wantErr: ErrKeywordRequired,
		},
		{
			name:    "punctuation only",
			keyword: "。",
			wantErr: ErrEmptyKeyword,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher.keys = nil
			got, err := service.Lookup(context.Background(), tt.keyword)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, searcher.keys)
				return
			}
			require.NoError(t, err)
			ids := []string{}
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantKeys, searcher.keys)
		})
	}
}

func TestService_LookupSearchError(t *testing.T) {
	wantErr := errors.New("index unavailable")
	service := NewService(mapNormalizer{}, &fakeSearcher{err: wantErr})

	_, err := service.Lookup(context.Background(), "猫")
	assert.ErrorIs(t, err, wantErr)
}

func TestService_LookupSharesConcurrentCalls(t *testing.T) {
	searcher := &fakeSearcher{
		entries: map[string][]dictionary.DictionaryEntry{"猫": {entry("cat")}},
		release: make(chan struct{}),
	}
	service := NewService(mapNormalizer{}, searcher)

	const callers = 5
	var started, done sync.WaitGroup
	results := make([][]dictionary.DictionaryEntry, callers)
	for i := 0; i < callers; i++ {
		started.Add(1)
		done.Add(1)
		go func(i int) {
			defer done.Done()
			started.Done()
			got, err := service.Lookup(context.Background(), "猫")
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}
	started.Wait()
	// wait until the first search is in flight before releasing it
	for searcher.calls.Load() == 0 {
		runtime.Gosched()
	}
	time.Sleep(50 * time.Millisecond)
	close(searcher.release)
	done.Wait()

	assert.Equal(t, int32(1), searcher.calls.Load())
	for _, got := range results {
		assert.Equal(t, []dictionary.DictionaryEntry{entry("cat")}, got)
	}
}

// ctxSearcher blocks until release and fails if its ctx ends first.
type ctxSearcher struct {
	entries []dictionary.DictionaryEntry
	release chan struct{}
	calls   atomic.Int32
}

func (c *ctxSearcher) Search(ctx context.Context, _ string) ([]dictionary.DictionaryEntry, error) {
	c.calls.Add(1)
	select {
	case <-c.release:
		return c.entries, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestService_LookupCancelledCallerDoesNotFailOthers(t *testing.T) {
	searcher := &ctxSearcher{
		entries: []dictionary.DictionaryEntry{entry("cat")},
		release: make(chan struct{}),
	}
	service := NewService(mapNormalizer{}, searcher)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	errA := make(chan error, 1)
	go func() {
		_, err := service.Lookup(ctxA, "猫")
		errA <- err
	}()
	require.Eventually(t, func() bool { return searcher.calls.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		entries []dictionary.DictionaryEntry
		err     error
	}
	resB := make(chan result, 1)
	go func() {
		got, err := service.Lookup(context.Background(), "猫")
		resB <- result{entries: got, err: err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(searcher.release)
	got := <-resB
	require.NoError(t, got.err)
	assert.Equal(t, []dictionary.DictionaryEntry{entry("cat")}, got.entries)
	assert.Equal(t, int32(1), searcher.calls.Load())
}
