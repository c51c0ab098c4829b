package corpus

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/pkg/common"
)

// countingSource 記錄開啟次數，可選擇延遲或失敗
type countingSource struct {
	data  []byte
	err   error
	delay time.Duration
	opens atomic.Int32
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Open(ctx context.Context) (io.ReadCloser, error) {
	s.opens.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func TestLoaderCachesAndClears(t *testing.T) {
	src := &countingSource{data: []byte(testCorpus())}
	l := NewLoader(src, Options{}, time.Hour)

	records, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = l.Load(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, src.opens.Load())
	assert.True(t, l.Ready())

	l.Clear()
	assert.False(t, l.Ready())

	_, err = l.Load(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, src.opens.Load())
}

func TestLoaderSharesInFlightLoad(t *testing.T) {
	src := &countingSource{data: []byte(testCorpus()), delay: 50 * time.Millisecond}
	l := NewLoader(src, Options{}, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, err := l.Load(context.Background())
			assert.NoError(t, err)
			assert.Len(t, records, 2)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, src.opens.Load())
}

func TestLoaderExpiresAfterTTL(t *testing.T) {
	src := &countingSource{data: []byte(testCorpus())}
	l := NewLoader(src, Options{}, time.Minute)
	now := time.Now()
	l.now = func() time.Time { return now }

	_, err := l.Load(context.Background())
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = l.Load(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, src.opens.Load())
}

func TestLoaderPropagatesFetchError(t *testing.T) {
	src := &countingSource{err: common.Wrap(common.ErrCorpusFetch, errors.New("boom"))}
	l := NewLoader(src, Options{}, time.Hour)

	_, err := l.Load(context.Background())
	assert.ErrorIs(t, err, common.ErrCorpusFetch)
	assert.False(t, l.Ready())
}

func TestLoaderEmptyCorpus(t *testing.T) {
	src := &countingSource{data: []byte(testHeader + "\n")}
	l := NewLoader(src, Options{}, time.Hour)

	_, err := l.Load(context.Background())
	assert.ErrorIs(t, err, common.ErrCorpusEmpty)
}

func TestHTTPSourceStreamsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(testCorpus()))
	}))
	defer srv.Close()

	l := NewLoader(NewHTTPSource(srv.URL, HTTPOptions{Timeout: 5 * time.Second}), Options{}, time.Hour)
	records, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestHTTPSourceRetriesThenFails(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, HTTPOptions{
		Timeout:      5 * time.Second,
		RetryMax:     2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	})

	_, err := src.Open(context.Background())
	assert.ErrorIs(t, err, common.ErrCorpusFetch)
	assert.EqualValues(t, 3, hits.Load())
}

func TestHTTPSourceRejectsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, HTTPOptions{}).Open(context.Background())
	assert.ErrorIs(t, err, common.ErrCorpusFetch)
}
