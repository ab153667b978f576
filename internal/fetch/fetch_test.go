package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testDownloader() *Downloader {
	d := NewDownloader(2 * time.Second)
	// Short delays keep the retry path fast under test.
	d.strategy.Delay = 10 * time.Millisecond
	return d
}

func TestDownloader_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("image bytes"))
	}))
	defer srv.Close()

	data, err := testDownloader().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, []byte("image bytes"), data)
}

func TestDownloader_RetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("eventually"))
	}))
	defer srv.Close()

	data, err := testDownloader().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, []byte("eventually"), data)
	require.Equal(t, int32(3), calls.Load())
}

func TestDownloader_GivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testDownloader().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	require.Contains(t, err.Error(), "after 3 attempts")
	require.Equal(t, int32(3), calls.Load())
}
