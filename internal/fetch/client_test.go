package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/faculty-tracker/internal/common"
)

func TestFetch_OKSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html><h1>Ana Silva</h1></html>"))
	}))
	defer srv.Close()

	c := NewClient(Config{UserAgent: "test-agent/1.0"}, nil)
	resp, err := c.Fetch(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "Ana Silva")
	assert.Equal(t, "test-agent/1.0", gotUA)
}

func TestFetch_Non2xxIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(Config{}, nil)
	_, err := c.Fetch(context.Background(), srv.URL, time.Second)
	require.Error(t, err)

	var ne *NetworkError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, http.StatusNotFound, ne.StatusCode)
	assert.ErrorIs(t, err, common.ErrNetwork)
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{}, nil)
	start := time.Now()
	_, err := c.Fetch(context.Background(), srv.URL, 50*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNetwork)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFetch_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Config{}, nil)
	_, err := c.Fetch(context.Background(), url, time.Second)
	assert.ErrorIs(t, err, common.ErrNetwork)
}

func TestFetch_BodyCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	c := NewClient(Config{MaxBodyBytes: 100}, nil)
	body, err := c.FetchBytes(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	assert.Len(t, body, 100)
}

func TestFetch_PolitenessDelay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(Config{Delay: 40 * time.Millisecond}, nil)
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Fetch(context.Background(), srv.URL, time.Second)
		require.NoError(t, err)
	}
	// first token is immediate, the next two wait one delay each
	assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
}

func TestFetch_CancelledContext(t *testing.T) {
	c := NewClient(Config{Delay: time.Hour}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Fetch(ctx, "http://127.0.0.1:1", time.Second)
	assert.ErrorIs(t, err, common.ErrNetwork)
}
