package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelCatalogFetchAndCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[{"id":"claude-sonnet-4-5","provider":"anthropic","displayName":"Claude Sonnet","contextWindow":200000}]`))
	}))
	defer srv.Close()

	catalog := NewModelCatalog(srv.URL)

	models, err := catalog.Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "anthropic", models[0].Provider)

	// Second call within the TTL is served from cache.
	_, err = catalog.Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestModelCatalogServesStaleOnRefreshFailure(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"id":"m1","provider":"openai","displayName":"M1","contextWindow":8192}]`))
	}))
	defer srv.Close()

	catalog := NewModelCatalog(srv.URL)

	first, err := catalog.Models(context.Background())
	require.NoError(t, err)

	// Expire the cache, then break the upstream.
	catalog.fetchedAt = catalog.fetchedAt.Add(-2 * catalogTTL)
	fail.Store(true)

	second, err := catalog.Models(context.Background())
	require.NoError(t, err, "stale copy is better than an error")
	assert.Equal(t, first, second)
}

func TestModelCatalogErrorWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	catalog := NewModelCatalog(srv.URL)
	_, err := catalog.Models(context.Background())
	assert.Error(t, err)
}
