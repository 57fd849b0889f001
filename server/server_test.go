package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonafind/sonafind/ai"
	"github.com/sonafind/sonafind/ai/mock"
	"github.com/sonafind/sonafind/artifact"
	badgercatalog "github.com/sonafind/sonafind/catalog/badger"
	"github.com/sonafind/sonafind/core"
	"github.com/sonafind/sonafind/index"
	"github.com/sonafind/sonafind/phonetic"
	"github.com/sonafind/sonafind/search"
)

func testSearcher(t *testing.T, embedder ai.Embedder) *search.Searcher {
	t.Helper()

	products := []core.Product{
		{Name: "Amul Butter", Brand: "Amul", Category: "Dairy"},
		{Name: "Mother Dairy Butter", Brand: "Mother Dairy", Category: "Dairy"},
		{Name: "Amul Milk", Brand: "Amul", Category: "Dairy"},
	}
	for i := range products {
		products[i].ID = core.IDFromContent(core.CanonicalText(products[i]))
		products[i].Phonetic = phonetic.Encode(products[i].Name)
	}
	ix, err := index.New([][]float32{{1, 0}, {0, 1}, {0.9, 0.1}})
	require.NoError(t, err)

	set := &artifact.Set{
		Index:  ix,
		Lookup: products,
		Meta:   core.IndexMeta{Model: "stub-embeddings", Dimension: 2, Rows: 3, BuiltAt: time.Now().UTC()},
	}
	s, err := search.NewSearcher(set, embedder)
	require.NoError(t, err)
	return s
}

func queryEmbedder() *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.9, 0.1}, nil
	}
	return embedder
}

func TestHandleSearch(t *testing.T) {
	srv, err := New(testSearcher(t, queryEmbedder()))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	t.Run("ranked results", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/search?q=amul+buttr&k=2&pool=3&boost=0.5")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body searchResponseJSON
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "amul buttr", body.Query)
		assert.Equal(t, 2, body.K)
		assert.Equal(t, 3, body.Pool)
		assert.Equal(t, 0.5, body.Boost)
		require.Len(t, body.Results, 2)
		assert.Equal(t, "Amul Butter", body.Results[0].Product.Name)
		assert.Nil(t, body.Timing)
	})

	t.Run("defaults fill omitted parameters", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/search?q=amul")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body searchResponseJSON
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		defaults := core.DefaultParams()
		assert.Equal(t, defaults.K, body.K)
		assert.Equal(t, defaults.Pool, body.Pool)
		assert.Equal(t, defaults.Boost, body.Boost)
	})

	t.Run("profile timing", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/search?q=amul&profile=true")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body searchResponseJSON
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.NotNil(t, body.Timing)
		assert.Greater(t, body.Timing.TotalMS, 0.0)
	})

	t.Run("unparseable k", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/search?q=amul&k=five")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid parameter combination", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/search?q=amul&k=10&pool=2")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("empty query", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/search")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandleSearch_ProviderDown(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, ai.ErrProviderUnavailable
	}
	srv, err := New(testSearcher(t, embedder))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/search?q=amul")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body errorResponseJSON
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Error)
}

func TestHandleGetProduct(t *testing.T) {
	repo, err := badgercatalog.NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()

	added, err := repo.AddProducts(context.Background(),
		&core.Product{Name: "Amul Butter", Brand: "Amul", Category: "Dairy"})
	require.NoError(t, err)

	srv, err := New(testSearcher(t, queryEmbedder()), WithCatalog(repo))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	t.Run("found", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/products/" + strconv.FormatUint(uint64(added[0].ID), 10))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body productJSON
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, added[0].ID, body.ID)
		assert.Equal(t, "Amul Butter", body.Name)
		assert.NotEmpty(t, body.Phonetic)
	})

	t.Run("missing", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/products/99999")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad id", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/products/not-a-number")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandleGetProduct_NoCatalog(t *testing.T) {
	srv, err := New(testSearcher(t, queryEmbedder()))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/products/1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleHealthz(t *testing.T) {
	srv, err := New(testSearcher(t, queryEmbedder()))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string         `json:"status"`
		Meta   core.IndexMeta `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "stub-embeddings", body.Meta.Model)
	assert.Equal(t, 3, body.Meta.Rows)
}

func TestRateLimit(t *testing.T) {
	srv, err := New(testSearcher(t, queryEmbedder()), WithRateLimit(1, 1))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	// Burst of 1: the first request passes, the immediate second is shed.
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestNewValidation(t *testing.T) {
	t.Run("nil searcher", func(t *testing.T) {
		_, err := New(nil)
		assert.Equal(t, search.ErrArtifactsRequired, err)
	})

	t.Run("bad rate limit", func(t *testing.T) {
		_, err := New(testSearcher(t, queryEmbedder()), WithRateLimit(0, 0))
		assert.Error(t, err)
	})

	t.Run("bad defaults", func(t *testing.T) {
		_, err := New(testSearcher(t, queryEmbedder()), WithDefaults(core.Params{K: 0, Pool: 0}))
		assert.ErrorIs(t, err, core.ErrInvalidQuery)
	})
}
