package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/apparel_shop/internal/models"
)

type fakeES struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies[r.Method+" "+r.URL.Path] = string(body)
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/":
		_, _ = w.Write([]byte(`{"version":{"number":"9.0.0","build_flavor":"default"},"tagline":"You Know, for Search"}`))
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/products/_doc/"):
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":1},"hits":[{"_source":{
			"id":"3f1c9d9e-1111-4c3a-9a55-5a8f0f7a0c01","name":"Classic Tee","price":"29.99",
			"category":"tshirts","availableColors":["black"],"availableSizes":["M"],"published":true}}]}}`))
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func newTestIndex(t *testing.T) (*Index, *fakeES) {
	t.Helper()
	f := &fakeES{bodies: map[string]string{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	ix, err := NewIndex(context.Background(), Config{URL: srv.URL, Index: "products"})
	require.NoError(t, err)
	return ix, f
}

func TestIndex_IndexProduct_Published(t *testing.T) {
	ix, f := newTestIndex(t)

	p := &models.Product{
		ID:        uuid.New(),
		Name:      "Classic Tee",
		Price:     decimal.RequireFromString("29.99"),
		Published: true,
	}
	require.NoError(t, ix.IndexProduct(context.Background(), p))

	key := "PUT /products/_doc/" + p.ID.String()
	require.Contains(t, f.bodies, key)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(f.bodies[key]), &doc))
	assert.Equal(t, "Classic Tee", doc["name"])
	assert.Equal(t, "29.99", doc["price"])
}

func TestIndex_IndexProduct_UnpublishedIsRemoved(t *testing.T) {
	ix, f := newTestIndex(t)

	p := &models.Product{ID: uuid.New(), Name: "Draft", Price: decimal.NewFromInt(10)}
	require.NoError(t, ix.IndexProduct(context.Background(), p))

	assert.Contains(t, f.requests, "DELETE /products/_doc/"+p.ID.String())
	for _, r := range f.requests {
		assert.NotContains(t, r, "PUT")
	}
}

func TestIndex_Search(t *testing.T) {
	ix, f := newTestIndex(t)

	total, items, err := ix.Search(context.Background(), "tee", 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Classic Tee", items[0].Name)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("29.99")))

	body := f.bodies["POST /products/_search"]
	assert.Contains(t, body, `"published":true`)
	assert.Contains(t, body, `"query":"tee"`)
}
