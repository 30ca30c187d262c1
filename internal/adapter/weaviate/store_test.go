package weaviate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	adapter "paperbase/internal/adapter/weaviate"
	"paperbase/internal/vector"
)

func mockWeaviate(t *testing.T, handler http.HandlerFunc) (*weaviate.Client, *httptest.Server) {
	ts := httptest.NewServer(handler)
	cfg := weaviate.Config{Host: ts.Listener.Addr().String(), Scheme: "http"}
	client, err := weaviate.NewClient(cfg)
	assert.NoError(t, err)
	return client, ts
}

func meta(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"version": "1.19.0"}`))
}

func TestStore_Insert(t *testing.T) {
	modified := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			meta(w)
			return
		}
		assert.Equal(t, "/v1/objects", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "DocumentChunk", body["class"])
		props := body["properties"].(map[string]interface{})
		assert.Equal(t, "제1조 목적", props["content"])
		assert.Equal(t, "rules.pdf", props["source"])
		assert.Equal(t, "제1조", props["section"])
		assert.Equal(t, "pdf", props["fileType"])
		assert.Equal(t, "2025-06-01T09:00:00Z", props["lastModified"])

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "1"})
	})
	defer ts.Close()

	store := adapter.NewStore(client, time.Minute)
	err := store.Insert(context.Background(), vector.Record{
		Content: "제1조 목적",
		Meta: vector.Metadata{
			Source:       "rules.pdf",
			Section:      "제1조",
			FileType:     "pdf",
			LastModified: modified,
			CreatedAt:    modified,
		},
		Vector: []float32{0.1, 0.2},
	})
	assert.NoError(t, err)
}

func TestStore_DeleteBySource(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			meta(w)
			return
		}
		assert.Equal(t, "/v1/batch/objects", r.URL.Path)
		assert.Equal(t, "DELETE", r.Method)

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		match := body["match"].(map[string]interface{})
		where := match["where"].(map[string]interface{})
		assert.Equal(t, "Equal", where["operator"])
		assert.Equal(t, "rules.pdf", where["valueString"])

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{})
	})
	defer ts.Close()

	store := adapter.NewStore(client, time.Minute)
	assert.NoError(t, store.DeleteBySource(context.Background(), "rules.pdf"))
}

func TestStore_SearchByVector(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			meta(w)
			return
		}
		assert.Equal(t, "/v1/graphql", r.URL.Path)

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		query := body["query"].(string)
		assert.True(t, strings.Contains(query, "nearVector"), "query: %s", query)
		assert.True(t, strings.Contains(query, "certainty"), "query: %s", query)

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"Get": map[string]interface{}{
					"DocumentChunk": []interface{}{
						map[string]interface{}{
							"content":  "심의료는 10만원",
							"source":   "fees.xlsx",
							"section":  "fees-Sheet1",
							"fileType": "xlsx",
							"_additional": map[string]interface{}{
								"certainty": 0.9,
							},
						},
					},
				},
			},
		})
	})
	defer ts.Close()

	store := adapter.NewStore(client, time.Minute)
	hits, err := store.SearchByVector(context.Background(), []float32{0.1}, 0.3, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "fees.xlsx", hits[0].Source)
	assert.Equal(t, "fees-Sheet1", hits[0].Section)
	// certainty 0.9 maps back to similarity 0.8
	assert.InDelta(t, 0.8, hits[0].Similarity, 1e-9)
}

func TestStore_SearchByVector_GraphQLError(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			meta(w)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"errors": []interface{}{
				map[string]interface{}{"message": "class not found"},
			},
		})
	})
	defer ts.Close()

	store := adapter.NewStore(client, time.Minute)
	_, err := store.SearchByVector(context.Background(), []float32{0.1}, 0.3, 10)
	assert.Error(t, err)
}

func TestStore_SearchByVector_Timeout(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			meta(w)
			return
		}
		// Slower than the store's network timeout.
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"data": map[string]interface{}{}})
	})
	defer ts.Close()

	store := adapter.NewStore(client, 20*time.Millisecond)
	_, err := store.SearchByVector(context.Background(), []float32{0.1}, 0.3, 10)
	assert.Error(t, err)
}

func TestStore_Sources(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			meta(w)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"Get": map[string]interface{}{
					"DocumentChunk": []interface{}{
						map[string]interface{}{
							"source":       "rules.pdf",
							"lastModified": "2025-06-01T09:00:00Z",
						},
						map[string]interface{}{
							"source":       "rules.pdf",
							"lastModified": "2025-06-02T09:00:00Z",
						},
						map[string]interface{}{
							"source":       "fees.xlsx",
							"lastModified": "2025-05-20T09:00:00Z",
						},
					},
				},
			},
		})
	})
	defer ts.Close()

	store := adapter.NewStore(client, time.Minute)
	sources, err := store.Sources(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 2)
	// newest chunk wins per source
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), sources["rules.pdf"])
	assert.Equal(t, time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC), sources["fees.xlsx"])
}
