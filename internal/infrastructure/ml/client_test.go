package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbedCountMismatch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{{1, 2}}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.Embed(context.Background(), []string{"a", "b"})
	require.ErrorContains(t, err, "mismatch")
}

func TestEmbedRoundTrip(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embed", r.URL.Path)
		var payload struct {
			Texts []string `json:"texts"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		out := make([][]float32, len(payload.Texts))
		for i := range out {
			out[i] = []float32{float32(i)}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": out})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	got, err := client.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{0}, {1}}, got)
}

func TestScorePairsRoundTrip(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/score", r.URL.Path)
		require.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		var payload struct {
			Query    string   `json:"query"`
			Passages []string `json:"passages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "q", payload.Query)
		scores := make([]float64, len(payload.Passages))
		for i := range scores {
			scores[i] = 0.5
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"scores": scores})
	}))
	defer server.Close()

	client := NewClient(server.URL, "key")
	got, err := client.ScorePairs(context.Background(), "q", []string{"p1", "p2"})
	require.NoError(t, err)
	require.Equal(t, []float64{0.5, 0.5}, got)
}

func TestScorePairsServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.ScorePairs(context.Background(), "q", []string{"p"})
	require.ErrorContains(t, err, "unexpected status")
}

func TestEmptyInputsShortCircuit(t *testing.T) {
	t.Parallel()

	client := NewClient("http://unreachable.invalid", "")

	vecs, err := client.Embed(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, vecs)

	scores, err := client.ScorePairs(context.Background(), "q", nil)
	require.NoError(t, err)
	require.Nil(t, scores)
}
