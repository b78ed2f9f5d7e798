package hf

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage-cli/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewEmbeddingService(Config{
		Token:             "test-token",
		Model:             "test-model",
		BaseURL:           srv.URL,
		RequestsPerSecond: -1,
	})
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService_RequiresToken(t *testing.T) {
	_, err := NewEmbeddingService(Config{Model: "some-model"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.Contains(t, err.Error(), "HF_TOKEN")
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc, err := NewEmbeddingService(Config{Token: "t"})

	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
}

func TestEmbedBatch_SendsAuthAndInputs(t *testing.T) {
	var gotAuth, gotPath string
	var gotReq embedRequest

	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode([][]float64{{1, 0}, {0, 1}})
	})

	vectors, err := svc.EmbedBatch(context.Background(), []string{"alpha", "beta"})

	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "/pipeline/feature-extraction/test-model", gotPath)
	assert.Equal(t, []string{"alpha", "beta"}, gotReq.Inputs)
	assert.True(t, gotReq.Options.WaitForModel)
}

func TestEmbedBatch_NormalisesVectors(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([][]float64{{3, 4}})
	})

	vectors, err := svc.EmbedBatch(context.Background(), []string{"text"})

	require.NoError(t, err)
	require.Len(t, vectors, 1)

	var norm float64
	for _, x := range vectors[0] {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
	assert.InDelta(t, 0.6, float64(vectors[0][0]), 1e-6)
	assert.InDelta(t, 0.8, float64(vectors[0][1]), 1e-6)
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	})

	vectors, err := svc.EmbedBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([][]float64{{1, 0}})
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"one", "two"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 vectors for 2 inputs")
}

func TestEmbedBatch_APIError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"text"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestEmbedBatch_TransportFailure(t *testing.T) {
	svc, err := NewEmbeddingService(Config{
		Token:             "t",
		Model:             "m",
		BaseURL:           "http://127.0.0.1:1",
		RequestsPerSecond: -1,
	})
	require.NoError(t, err)

	_, err = svc.EmbedBatch(context.Background(), []string{"text"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbed_ReturnsSingleVector(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([][]float64{{0, 2}})
	})

	vector, err := svc.Embed(context.Background(), "text")

	require.NoError(t, err)
	require.Len(t, vector, 2)
	assert.InDelta(t, 1.0, float64(vector[1]), 1e-6)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([][]float64{{1}})
	})

	assert.NoError(t, svc.Ping(context.Background()))
}
