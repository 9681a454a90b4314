package flat

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/izu-labs/izuchat/internal/core/domain"
)

func unit(vals ...float32) []float32 {
	return domain.NormalizeVector(vals)
}

func TestSearchRanking(t *testing.T) {
	idx, err := New([][]float32{
		unit(0, 1, 0),
		unit(1, 0, 0),
		unit(0.9, 0.1, 0),
	})
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), unit(1, 0, 0), 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	// Exact match first, near match second, orthogonal last.
	assert.Equal(t, 1, hits[0].Row)
	assert.Equal(t, 2, hits[1].Row)
	assert.Equal(t, 0, hits[2].Row)

	// Scores non-increasing in rank order.
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i].Score, hits[i-1].Score)
	}
}

func TestSearchTieBreakByRow(t *testing.T) {
	// Duplicate vectors must rank by insertion order.
	v := []float32{1, 0}
	idx, err := New([][]float32{
		{v[0], v[1]},
		{0, 1},
		{v[0], v[1]},
	})
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), unit(1, 0), 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 0, hits[0].Row)
	assert.Equal(t, 2, hits[1].Row)
}

func TestSearchKBounds(t *testing.T) {
	idx, err := New([][]float32{unit(1, 0), unit(0, 1)})
	require.NoError(t, err)

	// k larger than the index returns everything without erroring.
	hits, err := idx.Search(context.Background(), unit(1, 0), 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	// k < 1 is an input error.
	_, err = idx.Search(context.Background(), unit(1, 0), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidTopK)
}

func TestSearchEmptyIndex(t *testing.T) {
	idx, err := New(nil)
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchDimensionMismatch(t *testing.T) {
	idx, err := New([][]float32{unit(1, 0, 0)})
	require.NoError(t, err)

	_, err = idx.Search(context.Background(), []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestNewRejectsRaggedVectors(t *testing.T) {
	_, err := New([][]float32{{1, 0}, {1, 0, 0}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestNewNormalizesRows(t *testing.T) {
	idx, err := New([][]float32{{3, 4}})
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), unit(3, 4), 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, float64(hits[0].Score), 1e-6)
}

func TestWriteAndLoadRoundTrip(t *testing.T) {
	vectors := [][]float32{
		unit(0.2, 0.5, 0.8),
		unit(0.9, 0.1, 0.3),
		unit(0.4, 0.4, 0.4),
	}
	idx, err := New(vectors)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "index.bin")
	require.NoError(t, idx.WriteFile(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, idx.Len(), loaded.Len())
	assert.Equal(t, idx.Dimensions(), loaded.Dimensions())

	query := unit(0.9, 0.1, 0.3)
	want, err := idx.Search(context.Background(), query, 3)
	require.NoError(t, err)
	got, err := loaded.Search(context.Background(), query, 3)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Row, got[i].Row)
		assert.InDelta(t, float64(want[i].Score), float64(got[i].Score), 1e-6)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	require.NoError(t, os.WriteFile(path, []byte("not an index"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsTruncatedBody(t *testing.T) {
	vectors := [][]float32{unit(1, 0), unit(0, 1)}
	idx, err := New(vectors)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "index.bin")
	require.NoError(t, idx.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-4], 0o644))

	_, err = Load(path)
	assert.Error(t, err)
}

func TestNormalizationIdempotence(t *testing.T) {
	v := unit(0.3, 0.7, 0.2)
	again := make([]float32, len(v))
	copy(again, v)
	domain.NormalizeVector(again)

	sim := domain.CosineSimilarity(v, again)
	assert.InDelta(t, 1.0, sim, 1e-6)

	var norm float64
	for _, x := range again {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
}
