package index

import (
	"encoding/gob"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsearch/internal/domain"
)

func testRows() ([][]float32, []domain.Chunk) {
	vectors := [][]float32{
		{1, 0, 0},
		{0, 2, 0}, // not unit length; Build must normalize
		{1, 1, 0},
	}
	chunks := []domain.Chunk{
		{DocumentID: "a", Page: 1, Index: 0, Text: "first chunk"},
		{DocumentID: "a", Page: 2, Index: 1, Text: "second chunk"},
		{DocumentID: "b", Page: 1, Index: 2, Text: "third chunk"},
	}
	return vectors, chunks
}

func TestBuild_RejectsInconsistentDimensions(t *testing.T) {
	f := NewFlat(3)
	err := f.Build([][]float32{{1, 0, 0}, {1, 0}}, []domain.Chunk{{Index: 0}, {Index: 1}})
	require.ErrorIs(t, err, ErrDimensionMismatch)

	err = f.Build([][]float32{{1, 0, 0}}, nil)
	require.ErrorIs(t, err, ErrDimensionMismatch, "row/metadata count mismatch")
}

func TestSearch_RanksByCosineSimilarity(t *testing.T) {
	f := NewFlat(3)
	vectors, chunks := testRows()
	require.NoError(t, f.Build(vectors, chunks))

	results, err := f.Search([]float32{3, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 0, results[0].Chunk.Index)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-5)
	// Scores equal the cosine similarity of the original, pre-normalization
	// embeddings.
	assert.InDelta(t, 1/math.Sqrt2, float64(results[1].Score), 1e-5)
	assert.Equal(t, 2, results[1].Chunk.Index)
	assert.InDelta(t, 0, float64(results[2].Score), 1e-5)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score, "scores must be non-increasing")
	}
}

func TestSearch_TiesBreakByChunkIndex(t *testing.T) {
	f := NewFlat(2)
	vectors := [][]float32{{0, 1}, {1, 0}, {1, 0}}
	chunks := []domain.Chunk{{Index: 0}, {Index: 1}, {Index: 2}}
	require.NoError(t, f.Build(vectors, chunks))

	for i := 0; i < 10; i++ {
		results, err := f.Search([]float32{1, 0}, 3)
		require.NoError(t, err)
		assert.Equal(t, 1, results[0].Chunk.Index)
		assert.Equal(t, 2, results[1].Chunk.Index)
		assert.Equal(t, 0, results[2].Chunk.Index)
	}
}

func TestSearch_TopKClampedToRowCount(t *testing.T) {
	f := NewFlat(2)
	require.NoError(t, f.Build([][]float32{{1, 0}}, []domain.Chunk{{Index: 0, Text: "only"}}))

	results, err := f.Search([]float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_EmptyIndex(t *testing.T) {
	f := NewFlat(2)
	_, err := f.Search([]float32{1, 0}, 3)
	assert.ErrorIs(t, err, ErrEmptyIndex)
}

func TestSearch_InvalidTopK(t *testing.T) {
	f := NewFlat(2)
	require.NoError(t, f.Build([][]float32{{1, 0}}, []domain.Chunk{{Index: 0}}))
	for _, k := range []int{0, -1} {
		_, err := f.Search([]float32{1, 0}, k)
		assert.ErrorIs(t, err, ErrInvalidTopK)
	}
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	f := NewFlat(3)
	vectors, chunks := testRows()
	require.NoError(t, f.Build(vectors, chunks))
	_, err := f.Search([]float32{1, 0}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestBuild_ZeroNormRowsScoreZero(t *testing.T) {
	f := NewFlat(2)
	vectors := [][]float32{{0, 0}, {1, 0}}
	chunks := []domain.Chunk{{Index: 0, Text: "zero"}, {Index: 1, Text: "unit"}}
	require.NoError(t, f.Build(vectors, chunks))
	assert.Equal(t, 1, f.ZeroRows())

	results, err := f.Search([]float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, results[0].Chunk.Index)
	assert.Equal(t, float32(0), results[1].Score)
}

func TestBuild_ReplacesPriorContents(t *testing.T) {
	f := NewFlat(2)
	require.NoError(t, f.Build([][]float32{{1, 0}, {0, 1}}, []domain.Chunk{{Index: 0}, {Index: 1}}))
	require.Equal(t, 2, f.Size())

	require.NoError(t, f.Build([][]float32{{1, 0}}, []domain.Chunk{{Index: 0}}))
	assert.Equal(t, 1, f.Size())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	f := NewFlat(3)
	vectors, chunks := testRows()
	require.NoError(t, f.Build(vectors, chunks))
	require.NoError(t, f.Save(dir))

	restored := NewFlat(3)
	require.NoError(t, restored.Load(dir))
	require.Equal(t, f.Size(), restored.Size())

	query := []float32{1, 2, 0}
	want, err := f.Search(query, 3)
	require.NoError(t, err)
	got, err := restored.Search(query, 3)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Chunk, got[i].Chunk)
		assert.InDelta(t, float64(want[i].Score), float64(got[i].Score), 1e-6)
	}
}

func TestLoad_MissingDirectory(t *testing.T) {
	f := NewFlat(3)
	err := f.Load(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestLoad_RowCountMismatch(t *testing.T) {
	dir := t.TempDir()
	f := NewFlat(3)
	vectors, chunks := testRows()
	require.NoError(t, f.Build(vectors, chunks))
	require.NoError(t, f.Save(dir))

	// Overwrite the metadata table with fewer records than the vector table.
	file, err := os.Create(filepath.Join(dir, chunksFile))
	require.NoError(t, err)
	require.NoError(t, gob.NewEncoder(file).Encode(chunks[:2]))
	require.NoError(t, file.Close())

	err = NewFlat(3).Load(dir)
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestLoad_DimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	f := NewFlat(3)
	vectors, chunks := testRows()
	require.NoError(t, f.Build(vectors, chunks))
	require.NoError(t, f.Save(dir))

	err := NewFlat(5).Load(dir)
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestLoad_CorruptMagic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, vectorsFile), []byte("NOTANIDX"), 0o644))
	err := NewFlat(3).Load(dir)
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f := NewFlat(3)
	vectors, chunks := testRows()
	require.NoError(t, f.Build(vectors, chunks))
	require.NoError(t, f.Save(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}
