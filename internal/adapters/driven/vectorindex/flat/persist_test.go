package flat

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/samarth/internal/core/domain"
)

func persistedIndex(t *testing.T) (*Index, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "index")
	x, err := New(3, dir)
	require.NoError(t, err)

	require.NoError(t, x.Add(
		[][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		[]string{"punjab wheat", "kerala rice", "konkan rain"},
		[]domain.Metadata{
			domain.NewCropMetadata(domain.CropProduction{State: "Punjab", Crop: "Wheat", Year: 2020}),
			domain.NewCropMetadata(domain.CropProduction{State: "Kerala", Crop: "Rice", Year: 2019}),
			domain.NewRainfallMetadata(domain.Rainfall{Subdivision: "Konkan & Goa", Year: 2015, Annual: 2900}),
		},
	))
	require.NoError(t, x.Persist())
	return x, dir
}

func TestPersistRestore_RoundTrip(t *testing.T) {
	original, dir := persistedIndex(t)

	restored, err := New(3, dir)
	require.NoError(t, err)
	ok, err := restored.Restore()
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, original.Stats(), restored.Stats())

	query := []float32{0.1, 0.9, 0.2}
	want, err := original.Search(query, 3)
	require.NoError(t, err)
	got, err := restored.Search(query, 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "Kerala", got[0].Metadata.Crop.State)
}

func TestPersist_NoStagingLeftBehind(t *testing.T) {
	x, dir := persistedIndex(t)
	require.NoError(t, x.Persist())

	_, err := os.Stat(dir + ".tmp")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(dir + ".old")
	assert.True(t, os.IsNotExist(err))

	for _, name := range []string{IndexFile, DocumentsFile, MetadataFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestPersist_EmptyIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	x, err := New(2, dir)
	require.NoError(t, err)
	require.NoError(t, x.Persist())

	restored, err := New(2, dir)
	require.NoError(t, err)
	ok, err := restored.Restore()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, restored.Len())
}

func TestRestore_MissingDirectory(t *testing.T) {
	x, err := New(3, filepath.Join(t.TempDir(), "nothing"))
	require.NoError(t, err)

	ok, err := x.Restore()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, x.Len())
}

func TestRestore_EmptyDirectory(t *testing.T) {
	x, err := New(3, t.TempDir())
	require.NoError(t, err)

	ok, err := x.Restore()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRestore_RecoversInterruptedSwap(t *testing.T) {
	_, dir := persistedIndex(t)
	require.NoError(t, os.Rename(dir, dir+".old"))

	x, err := New(3, dir)
	require.NoError(t, err)
	ok, err := x.Restore()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, x.Len())
}

func TestRestore_Corruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(t *testing.T, dir string)
	}{
		{
			name: "bad magic",
			corrupt: func(t *testing.T, dir string) {
				path := filepath.Join(dir, IndexFile)
				data, err := os.ReadFile(path)
				require.NoError(t, err)
				copy(data[0:4], "XXXX")
				require.NoError(t, os.WriteFile(path, data, 0600))
			},
		},
		{
			name: "truncated vectors",
			corrupt: func(t *testing.T, dir string) {
				path := filepath.Join(dir, IndexFile)
				data, err := os.ReadFile(path)
				require.NoError(t, err)
				require.NoError(t, os.WriteFile(path, data[:len(data)-4], 0600))
			},
		},
		{
			name: "truncated header",
			corrupt: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte("SVI"), 0600))
			},
		},
		{
			name: "wrong dimension",
			corrupt: func(t *testing.T, dir string) {
				path := filepath.Join(dir, IndexFile)
				data, err := os.ReadFile(path)
				require.NoError(t, err)
				binary.LittleEndian.PutUint32(data[4:8], 4)
				require.NoError(t, os.WriteFile(path, data, 0600))
			},
		},
		{
			name: "document count disagrees",
			corrupt: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, DocumentsFile), []byte(`["only one"]`), 0600))
			},
		},
		{
			name: "invalid metadata json",
			corrupt: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFile), []byte(`{not json`), 0600))
			},
		},
		{
			name: "unknown metadata type",
			corrupt: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFile),
					[]byte(`[{"type":"soil"},{"type":"soil"},{"type":"soil"}]`), 0600))
			},
		},
		{
			name: "missing index file",
			corrupt: func(t *testing.T, dir string) {
				require.NoError(t, os.Remove(filepath.Join(dir, IndexFile)))
			},
		},
		{
			name: "missing documents file",
			corrupt: func(t *testing.T, dir string) {
				require.NoError(t, os.Remove(filepath.Join(dir, DocumentsFile)))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, dir := persistedIndex(t)
			tt.corrupt(t, dir)

			x, err := New(3, dir)
			require.NoError(t, err)
			ok, err := x.Restore()
			assert.ErrorIs(t, err, domain.ErrCorruptIndex)
			assert.False(t, ok)
			assert.Zero(t, x.Len())
		})
	}
}

func TestEncodeDecodeVectors(t *testing.T) {
	vectors := []float32{1.5, -2, 0, 3.25}
	data := encodeVectors(2, 2, vectors)

	assert.Equal(t, "SVI1", string(data[0:4]))
	n, got, err := decodeVectors(2, data)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, vectors, got)
}
