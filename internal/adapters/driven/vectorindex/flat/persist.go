package flat

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/custodia-labs/samarth/internal/core/domain"
)

// Persisted file names.
const (
	IndexFile     = "index.bin"
	DocumentsFile = "documents.json"
	MetadataFile  = "metadata.json"
)

// magic identifies the index.bin format.
var magic = [4]byte{'S', 'V', 'I', '1'}

const headerSize = 12

// Persist writes a snapshot of the index to its directory. The files are
// written to a staging directory and renamed into place. No index lock is
// held during I/O.
func (x *Index) Persist() error {
	if x.dir == "" {
		return nil
	}

	x.persistMu.Lock()
	defer x.persistMu.Unlock()

	texts, metadata, vectors := x.snapshot()

	staging := x.dir + ".tmp"
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("clearing staging directory: %w", err)
	}
	if err := os.MkdirAll(staging, 0700); err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}

	if err := writeFileSync(filepath.Join(staging, IndexFile), encodeVectors(x.dim, len(texts), vectors)); err != nil {
		return err
	}
	docs, err := json.Marshal(texts)
	if err != nil {
		return fmt.Errorf("encoding documents: %w", err)
	}
	if err := writeFileSync(filepath.Join(staging, DocumentsFile), docs); err != nil {
		return err
	}
	if metadata == nil {
		metadata = []domain.Metadata{}
	}
	md, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := writeFileSync(filepath.Join(staging, MetadataFile), md); err != nil {
		return err
	}

	return swapDir(staging, x.dir)
}

// Restore loads a persisted index. It returns false when the directory is
// missing or empty and an error wrapping domain.ErrCorruptIndex when the files
// exist but are inconsistent. On any error the index is left unchanged.
func (x *Index) Restore() (bool, error) {
	if x.dir == "" {
		return false, nil
	}

	x.persistMu.Lock()
	defer x.persistMu.Unlock()

	if err := recoverInterruptedSwap(x.dir); err != nil {
		return false, err
	}

	raw, err := os.ReadFile(filepath.Join(x.dir, IndexFile))
	if errors.Is(err, fs.ErrNotExist) {
		return false, checkNothingPersisted(x.dir)
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", IndexFile, err)
	}

	n, vectors, err := decodeVectors(x.dim, raw)
	if err != nil {
		return false, err
	}

	var texts []string
	if err := readJSON(filepath.Join(x.dir, DocumentsFile), &texts); err != nil {
		return false, err
	}
	var metadata []domain.Metadata
	if err := readJSON(filepath.Join(x.dir, MetadataFile), &metadata); err != nil {
		return false, err
	}

	if len(texts) != n || len(metadata) != n {
		return false, fmt.Errorf("%w: %d vectors, %d documents, %d metadata entries",
			domain.ErrCorruptIndex, n, len(texts), len(metadata))
	}

	x.replace(texts, metadata, vectors)
	return true, nil
}

// checkNothingPersisted reports a directory holding files without an
// index.bin as corrupt.
func checkNothingPersisted(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading index directory: %w", err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("%w: %s missing alongside %s", domain.ErrCorruptIndex, IndexFile, entries[0].Name())
	}
	return nil
}

// encodeVectors renders the index.bin payload.
func encodeVectors(dim, n int, vectors []float32) []byte {
	out := make([]byte, headerSize+4*len(vectors))
	copy(out[0:4], magic[:])
	binary.LittleEndian.PutUint32(out[4:8], uint32(dim))
	binary.LittleEndian.PutUint32(out[8:12], uint32(n))
	off := headerSize
	for _, v := range vectors {
		binary.LittleEndian.PutUint32(out[off:off+4], math.Float32bits(v))
		off += 4
	}
	return out
}

// decodeVectors validates and parses an index.bin payload.
func decodeVectors(dim int, data []byte) (int, []float32, error) {
	if len(data) < headerSize {
		return 0, nil, fmt.Errorf("%w: %s truncated header", domain.ErrCorruptIndex, IndexFile)
	}
	if [4]byte(data[0:4]) != magic {
		return 0, nil, fmt.Errorf("%w: %s has bad magic %q", domain.ErrCorruptIndex, IndexFile, data[0:4])
	}
	gotDim := int(binary.LittleEndian.Uint32(data[4:8]))
	if gotDim != dim {
		return 0, nil, fmt.Errorf("%w: %s has dimension %d, embedder produces %d",
			domain.ErrCorruptIndex, IndexFile, gotDim, dim)
	}
	n := int(binary.LittleEndian.Uint32(data[8:12]))
	if want := headerSize + 4*n*dim; len(data) != want {
		return 0, nil, fmt.Errorf("%w: %s is %d bytes, expected %d for %d vectors",
			domain.ErrCorruptIndex, IndexFile, len(data), want, n)
	}

	vectors := make([]float32, n*dim)
	off := headerSize
	for i := range vectors {
		vectors[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
		off += 4
	}
	return n, vectors, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s missing", domain.ErrCorruptIndex, filepath.Base(path))
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrCorruptIndex, filepath.Base(path), err)
	}
	return nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// swapDir replaces dir with staging. The previous directory is parked at
// dir.old until the new one is in place.
func swapDir(staging, dir string) error {
	old := dir + ".old"
	if err := os.RemoveAll(old); err != nil {
		return fmt.Errorf("clearing previous backup: %w", err)
	}

	hadPrevious := true
	if err := os.Rename(dir, old); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("moving previous index aside: %w", err)
		}
		hadPrevious = false
	}

	if err := os.Rename(staging, dir); err != nil {
		if hadPrevious {
			_ = os.Rename(old, dir)
		}
		return fmt.Errorf("installing index: %w", err)
	}

	if hadPrevious {
		if err := os.RemoveAll(old); err != nil {
			return fmt.Errorf("removing previous index: %w", err)
		}
	}
	return nil
}

// recoverInterruptedSwap restores dir.old when a crash happened between
// the two renames of swapDir.
func recoverInterruptedSwap(dir string) error {
	if _, err := os.Stat(dir); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	old := dir + ".old"
	if _, err := os.Stat(old); err != nil {
		return nil
	}
	if err := os.Rename(old, dir); err != nil {
		return fmt.Errorf("recovering previous index: %w", err)
	}
	return nil
}
