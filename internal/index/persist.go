package index

import (
	"bufio"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"docsearch/internal/domain"
	"docsearch/internal/mathutil"
)

// On-disk layout: two co-located files written and read as one unit.
// vectors.bin holds the row count, dimension and raw float32 matrix;
// chunks.gob holds one metadata record per row in the same order.
const (
	vectorsFile = "vectors.bin"
	chunksFile  = "chunks.gob"

	vectorsMagic   = "DSFLAT01"
	maxStoredRows  = 1 << 24
	maxStoredWidth = 1 << 16
)

// Save persists the index under dir. Both files are written to temporary
// names and renamed into place, so a crash mid-write never leaves a
// half-written index where Load would find it.
func (f *Flat) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := writeAtomic(filepath.Join(dir, vectorsFile), f.writeVectors); err != nil {
		return fmt.Errorf("index: saving vectors: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, chunksFile), f.writeChunks); err != nil {
		return fmt.Errorf("index: saving chunks: %w", err)
	}
	return nil
}

// Load restores a previously saved index from dir, replacing any contents.
// It fails with ErrIndexNotFound when either file is missing, when the row
// counts of the two files disagree, or when the stored dimension does not
// match the index's configured dimension.
func (f *Flat) Load(dir string) error {
	vectors, dim, err := readVectors(filepath.Join(dir, vectorsFile), f.dim)
	if err != nil {
		return err
	}
	chunks, err := readChunks(filepath.Join(dir, chunksFile))
	if err != nil {
		return err
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %s has %d rows but %s has %d records",
			ErrIndexNotFound, vectorsFile, len(vectors), chunksFile, len(chunks))
	}

	zero := 0
	for _, v := range vectors {
		if mathutil.IsZero(v) {
			zero++
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.dim = dim
	f.vectors = vectors
	f.chunks = chunks
	f.zeroRows = zero
	return nil
}

func (f *Flat) writeVectors(w io.Writer) error {
	if _, err := w.Write([]byte(vectorsMagic)); err != nil {
		return err
	}
	header := []uint32{uint32(len(f.vectors)), uint32(f.dim)}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	for _, row := range f.vectors {
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return err
		}
	}
	return nil
}

func (f *Flat) writeChunks(w io.Writer) error {
	return gob.NewEncoder(w).Encode(f.chunks)
}

func readVectors(path string, wantDim int) ([][]float32, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
	}
	defer file.Close()
	r := bufio.NewReader(file)

	magic := make([]byte, len(vectorsMagic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != vectorsMagic {
		return nil, 0, fmt.Errorf("%w: %s is not a vector table", ErrIndexNotFound, path)
	}
	var header [2]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, 0, fmt.Errorf("%w: %s: truncated header", ErrIndexNotFound, path)
	}
	rows, dim := int(header[0]), int(header[1])
	if rows > maxStoredRows || dim == 0 || dim > maxStoredWidth {
		return nil, 0, fmt.Errorf("%w: %s: implausible shape %dx%d", ErrIndexNotFound, path, rows, dim)
	}
	if wantDim > 0 && dim != wantDim {
		return nil, 0, fmt.Errorf("%w: %s stores dimension %d, expected %d", ErrIndexNotFound, path, dim, wantDim)
	}

	vectors := make([][]float32, rows)
	for i := range vectors {
		row := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, row); err != nil {
			return nil, 0, fmt.Errorf("%w: %s: truncated at row %d", ErrIndexNotFound, path, i)
		}
		vectors[i] = row
	}
	return vectors, dim, nil
}

func readChunks(path string) ([]domain.Chunk, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
	}
	defer file.Close()

	var chunks []domain.Chunk
	if err := gob.NewDecoder(bufio.NewReader(file)).Decode(&chunks); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIndexNotFound, path, err)
	}
	return chunks, nil
}

// writeAtomic writes via a temporary file and renames it into place.
func writeAtomic(path string, write func(io.Writer) error) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(file)
	if err := write(w); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := w.Flush(); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
