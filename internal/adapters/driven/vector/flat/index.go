// Package flat provides an exact, in-memory inner-product similarity
// index over the corpus passage vectors. Rows are stored in corpus
// order; row i always corresponds to passage i. The index is built
// offline, loaded once at startup, and never mutated while serving, so
// Search needs no locking.
package flat

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/izu-labs/izuchat/internal/core/domain"
	"github.com/izu-labs/izuchat/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// File format constants. The on-disk layout is:
//
//	magic (4 bytes) | version (uint32) | rows (uint32) | dims (uint32) |
//	rows*dims little-endian float32
const (
	fileMagic   = "IZVX"
	fileVersion = 1
)

// Index is a flat (brute-force) inner-product index.
type Index struct {
	vectors [][]float32
	dims    int
}

// New builds an index from the given vectors, normalizing each row to
// unit L2 length so inner-product search equals cosine similarity.
// Every vector must share the same dimension.
func New(vectors [][]float32) (*Index, error) {
	dims := 0
	for i, v := range vectors {
		if i == 0 {
			dims = len(v)
		}
		if len(v) == 0 || len(v) != dims {
			return nil, fmt.Errorf("vector %d has %d dims, want %d: %w",
				i, len(v), dims, domain.ErrDimensionMismatch)
		}
		domain.NormalizeVector(v)
	}
	return &Index{vectors: vectors, dims: dims}, nil
}

// Load reads an index file written by WriteFile. It fails loudly on a
// bad header or a truncated body rather than padding or truncating.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes an index from r.
func Read(r io.Reader) (*Index, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read index magic: %w", err)
	}
	if string(magic[:]) != fileMagic {
		return nil, fmt.Errorf("bad index magic %q, want %q", magic[:], fileMagic)
	}

	var header struct {
		Version uint32
		Rows    uint32
		Dims    uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read index header: %w", err)
	}
	if header.Version != fileVersion {
		return nil, fmt.Errorf("unsupported index version %d", header.Version)
	}
	if header.Dims == 0 && header.Rows > 0 {
		return nil, fmt.Errorf("index header declares %d rows with zero dims", header.Rows)
	}

	vectors := make([][]float32, header.Rows)
	for i := range vectors {
		row := make([]float32, header.Dims)
		if err := binary.Read(r, binary.LittleEndian, row); err != nil {
			return nil, fmt.Errorf("read index row %d of %d: %w", i, header.Rows, err)
		}
		// Rows are normalized at build time; normalize again so a
		// stale or hand-built file cannot skew scores.
		domain.NormalizeVector(row)
		vectors[i] = row
	}

	return &Index{vectors: vectors, dims: int(header.Dims)}, nil
}

// WriteFile serializes the index for the offline build step.
func (idx *Index) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write([]byte(fileMagic)); err != nil {
		return fmt.Errorf("write index magic: %w", err)
	}
	header := struct {
		Version uint32
		Rows    uint32
		Dims    uint32
	}{fileVersion, uint32(len(idx.vectors)), uint32(idx.dims)}
	if err := binary.Write(f, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("write index header: %w", err)
	}
	for i, row := range idx.vectors {
		if err := binary.Write(f, binary.LittleEndian, row); err != nil {
			return fmt.Errorf("write index row %d: %w", i, err)
		}
	}
	return nil
}

// Search scans every row and returns the top k by inner product,
// descending, ties broken by ascending row so results are reproducible
// for a deterministic build order.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k < 1 {
		return nil, domain.ErrInvalidTopK
	}
	if len(idx.vectors) == 0 {
		return []driven.VectorHit{}, nil
	}
	if len(query) != idx.dims {
		return nil, fmt.Errorf("query has %d dims, index has %d: %w",
			len(query), idx.dims, domain.ErrDimensionMismatch)
	}

	hits := make([]driven.VectorHit, len(idx.vectors))
	for i, row := range idx.vectors {
		hits[i] = driven.VectorHit{Row: i, Score: domain.DotProduct(query, row)}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Row < hits[j].Row
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	return len(idx.vectors)
}

// Dimensions returns the vector size of the index.
func (idx *Index) Dimensions() int {
	return idx.dims
}

// Close releases resources. The flat index holds only memory.
func (idx *Index) Close() error {
	return nil
}
