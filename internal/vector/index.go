// Package vector builds, persists, and searches per-conversation similarity
// indexes over chunk embeddings.
package vector

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
)

// Entry is one indexed chunk: its embedding plus the metadata needed to
// attribute an answer back to a source file.
type Entry struct {
	FileID   string
	FileName string
	// Seq is the chunk's sequence index within its source file.
	Seq  int
	Text string
	// Vector is the chunk's embedding.
	Vector []float32
}

// Index is an immutable flat similarity index for one conversation. Entries
// keep their build order, which doubles as the tie-break ordinal for search.
type Index struct {
	dimensions int
	entries    []Entry
}

// NewIndex creates an index over entries with the given vector dimension.
func NewIndex(dimensions int, entries []Entry) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	for i, e := range entries {
		if len(e.Vector) != dimensions {
			return nil, fmt.Errorf("entry %d: vector dimension mismatch: got %d, expected %d", i, len(e.Vector), dimensions)
		}
	}
	return &Index{dimensions: dimensions, entries: entries}, nil
}

// Size returns the number of entries.
func (ix *Index) Size() int {
	return len(ix.entries)
}

// Dimensions returns the vector dimension.
func (ix *Index) Dimensions() int {
	return ix.dimensions
}

// Match is a single search hit.
type Match struct {
	Entry Entry
	Score float64
}

// Search returns the k entries most similar to query by cosine similarity,
// descending. Ties are broken by ascending build order, so chunks from
// earlier files (and earlier positions within a file) win.
func (ix *Index) Search(query []float32, k int) ([]Match, error) {
	if len(query) != ix.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), ix.dimensions)
	}
	if k <= 0 || len(ix.entries) == 0 {
		return nil, nil
	}
	type scored struct {
		ordinal int
		score   float64
	}
	scores := make([]scored, len(ix.entries))
	for i, e := range ix.entries {
		scores[i] = scored{ordinal: i, score: cosineSimilarity(query, e.Vector)}
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].ordinal < scores[j].ordinal
	})
	if k > len(scores) {
		k = len(scores)
	}
	matches := make([]Match, k)
	for i := 0; i < k; i++ {
		matches[i] = Match{Entry: ix.entries[scores[i].ordinal], Score: scores[i].score}
	}
	return matches, nil
}

// cosineSimilarity returns the cosine of the angle between a and b.
// Zero-norm inputs score 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// WriteTo serializes the index. Format: dimensions (uint32), entry count
// (uint32), then per entry: file ID, file name, and text as length-prefixed
// strings, seq (uint32), vector (dimensions float32), all little-endian.
func (ix *Index) WriteTo(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(ix.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(ix.entries))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for i, e := range ix.entries {
		if err := writeString(w, e.FileID); err != nil {
			return fmt.Errorf("write entry %d file id: %w", i, err)
		}
		if err := writeString(w, e.FileName); err != nil {
			return fmt.Errorf("write entry %d file name: %w", i, err)
		}
		if err := writeString(w, e.Text); err != nil {
			return fmt.Errorf("write entry %d text: %w", i, err)
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(e.Seq)); err != nil {
			return fmt.Errorf("write entry %d seq: %w", i, err)
		}
		if _, err := w.Write(float32SliceToBytes(e.Vector)); err != nil {
			return fmt.Errorf("write entry %d vector: %w", i, err)
		}
	}
	return nil
}

// ReadIndex deserializes an index from r.
func ReadIndex(r io.Reader) (*Index, error) {
	var dims, n uint32
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return nil, fmt.Errorf("read dimensions: %w", err)
	}
	if dims == 0 {
		return nil, fmt.Errorf("corrupt index: zero dimensions")
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("read count: %w", err)
	}
	entries := make([]Entry, 0, n)
	vecBuf := make([]byte, int(dims)*4)
	for i := uint32(0); i < n; i++ {
		var e Entry
		var err error
		if e.FileID, err = readString(r); err != nil {
			return nil, fmt.Errorf("read entry %d file id: %w", i, err)
		}
		if e.FileName, err = readString(r); err != nil {
			return nil, fmt.Errorf("read entry %d file name: %w", i, err)
		}
		if e.Text, err = readString(r); err != nil {
			return nil, fmt.Errorf("read entry %d text: %w", i, err)
		}
		var seq uint32
		if err := binary.Read(r, binary.LittleEndian, &seq); err != nil {
			return nil, fmt.Errorf("read entry %d seq: %w", i, err)
		}
		e.Seq = int(seq)
		if _, err := io.ReadFull(r, vecBuf); err != nil {
			return nil, fmt.Errorf("read entry %d vector: %w", i, err)
		}
		e.Vector = bytesToFloat32Slice(vecBuf)
		entries = append(entries, e)
	}
	return &Index{dimensions: int(dims), entries: entries}, nil
}

// SaveFile writes the index to path through a temp file and rename, so a
// reader never observes a partially-written index.
func (ix *Index) SaveFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	tmpName := tmp.Name()
	if err := ix.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp index: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
