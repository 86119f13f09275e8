package vector

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testEntries() []Entry {
	return []Entry{
		{FileID: "f1", FileName: "a.txt", Seq: 0, Text: "first chunk", Vector: []float32{1, 0, 0}},
		{FileID: "f1", FileName: "a.txt", Seq: 1, Text: "second chunk", Vector: []float32{0.9, 0.1, 0}},
		{FileID: "f2", FileName: "b.md", Seq: 0, Text: "other topic", Vector: []float32{0, 1, 0}},
	}
}

func TestNewIndex_DimensionMismatch(t *testing.T) {
	if _, err := NewIndex(0, nil); err == nil {
		t.Error("zero dimensions should fail")
	}
	entries := []Entry{{Vector: []float32{1, 2}}}
	if _, err := NewIndex(3, entries); err == nil {
		t.Error("mismatched entry vector should fail")
	}
}

func TestIndex_Search(t *testing.T) {
	ix, err := NewIndex(3, testEntries())
	if err != nil {
		t.Fatal(err)
	}
	if ix.Size() != 3 {
		t.Errorf("Size=%d", ix.Size())
	}

	matches, err := ix.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Entry.Text != "first chunk" {
		t.Errorf("top match should be the aligned vector, got %q", matches[0].Entry.Text)
	}
	if matches[0].Score < matches[1].Score {
		t.Error("matches must be in descending score order")
	}
}

func TestIndex_SearchTieBreak(t *testing.T) {
	entries := []Entry{
		{FileID: "f2", FileName: "late.txt", Seq: 0, Text: "late", Vector: []float32{1, 0}},
		{FileID: "f1", FileName: "early.txt", Seq: 0, Text: "early", Vector: []float32{1, 0}},
	}
	ix, err := NewIndex(2, entries)
	if err != nil {
		t.Fatal(err)
	}
	matches, err := ix.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	// Identical scores: build order wins.
	if matches[0].Entry.Text != "late" || matches[1].Entry.Text != "early" {
		t.Errorf("tie must break by build order: got %q then %q",
			matches[0].Entry.Text, matches[1].Entry.Text)
	}
}

func TestIndex_SearchBounds(t *testing.T) {
	ix, err := NewIndex(3, testEntries())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ix.Search([]float32{1, 0}, 2); err == nil {
		t.Error("query dimension mismatch should fail")
	}
	matches, err := ix.Search([]float32{1, 0, 0}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 3 {
		t.Errorf("k beyond size should clamp: got %d", len(matches))
	}
	matches, err = ix.Search([]float32{1, 0, 0}, 0)
	if err != nil || matches != nil {
		t.Errorf("k=0 should yield no matches, got %v, %v", matches, err)
	}
}

func TestIndex_Roundtrip(t *testing.T) {
	entries := testEntries()
	entries[0].Text = "unicode text 日本語 and\nnewlines"
	ix, err := NewIndex(3, entries)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := ix.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	loaded, err := ReadIndex(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != ix.Size() || loaded.Dimensions() != ix.Dimensions() {
		t.Fatalf("shape mismatch: size %d dims %d", loaded.Size(), loaded.Dimensions())
	}
	for i := range entries {
		got := loaded.entries[i]
		want := entries[i]
		if got.FileID != want.FileID || got.FileName != want.FileName ||
			got.Seq != want.Seq || got.Text != want.Text {
			t.Errorf("entry %d metadata mismatch: %+v", i, got)
		}
		for j := range want.Vector {
			if got.Vector[j] != want.Vector[j] {
				t.Errorf("entry %d vector[%d] mismatch", i, j)
			}
		}
	}
}

func TestReadIndex_Corrupt(t *testing.T) {
	if _, err := ReadIndex(bytes.NewReader([]byte{1, 2})); err == nil {
		t.Error("truncated header should fail")
	}
	if _, err := ReadIndex(bytes.NewReader([]byte{0, 0, 0, 0, 1, 0, 0, 0})); err == nil {
		t.Error("zero dimensions should fail")
	}
}

func TestIndex_SaveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conv.idx")
	ix, err := NewIndex(3, testEntries())
	if err != nil {
		t.Fatal(err)
	}
	if err := ix.SaveFile(path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	loaded, err := ReadIndex(f)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != 3 {
		t.Errorf("Size=%d", loaded.Size())
	}

	// No temp files left behind.
	names, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range names {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("stray temp file %s", e.Name())
		}
	}
}

func TestIndex_SaveFileOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.idx")
	first, _ := NewIndex(3, testEntries())
	if err := first.SaveFile(path); err != nil {
		t.Fatal(err)
	}
	second, _ := NewIndex(2, []Entry{
		{FileID: "g1", FileName: "new.txt", Seq: 0, Text: "replacement", Vector: []float32{1, 1}},
	})
	if err := second.SaveFile(path); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	loaded, err := ReadIndex(f)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != 1 || loaded.Dimensions() != 2 {
		t.Errorf("old index not replaced: size %d dims %d", loaded.Size(), loaded.Dimensions())
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Errorf("identical vectors: %f", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors: %f", got)
	}
	if got := cosineSimilarity([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Errorf("zero vector must score 0, got %f", got)
	}
}
