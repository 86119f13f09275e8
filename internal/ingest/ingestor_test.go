package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/driftlab/kaiwa/internal/extract"
	"github.com/driftlab/kaiwa/internal/gateway"
	"github.com/driftlab/kaiwa/internal/models"
	"github.com/driftlab/kaiwa/internal/vector"
	"github.com/driftlab/kaiwa/internal/workspace"
)

type ingestFixture struct {
	store    *workspace.SQLiteStore
	blobs    *workspace.BlobStore
	manager  *vector.Manager
	ingestor *Ingestor
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()
	dir := t.TempDir()
	store, err := workspace.NewSQLiteStore(filepath.Join(dir, "db.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	blobs, err := workspace.NewBlobStore(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatal(err)
	}
	gw := gateway.NewMockGateway(8)
	manager, err := vector.NewManager(filepath.Join(dir, "indexes"), gw, nil)
	if err != nil {
		t.Fatal(err)
	}
	chunker, err := NewChunker(100, 20)
	if err != nil {
		t.Fatal(err)
	}
	ingestor := NewIngestor(store, blobs, extract.NewExtractor(nil), chunker, manager, nil)
	return &ingestFixture{store: store, blobs: blobs, manager: manager, ingestor: ingestor}
}

// addFile stores content as a blob and creates its node.
func (f *ingestFixture) addFile(t *testing.T, id, name, content string, children []string) {
	t.Helper()
	node := &models.FileNode{ID: id, OwnerID: "u1", Name: name, Children: children}
	if content != "" {
		storedName, err := f.blobs.Save(name, strings.NewReader(content))
		if err != nil {
			t.Fatal(err)
		}
		node.StoredName = storedName
	}
	if err := f.store.CreateFile(context.Background(), node); err != nil {
		t.Fatal(err)
	}
}

func TestIngestor_FullPipeline(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	f.addFile(t, "leaf1", "a.txt", strings.Repeat("alpha content ", 20), nil)
	f.addFile(t, "leaf2", "b.md", "short note", nil)
	f.addFile(t, "root", "folder", "", []string{"leaf1", "leaf2"})

	result, err := f.ingestor.Ingest(ctx, "conv1", "root")
	if err != nil {
		t.Fatal(err)
	}
	if result.FilesProcessed != 2 {
		t.Errorf("files processed %d", result.FilesProcessed)
	}
	if result.ChunksIndexed < 3 {
		t.Errorf("chunks indexed %d", result.ChunksIndexed)
	}

	ix, err := f.manager.Load(ctx, "conv1")
	if err != nil {
		t.Fatal(err)
	}
	if ix.Size() != result.ChunksIndexed {
		t.Errorf("index size %d, reported %d", ix.Size(), result.ChunksIndexed)
	}

	conv, err := f.store.GetConversation(ctx, "conv1")
	if err != nil {
		t.Fatal(err)
	}
	if conv.IndexPath != f.manager.IndexPath("conv1") {
		t.Errorf("conversation index path %q", conv.IndexPath)
	}
}

func TestIngestor_SharedNodeCountedOnce(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	f.addFile(t, "shared", "shared.txt", "shared content here", nil)
	f.addFile(t, "mid", "mid", "", []string{"shared"})
	f.addFile(t, "root", "root", "", []string{"shared", "mid"})

	result, err := f.ingestor.Ingest(ctx, "conv1", "root")
	if err != nil {
		t.Fatal(err)
	}
	if result.FilesProcessed != 1 {
		t.Errorf("shared node must be processed once, got %d", result.FilesProcessed)
	}
}

func TestIngestor_MissingRoot(t *testing.T) {
	f := newIngestFixture(t)
	_, err := f.ingestor.Ingest(context.Background(), "conv1", "ghost")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIngestor_NoExtractableContent(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	// A folder of unsupported files extracts nothing.
	f.addFile(t, "bin", "tool.exe", "\x00\x01\x02", nil)
	f.addFile(t, "root", "root", "", []string{"bin"})

	_, err := f.ingestor.Ingest(ctx, "conv1", "root")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	// Nothing may have been built.
	if _, err := f.manager.Load(ctx, "conv1"); !errors.Is(err, models.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestIngestor_CorruptFileSkipped(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	f.addFile(t, "good", "good.txt", "usable text content", nil)
	f.addFile(t, "bad", "bad.docx", "this is not a real docx", nil)
	f.addFile(t, "root", "root", "", []string{"good", "bad"})

	result, err := f.ingestor.Ingest(ctx, "conv1", "root")
	if err != nil {
		t.Fatal(err)
	}
	// The corrupt file contributes empty text but still counts as walked.
	if result.FilesProcessed != 2 {
		t.Errorf("files processed %d", result.FilesProcessed)
	}
	if result.ChunksIndexed != 1 {
		t.Errorf("chunks indexed %d", result.ChunksIndexed)
	}
}

func TestIngestor_SeqContiguousPerFile(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	f.addFile(t, "long", "long.txt", strings.Repeat("0123456789", 30), nil)
	if _, err := f.ingestor.Ingest(ctx, "conv1", "long"); err != nil {
		t.Fatal(err)
	}
	ix, err := f.manager.Load(ctx, "conv1")
	if err != nil {
		t.Fatal(err)
	}
	matches, err := f.manager.Search(ctx, ix, "0123456789", ix.Size())
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[int]bool)
	for _, m := range matches {
		seen[m.Entry.Seq] = true
	}
	for i := 0; i < len(matches); i++ {
		if !seen[i] {
			t.Errorf("missing seq %d", i)
		}
	}
}

func TestIngestor_RebuildReplacesIndex(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	f.addFile(t, "v1", "v1.txt", strings.Repeat("first version ", 30), nil)
	if _, err := f.ingestor.Ingest(ctx, "conv1", "v1"); err != nil {
		t.Fatal(err)
	}
	first, err := f.manager.Load(ctx, "conv1")
	if err != nil {
		t.Fatal(err)
	}

	f.addFile(t, "v2", "v2.txt", "tiny", nil)
	if _, err := f.ingestor.Ingest(ctx, "conv1", "v2"); err != nil {
		t.Fatal(err)
	}
	second, err := f.manager.Load(ctx, "conv1")
	if err != nil {
		t.Fatal(err)
	}
	if second.Size() >= first.Size() {
		t.Errorf("rebuild must replace, sizes %d -> %d", first.Size(), second.Size())
	}
}
