package ingest

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/driftlab/kaiwa/internal/extract"
	"github.com/driftlab/kaiwa/internal/models"
	"github.com/driftlab/kaiwa/internal/vector"
	"github.com/driftlab/kaiwa/internal/workspace"
)

// Ingestor rebuilds a conversation's index from a document tree. Every run
// is a full rebuild; a failed run leaves any previous index untouched.
type Ingestor struct {
	store     workspace.Store
	blobs     *workspace.BlobStore
	extractor *extract.Extractor
	chunker   *Chunker
	manager   *vector.Manager
	logger    *zap.Logger
}

// NewIngestor wires an ingestor from its collaborators. logger may be nil.
func NewIngestor(
	store workspace.Store,
	blobs *workspace.BlobStore,
	extractor *extract.Extractor,
	chunker *Chunker,
	manager *vector.Manager,
	logger *zap.Logger,
) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		store:     store,
		blobs:     blobs,
		extractor: extractor,
		chunker:   chunker,
		manager:   manager,
		logger:    logger,
	}
}

// Ingest walks the tree under rootFileID, extracts and chunks each distinct
// document once, builds the conversation's index, and records the
// conversation. Per-file extraction failures contribute empty text and are
// only logged; a tree with no extractable content at all fails with
// models.ErrNotFound before any index is touched.
func (ing *Ingestor) Ingest(ctx context.Context, conversationID, rootFileID string) (*models.IngestResult, error) {
	walker := workspace.NewWalker(ing.store.GetFile, ing.readContent, ing.logger)
	files, err := walker.Walk(ctx, rootFileID)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for _, wf := range files {
		text := ing.extractor.Extract(wf.File.Name, wf.Content, contentExt(wf.File))
		pieces := ing.chunker.Chunk(text)
		for seq, piece := range pieces {
			chunks = append(chunks, models.Chunk{
				FileID:   wf.File.ID,
				FileName: wf.File.Name,
				Seq:      seq,
				Text:     piece,
			})
		}
		ing.logger.Debug("file chunked",
			zap.String("file_id", wf.File.ID),
			zap.String("name", wf.File.Name),
			zap.Int("chunks", len(pieces)),
		)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no extractable content under root %s: %w", rootFileID, models.ErrNotFound)
	}

	if err := ing.manager.Build(ctx, conversationID, chunks); err != nil {
		return nil, err
	}

	conv := &models.Conversation{ID: conversationID, Name: conversationID}
	if existing, err := ing.store.GetConversation(ctx, conversationID); err == nil {
		conv = existing
	}
	conv.IndexPath = ing.manager.IndexPath(conversationID)
	if err := ing.store.SaveConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("record conversation: %w", err)
	}

	ing.logger.Info("ingestion complete",
		zap.String("conversation_id", conversationID),
		zap.Int("files", len(files)),
		zap.Int("chunks", len(chunks)),
	)
	return &models.IngestResult{
		FilesProcessed: len(files),
		ChunksIndexed:  len(chunks),
	}, nil
}

func (ing *Ingestor) readContent(node *models.FileNode) ([]byte, error) {
	return ing.blobs.Read(node.StoredName)
}

// contentExt prefers the stored blob's extension (uploads keep it) and falls
// back to the display name's.
func contentExt(node *models.FileNode) string {
	if ext := filepath.Ext(node.StoredName); ext != "" {
		return ext
	}
	return filepath.Ext(node.Name)
}
