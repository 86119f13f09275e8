package vector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/driftlab/kaiwa/internal/gateway"
	"github.com/driftlab/kaiwa/internal/models"
)

// Manager owns the build/load lifecycle of per-conversation indexes. Each
// conversation's index lives at a path derived from its identifier; Build
// replaces it wholesale and Load opens it read-only. A keyed mutex serializes
// operations on the same conversation so a reader never races a writer.
// There is no incremental append: every build is a full rebuild.
type Manager struct {
	dir     string
	gateway gateway.Gateway
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates the index directory if needed. logger may be nil.
func NewManager(dir string, gw gateway.Gateway, logger *zap.Logger) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		dir:     dir,
		gateway: gw,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}, nil
}

// IndexPath returns the storage path derived from a conversation identifier.
func (m *Manager) IndexPath(conversationID string) string {
	return filepath.Join(m.dir, sanitizeID(conversationID)+".idx")
}

// lockFor returns the mutex serializing operations on one conversation.
func (m *Manager) lockFor(conversationID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[conversationID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[conversationID] = l
	}
	return l
}

// Build embeds every chunk, constructs a fresh index, and atomically replaces
// any prior index for the conversation. Fails with models.ErrEmptyCorpus when
// chunks is empty; on any failure no artifact is written or modified.
func (m *Manager) Build(ctx context.Context, conversationID string, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("build %s: %w", conversationID, models.ErrEmptyCorpus)
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := m.gateway.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}
	entries := make([]Entry, len(chunks))
	for i, ch := range chunks {
		entries[i] = Entry{
			FileID:   ch.FileID,
			FileName: ch.FileName,
			Seq:      ch.Seq,
			Text:     ch.Text,
			Vector:   vectors[i],
		}
	}
	ix, err := NewIndex(m.gateway.Dimensions(), entries)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	l := m.lockFor(conversationID)
	l.Lock()
	defer l.Unlock()
	if err := ix.SaveFile(m.IndexPath(conversationID)); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	m.logger.Info("vector index built",
		zap.String("conversation_id", conversationID),
		zap.Int("chunks", len(chunks)),
	)
	return nil
}

// Load opens the persisted index for a conversation. Fails with
// models.ErrIndexNotFound when none exists.
func (m *Manager) Load(ctx context.Context, conversationID string) (*Index, error) {
	l := m.lockFor(conversationID)
	l.Lock()
	defer l.Unlock()
	f, err := os.Open(m.IndexPath(conversationID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("conversation %s: %w", conversationID, models.ErrIndexNotFound)
		}
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()
	ix, err := ReadIndex(f)
	if err != nil {
		return nil, fmt.Errorf("load index for %s: %w", conversationID, err)
	}
	return ix, nil
}

// Search embeds queryText through the gateway and returns the k most similar
// entries of ix, best first.
func (m *Manager) Search(ctx context.Context, ix *Index, queryText string, k int) ([]Match, error) {
	vectors, err := m.gateway.Embed(ctx, []string{queryText})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vectors))
	}
	return ix.Search(vectors[0], k)
}

// sanitizeID maps a conversation identifier to a safe file name component.
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}
