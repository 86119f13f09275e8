package workspace

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/driftlab/kaiwa/internal/models"
)

// Lookup resolves a file node by ID. A missing node must wrap models.ErrNotFound.
type Lookup func(ctx context.Context, id string) (*models.FileNode, error)

// ReadContent returns the raw uploaded bytes of a leaf node.
type ReadContent func(node *models.FileNode) ([]byte, error)

// WalkedFile is one emitted leaf: the node plus its raw content.
type WalkedFile struct {
	File    *models.FileNode
	Content []byte
}

// Walker flattens a file graph into an ordered, deduplicated content sequence.
type Walker struct {
	lookup Lookup
	read   ReadContent
	logger *zap.Logger
}

// NewWalker creates a walker over the given lookup and content reader.
// logger may be nil.
func NewWalker(lookup Lookup, read ReadContent, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{lookup: lookup, read: read, logger: logger}
}

// Walk traverses the graph rooted at rootID in pre-order: a node's own
// content is emitted before its children, children in stored order. A visited
// set keyed by node ID guarantees each distinct node is processed at most
// once and that traversal terminates even if the graph has shared references
// or cycles. An unresolvable root is fatal; an unresolvable child is logged
// and skipped so partial graph corruption never aborts its siblings.
func (w *Walker) Walk(ctx context.Context, rootID string) ([]WalkedFile, error) {
	root, err := w.lookup(ctx, rootID)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", rootID, err)
	}
	visited := make(map[string]bool)
	var out []WalkedFile
	w.visit(ctx, root, visited, &out)
	return out, nil
}

func (w *Walker) visit(ctx context.Context, node *models.FileNode, visited map[string]bool, out *[]WalkedFile) {
	if visited[node.ID] {
		return
	}
	visited[node.ID] = true

	if node.StoredName != "" {
		content, err := w.read(node)
		if err != nil {
			// Missing blob is treated like a missed dependency: log and move on.
			w.logger.Warn("walker: content unreadable, skipping",
				zap.String("file_id", node.ID), zap.String("name", node.Name), zap.Error(err))
		} else {
			*out = append(*out, WalkedFile{File: node, Content: content})
		}
	}

	for _, childID := range node.Children {
		if visited[childID] {
			continue
		}
		child, err := w.lookup(ctx, childID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				w.logger.Warn("walker: dangling child reference, skipping",
					zap.String("parent_id", node.ID), zap.String("child_id", childID))
				continue
			}
			w.logger.Warn("walker: child lookup failed, skipping",
				zap.String("parent_id", node.ID), zap.String("child_id", childID), zap.Error(err))
			continue
		}
		w.visit(ctx, child, visited, out)
	}
}
