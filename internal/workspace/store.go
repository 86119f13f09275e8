// Package workspace persists the document tree (workspaces, file nodes,
// conversations) and walks file graphs for ingestion.
package workspace

import (
	"context"

	"github.com/driftlab/kaiwa/internal/models"
)

// Store defines workspace, file-node, and conversation persistence.
// File nodes are owned and mutated here; the ingestion core only reads them.
type Store interface {
	// Workspace operations
	CreateWorkspace(ctx context.Context, ws *models.Workspace) error
	GetWorkspace(ctx context.Context, id string) (*models.Workspace, error)
	AttachFile(ctx context.Context, workspaceID, fileID string) error

	// File node operations
	CreateFile(ctx context.Context, f *models.FileNode) error
	GetFile(ctx context.Context, id string) (*models.FileNode, error)
	UpdateFile(ctx context.Context, f *models.FileNode) error
	DeleteFile(ctx context.Context, id string) error

	// Conversation operations
	SaveConversation(ctx context.Context, c *models.Conversation) error
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)

	// Stats
	CountWorkspaces(ctx context.Context) (int64, error)
	CountFiles(ctx context.Context) (int64, error)
	CountConversations(ctx context.Context) (int64, error)

	Close() error
}
