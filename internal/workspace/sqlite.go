package workspace

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/driftlab/kaiwa/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS workspaces (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		files TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		stored_name TEXT,
		children TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_files_owner_id ON files(owner_id);

	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		index_path TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateWorkspace inserts a workspace.
func (s *SQLiteStore) CreateWorkspace(ctx context.Context, ws *models.Workspace) error {
	filesJSON, err := json.Marshal(ws.Files)
	if err != nil {
		return fmt.Errorf("failed to marshal file list: %w", err)
	}
	now := time.Now()
	ws.CreatedAt = now
	ws.UpdatedAt = now
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO workspaces (id, owner_id, name, files, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ws.ID, ws.OwnerID, ws.Name, string(filesJSON), ws.CreatedAt, ws.UpdatedAt,
	)
	return err
}

// GetWorkspace returns a workspace by ID.
func (s *SQLiteStore) GetWorkspace(ctx context.Context, id string) (*models.Workspace, error) {
	var ws models.Workspace
	var filesJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, files, created_at, updated_at
		 FROM workspaces WHERE id = ?`, id,
	).Scan(&ws.ID, &ws.OwnerID, &ws.Name, &filesJSON, &ws.CreatedAt, &ws.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("workspace %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if filesJSON != "" {
		if err := json.Unmarshal([]byte(filesJSON), &ws.Files); err != nil {
			return nil, fmt.Errorf("failed to unmarshal file list: %w", err)
		}
	}
	return &ws, nil
}

// AttachFile appends a file ID to a workspace's top-level file list.
func (s *SQLiteStore) AttachFile(ctx context.Context, workspaceID, fileID string) error {
	ws, err := s.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	for _, id := range ws.Files {
		if id == fileID {
			return nil
		}
	}
	ws.Files = append(ws.Files, fileID)
	filesJSON, err := json.Marshal(ws.Files)
	if err != nil {
		return fmt.Errorf("failed to marshal file list: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE workspaces SET files = ?, updated_at = ? WHERE id = ?`,
		string(filesJSON), time.Now(), workspaceID,
	)
	return err
}

// CreateFile inserts a file node.
func (s *SQLiteStore) CreateFile(ctx context.Context, f *models.FileNode) error {
	childrenJSON, err := json.Marshal(f.Children)
	if err != nil {
		return fmt.Errorf("failed to marshal children: %w", err)
	}
	now := time.Now()
	f.CreatedAt = now
	f.UpdatedAt = now
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO files (id, owner_id, name, stored_name, children, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.OwnerID, f.Name, f.StoredName, string(childrenJSON), f.CreatedAt, f.UpdatedAt,
	)
	return err
}

// GetFile returns a file node by ID. A missing node yields models.ErrNotFound,
// which the walker relies on to distinguish a bad root from a pruned child.
func (s *SQLiteStore) GetFile(ctx context.Context, id string) (*models.FileNode, error) {
	var f models.FileNode
	var childrenJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, stored_name, children, created_at, updated_at
		 FROM files WHERE id = ?`, id,
	).Scan(&f.ID, &f.OwnerID, &f.Name, &f.StoredName, &childrenJSON, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("file %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if childrenJSON != "" {
		if err := json.Unmarshal([]byte(childrenJSON), &f.Children); err != nil {
			return nil, fmt.Errorf("failed to unmarshal children: %w", err)
		}
	}
	return &f, nil
}

// UpdateFile updates an existing file node.
func (s *SQLiteStore) UpdateFile(ctx context.Context, f *models.FileNode) error {
	childrenJSON, err := json.Marshal(f.Children)
	if err != nil {
		return fmt.Errorf("failed to marshal children: %w", err)
	}
	f.UpdatedAt = time.Now()
	result, err := s.db.ExecContext(ctx,
		`UPDATE files SET name = ?, stored_name = ?, children = ?, updated_at = ?
		 WHERE id = ?`,
		f.Name, f.StoredName, string(childrenJSON), f.UpdatedAt, f.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("file %s: %w", f.ID, models.ErrNotFound)
	}
	return nil
}

// DeleteFile removes a file node by ID.
func (s *SQLiteStore) DeleteFile(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	return err
}

// SaveConversation inserts or replaces a conversation record.
func (s *SQLiteStore) SaveConversation(ctx context.Context, c *models.Conversation) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, name, index_path, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, index_path = excluded.index_path`,
		c.ID, c.Name, c.IndexPath, c.CreatedAt,
	)
	return err
}

// GetConversation returns a conversation by ID.
func (s *SQLiteStore) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	var c models.Conversation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, index_path, created_at FROM conversations WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.IndexPath, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("conversation %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CountWorkspaces returns the number of workspaces.
func (s *SQLiteStore) CountWorkspaces(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workspaces`).Scan(&n)
	return n, err
}

// CountFiles returns the number of file nodes.
func (s *SQLiteStore) CountFiles(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n)
	return n, err
}

// CountConversations returns the number of conversations.
func (s *SQLiteStore) CountConversations(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
