// Package models defines core data structures for workspaces, files, chunks,
// conversations, and query results.
package models

import "time"

// FileNode is one node of a workspace document tree. A node with a non-empty
// StoredName has uploaded content on disk; a node with Children is a folder.
// A node may carry both. Children hold IDs of other nodes, so the structure is
// a directed graph in which the same node can be reachable through more than
// one parent.
type FileNode struct {
	ID         string    `json:"id" db:"id"`
	OwnerID    string    `json:"owner_id" db:"owner_id"`
	Name       string    `json:"name" db:"name"`
	StoredName string    `json:"stored_name,omitempty" db:"stored_name"`
	Children   []string  `json:"children,omitempty" db:"children"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Workspace groups top-level file nodes for one owner.
type Workspace struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	Files     []string  `json:"files"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
