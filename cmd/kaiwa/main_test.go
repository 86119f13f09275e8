package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/driftlab/kaiwa/internal/models"
	"github.com/driftlab/kaiwa/internal/workspace"
)

func TestCollectStatus(t *testing.T) {
	store, err := workspace.NewSQLiteStore(filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	report, err := collectStatus(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if report.Workspaces != 0 || report.Files != 0 || report.Conversations != 0 {
		t.Errorf("empty store: %+v", report)
	}

	if err := store.CreateWorkspace(ctx, &models.Workspace{ID: "ws1", OwnerID: "u1", Name: "ws"}); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateFile(ctx, &models.FileNode{ID: "f1", OwnerID: "u1", Name: "a.txt"}); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateFile(ctx, &models.FileNode{ID: "f2", OwnerID: "u1", Name: "b.txt"}); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveConversation(ctx, &models.Conversation{ID: "c1", Name: "chat"}); err != nil {
		t.Fatal(err)
	}

	report, err = collectStatus(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if report.Workspaces != 1 || report.Files != 2 || report.Conversations != 1 {
		t.Errorf("populated store: %+v", report)
	}
}
