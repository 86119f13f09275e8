package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/driftlab/kaiwa/internal/gateway"
	"github.com/driftlab/kaiwa/internal/models"
	"github.com/driftlab/kaiwa/internal/vector"
)

const testDims = 8

func newTestEngine(t *testing.T) (*Engine, *vector.Manager, *gateway.MockGateway) {
	t.Helper()
	gw := gateway.NewMockGateway(testDims)
	manager, err := vector.NewManager(t.TempDir(), gw, nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewEngine(manager, gw, 2, 20, nil), manager, gw
}

func buildConversation(t *testing.T, m *vector.Manager, id string) {
	t.Helper()
	chunks := []models.Chunk{
		{FileID: "f1", FileName: "notes.md", Seq: 0, Text: "the deployment runs on three nodes"},
		{FileID: "f1", FileName: "notes.md", Seq: 1, Text: "backups happen nightly at two"},
		{FileID: "f2", FileName: "plan.txt", Seq: 0, Text: "this chunk is long enough that the preview must cut it off somewhere"},
	}
	if err := m.Build(context.Background(), id, chunks); err != nil {
		t.Fatal(err)
	}
}

func TestEngine_Answer(t *testing.T) {
	engine, manager, _ := newTestEngine(t)
	buildConversation(t, manager, "conv1")

	result, err := engine.Answer(context.Background(), "conv1", "how many nodes?")
	if err != nil {
		t.Fatal(err)
	}
	if result.Answer == "" {
		t.Error("empty answer")
	}
	if len(result.Sources) != 2 {
		t.Fatalf("expected topK sources, got %d", len(result.Sources))
	}
	for i, src := range result.Sources {
		if src.FileID == "" || src.FileName == "" {
			t.Errorf("source %d missing attribution: %+v", i, src)
		}
	}
	// Retrieval order: scores descending.
	if result.Sources[0].Score < result.Sources[1].Score {
		t.Error("sources must be in retrieval order")
	}
}

func TestEngine_SourcePreviewTruncated(t *testing.T) {
	engine, manager, _ := newTestEngine(t)
	buildConversation(t, manager, "conv1")

	result, err := engine.Answer(context.Background(), "conv1", "what gets cut off?")
	if err != nil {
		t.Fatal(err)
	}
	for _, src := range result.Sources {
		if len(src.Content) > 20+len("...") {
			t.Errorf("preview not truncated: %d chars", len(src.Content))
		}
	}
}

func TestEngine_NeverBuilt(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	_, err := engine.Answer(context.Background(), "ghost", "anything?")
	if !errors.Is(err, models.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestEngine_GatewayFailure(t *testing.T) {
	engine, manager, gw := newTestEngine(t)
	buildConversation(t, manager, "conv1")

	gw.FailComplete = fmt.Errorf("completion refused: %w", models.ErrGateway)
	_, err := engine.Answer(context.Background(), "conv1", "question?")
	if !errors.Is(err, models.ErrGateway) {
		t.Errorf("expected ErrGateway, got %v", err)
	}

	gw.FailComplete = nil
	gw.FailEmbed = fmt.Errorf("embed refused: %w", models.ErrGateway)
	_, err = engine.Answer(context.Background(), "conv1", "question?")
	if !errors.Is(err, models.ErrGateway) {
		t.Errorf("expected ErrGateway from retrieve stage, got %v", err)
	}
}

func TestEngine_PromptContainsQuestionAndContext(t *testing.T) {
	prompt := fmt.Sprintf(promptTemplate, "the question", "chunk one\nchunk two")
	if !strings.Contains(prompt, "Question: the question") {
		t.Error("question missing from prompt")
	}
	if !strings.Contains(prompt, "Context: chunk one\nchunk two") {
		t.Error("context missing from prompt")
	}
	if !strings.HasSuffix(prompt, "Answer:") {
		t.Error("prompt must end with the answer cue")
	}
}

func TestEngine_Stateless(t *testing.T) {
	engine, manager, _ := newTestEngine(t)
	buildConversation(t, manager, "conv1")
	ctx := context.Background()

	first, err := engine.Answer(ctx, "conv1", "same question")
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Answer(ctx, "conv1", "same question")
	if err != nil {
		t.Fatal(err)
	}
	if first.Answer != second.Answer || len(first.Sources) != len(second.Sources) {
		t.Error("identical invocations must be independent and repeatable")
	}
}
