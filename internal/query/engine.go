// Package query answers questions against a conversation's index by
// retrieving relevant chunks and conditioning a completion on them.
package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/driftlab/kaiwa/internal/gateway"
	"github.com/driftlab/kaiwa/internal/models"
	"github.com/driftlab/kaiwa/internal/vector"
	"github.com/driftlab/kaiwa/pkg/utils"
)

// promptTemplate is the fixed question-answering prompt. %s slots are the
// question and the retrieved context, in that order.
const promptTemplate = `You are an assistant for question-answering tasks. Use the following pieces of retrieved context to answer the question. If you don't know the answer, just say that you don't know. Use three sentences maximum and keep the answer concise.
Question: %s
Context: %s
Answer:`

// contextSeparator joins retrieved chunk texts into the prompt context.
const contextSeparator = "\n"

// Engine runs the two-stage retrieve-then-generate pipeline. It holds no
// state between invocations: every call re-loads the index and re-runs both
// stages, and a failure in either stage terminates that invocation without a
// partial answer.
type Engine struct {
	manager       *vector.Manager
	gateway       gateway.Gateway
	topK          int
	previewLength int
	logger        *zap.Logger
}

// NewEngine wires an engine. topK and previewLength fall back to 5 and 200
// when non-positive. logger may be nil.
func NewEngine(manager *vector.Manager, gw gateway.Gateway, topK, previewLength int, logger *zap.Logger) *Engine {
	if topK <= 0 {
		topK = 5
	}
	if previewLength <= 0 {
		previewLength = 200
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		manager:       manager,
		gateway:       gw,
		topK:          topK,
		previewLength: previewLength,
		logger:        logger,
	}
}

// Answer retrieves the chunks most relevant to question from the
// conversation's index and generates an answer from them. A conversation that
// was never built fails with models.ErrIndexNotFound; completion failures
// surface as models.ErrGateway. Sources lists the retrieved chunks in
// retrieval order, truncated for preview.
func (e *Engine) Answer(ctx context.Context, conversationID, question string) (*models.QueryResult, error) {
	// Retrieve stage.
	ix, err := e.manager.Load(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	matches, err := e.manager.Search(ctx, ix, question, e.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	contextText := joinChunks(matches)
	e.logger.Debug("retrieved context",
		zap.String("conversation_id", conversationID),
		zap.Int("matches", len(matches)),
	)

	// Generate stage.
	prompt := fmt.Sprintf(promptTemplate, question, contextText)
	answer, err := e.gateway.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	sources := make([]models.SourcePreview, len(matches))
	for i, m := range matches {
		sources[i] = models.SourcePreview{
			FileID:   m.Entry.FileID,
			FileName: m.Entry.FileName,
			Seq:      m.Entry.Seq,
			Content:  utils.Truncate(m.Entry.Text, e.previewLength),
			Score:    m.Score,
		}
	}
	return &models.QueryResult{Answer: answer, Sources: sources}, nil
}

func joinChunks(matches []vector.Match) string {
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Entry.Text
	}
	return strings.Join(texts, contextSeparator)
}
