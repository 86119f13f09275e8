package models

import "fmt"

// IngestRequest asks the server to (re)build a conversation's index from the
// document tree rooted at RootFileID.
type IngestRequest struct {
	RootFileID string `json:"root_file_id"`
}

// Validate checks required fields.
func (r *IngestRequest) Validate() error {
	if r.RootFileID == "" {
		return fmt.Errorf("root_file_id is required: %w", ErrValidation)
	}
	return nil
}

// QueryRequest asks a question against a conversation's index.
type QueryRequest struct {
	Question string `json:"question"`
}

// Validate checks required fields.
func (r *QueryRequest) Validate() error {
	if r.Question == "" {
		return fmt.Errorf("question is required: %w", ErrValidation)
	}
	return nil
}

// SourcePreview is a truncated view of one retrieved chunk, kept alongside
// the answer so callers can trace which documents informed it.
type SourcePreview struct {
	FileID   string  `json:"file_id"`
	FileName string  `json:"file_name"`
	Seq      int     `json:"seq"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
}

// QueryResult is the outcome of one retrieve-then-generate invocation.
type QueryResult struct {
	Answer  string          `json:"answer"`
	Sources []SourcePreview `json:"sources"`
}

// IngestResult reports what an ingestion processed.
type IngestResult struct {
	FilesProcessed int `json:"files_processed"`
	ChunksIndexed  int `json:"chunks_indexed"`
}
