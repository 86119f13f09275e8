package models

import "time"

// Conversation is one question-answering session over an ingested document
// tree. IndexPath records where the conversation's vector index lives on
// disk; it is set when the first build for the conversation succeeds.
type Conversation struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	IndexPath string    `json:"index_path,omitempty" db:"index_path"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
