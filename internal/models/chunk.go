package models

// Chunk is a bounded, overlapping span of one source document. Chunks exist
// only for the duration of an ingestion call; the index persists their text
// and metadata, never the Chunk values themselves.
type Chunk struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	// Seq is the chunk's position within its source file, contiguous from 0.
	Seq  int    `json:"seq"`
	Text string `json:"text"`
}
