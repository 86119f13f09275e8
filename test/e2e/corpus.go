package e2e

// The corpus exercises retrieval plumbing with the deterministic mock
// gateway. Mock embeddings are hash-derived, not semantic, so each query is
// the verbatim text of one document: with documents short enough to be a
// single chunk, the matching chunk scores 1.0 and must rank first.

// Document is one corpus file. Content stays under the e2e chunk size so the
// whole document is a single chunk.
type Document struct {
	ID      string
	Content string
}

// QueryCase asks a question whose top retrieved source is known in advance.
type QueryCase struct {
	Description     string
	Question        string
	ExpectedFileIDs []string
}

// Corpus bundles documents with their query cases.
type Corpus struct {
	Documents []Document
	TestCases []QueryCase
}

// BuildCorpus returns the fixed e2e corpus.
func BuildCorpus() Corpus {
	docs := []Document{
		{ID: "doc-renewal", Content: "The contract renews every January with 30 days notice."},
		{ID: "doc-backup", Content: "Backups run nightly and are kept for ninety days."},
		{ID: "doc-deploy", Content: "Deployments go through staging before production."},
		{ID: "doc-oncall", Content: "The on-call rotation hands over every Monday at 10:00."},
		{ID: "doc-budget", Content: "The infrastructure budget is reviewed each quarter."},
	}
	cases := make([]QueryCase, len(docs))
	for i, d := range docs {
		cases[i] = QueryCase{
			Description:     "retrieves " + d.ID,
			Question:        d.Content,
			ExpectedFileIDs: []string{d.ID},
		}
	}
	return Corpus{Documents: docs, TestCases: cases}
}
