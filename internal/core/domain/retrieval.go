package domain

// Chunk is a slice of extracted document text annotated with its owner.
type Chunk struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Index      int    `json:"index"`
	Text       string `json:"text"`
}

// RetrievedChunk is a search hit. Rank starts at 1 for the most similar chunk.
type RetrievedChunk struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Text       string  `json:"text"`
	Rank       int     `json:"rank"`
	Score      float64 `json:"score"`
}

// AskResult is what the presentation layer renders for a question.
type AskResult struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	IsError  bool   `json:"is_error"`
	// Kind is empty on success.
	Kind ErrorKind `json:"-"`
}
