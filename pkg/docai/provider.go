package docai

import "context"

// KeyValuePair is a single labeled field pulled out of a document.
type KeyValuePair struct {
	Key        string  `json:"key"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

type Page struct {
	PageNumber int      `json:"page_number"`
	Lines      []string `json:"lines"`
}

type TableCell struct {
	Content     string `json:"content"`
	RowIndex    int    `json:"row_index"`
	ColumnIndex int    `json:"column_index"`
}

type Table struct {
	RowCount    int         `json:"row_count"`
	ColumnCount int         `json:"column_count"`
	Cells       []TableCell `json:"cells"`
}

// AnalysisResult is the structured output of a document analysis run.
type AnalysisResult struct {
	FullText      string         `json:"full_text"`
	Pages         []Page         `json:"pages"`
	Tables        []Table        `json:"tables"`
	KeyValuePairs []KeyValuePair `json:"key_value_pairs"`
	ModelID       string         `json:"model_id"`
}

// Provider analyzes raw document bytes into structured content.
type Provider interface {
	Analyze(ctx context.Context, content []byte, contentType string) (*AnalysisResult, error)
	HealthCheck(ctx context.Context) bool
}
