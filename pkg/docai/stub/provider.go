package stub

import (
	"context"
	"fmt"
	"time"

	"doc-intelligence-be/pkg/docai"
)

// StubProvider fakes document analysis for local development and tests.
// It returns a deterministic result after a short delay so the pipeline's
// stage progression stays observable.
type StubProvider struct {
	Delay time.Duration
}

var _ docai.Provider = &StubProvider{}

func NewStubProvider() *StubProvider {
	return &StubProvider{Delay: 200 * time.Millisecond}
}

func (p *StubProvider) Analyze(ctx context.Context, content []byte, contentType string) (*docai.AnalysisResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(p.Delay):
	}

	return &docai.AnalysisResult{
		FullText: fmt.Sprintf("stub analysis of %d bytes (%s)", len(content), contentType),
		ModelID:  "stub-document",
		Pages: []docai.Page{
			{PageNumber: 1, Lines: []string{"stub line"}},
		},
		KeyValuePairs: []docai.KeyValuePair{
			{Key: "document_type", Value: "unknown", Confidence: 0.5},
		},
	}, nil
}

func (p *StubProvider) HealthCheck(ctx context.Context) bool {
	return true
}
