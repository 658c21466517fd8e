package service

import (
	"context"
	"testing"

	"doc-intelligence-be/pkg/docai"
	"doc-intelligence-be/pkg/llm"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, _ string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, nil, opts...)
}

func TestEnhanceParsesJsonResponse(t *testing.T) {
	ps := &processingService{llmProvider: &fakeLLM{response: `{"summary":"invoice","total":"100"}`}}

	out, err := ps.enhance(context.Background(), "hybrid", map[string]interface{}{"full_text": "Invoice"})
	if err != nil {
		t.Fatalf("enhance: %v", err)
	}
	if out["summary"] != "invoice" || out["total"] != "100" {
		t.Errorf("out = %v", out)
	}
}

func TestEnhanceKeepsRawTextOnInvalidJson(t *testing.T) {
	ps := &processingService{llmProvider: &fakeLLM{response: "Sorry, here is a prose answer."}}

	analysis := map[string]interface{}{"full_text": "Invoice"}
	out, err := ps.enhance(context.Background(), "structured", analysis)
	if err != nil {
		t.Fatalf("enhance: %v", err)
	}

	if out["enhanced_text"] != "Sorry, here is a prose answer." {
		t.Errorf("enhanced_text = %v", out["enhanced_text"])
	}
	raw, ok := out["raw_azure_data"].(map[string]interface{})
	if !ok || raw["full_text"] != "Invoice" {
		t.Errorf("raw_azure_data = %v", out["raw_azure_data"])
	}
}

func TestFilterByConfidence(t *testing.T) {
	analysis := &docai.AnalysisResult{
		KeyValuePairs: []docai.KeyValuePair{
			{Key: "a", Confidence: 0.95},
			{Key: "b", Confidence: 0.4},
			{Key: "c", Confidence: 0.8},
		},
	}

	filterByConfidence(analysis, 0.8)
	if len(analysis.KeyValuePairs) != 2 {
		t.Fatalf("kept = %+v", analysis.KeyValuePairs)
	}
	if analysis.KeyValuePairs[0].Key != "a" || analysis.KeyValuePairs[1].Key != "c" {
		t.Errorf("kept = %+v", analysis.KeyValuePairs)
	}

	// Zero threshold keeps everything.
	analysis = &docai.AnalysisResult{
		KeyValuePairs: []docai.KeyValuePair{{Key: "a", Confidence: 0.1}},
	}
	filterByConfidence(analysis, 0)
	if len(analysis.KeyValuePairs) != 1 {
		t.Errorf("kept = %+v", analysis.KeyValuePairs)
	}
}

func TestAverageConfidence(t *testing.T) {
	result := &docai.AnalysisResult{
		KeyValuePairs: []docai.KeyValuePair{
			{Key: "a", Confidence: 0.8},
			{Key: "b", Confidence: 1.0},
		},
	}
	if got := averageConfidence(result); got != 0.9 {
		t.Errorf("averageConfidence = %v, want 0.9", got)
	}

	if got := averageConfidence(&docai.AnalysisResult{}); got != 0 {
		t.Errorf("averageConfidence(empty) = %v, want 0", got)
	}
}
