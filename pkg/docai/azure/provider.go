package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"doc-intelligence-be/pkg/docai"
)

const apiVersion = "2024-02-29-preview"

// AzureProvider talks to the Azure AI Document Intelligence REST API.
// Analysis is a long-running operation: the submit call returns an
// Operation-Location which is polled until the run settles.
type AzureProvider struct {
	Endpoint     string
	Key          string
	ModelID      string
	Client       *http.Client
	PollInterval time.Duration
}

var _ docai.Provider = &AzureProvider{}

func NewAzureProvider(endpoint, key, modelID string) *AzureProvider {
	return &AzureProvider{
		Endpoint: endpoint,
		Key:      key,
		ModelID:  modelID,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
		PollInterval: 2 * time.Second,
	}
}

// --- API response shapes (internal to this package) ---

type analyzeOperation struct {
	Status        string         `json:"status"`
	AnalyzeResult *analyzeResult `json:"analyzeResult"`
	Error         *azureError    `json:"error"`
}

type azureError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type analyzeResult struct {
	ModelID string `json:"modelId"`
	Content string `json:"content"`
	Pages   []struct {
		PageNumber int `json:"pageNumber"`
		Lines      []struct {
			Content string `json:"content"`
		} `json:"lines"`
	} `json:"pages"`
	Tables []struct {
		RowCount    int `json:"rowCount"`
		ColumnCount int `json:"columnCount"`
		Cells       []struct {
			Content     string `json:"content"`
			RowIndex    int    `json:"rowIndex"`
			ColumnIndex int    `json:"columnIndex"`
		} `json:"cells"`
	} `json:"tables"`
	KeyValuePairs []struct {
		Key *struct {
			Content string `json:"content"`
		} `json:"key"`
		Value *struct {
			Content string `json:"content"`
		} `json:"value"`
		Confidence float64 `json:"confidence"`
	} `json:"keyValuePairs"`
}

func (p *AzureProvider) Analyze(ctx context.Context, content []byte, contentType string) (*docai.AnalysisResult, error) {
	operationURL, err := p.beginAnalyze(ctx, content, contentType)
	if err != nil {
		return nil, err
	}

	result, err := p.pollResult(ctx, operationURL)
	if err != nil {
		return nil, err
	}

	return structureResult(result), nil
}

func (p *AzureProvider) beginAnalyze(ctx context.Context, content []byte, contentType string) (string, error) {
	url := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?api-version=%s",
		p.Endpoint, p.ModelID, apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(content))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Ocp-Apim-Subscription-Key", p.Key)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit document for analysis: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("analyze request rejected with status %d: %s", resp.StatusCode, string(body))
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", fmt.Errorf("analyze response missing Operation-Location header")
	}
	return operationURL, nil
}

func (p *AzureProvider) pollResult(ctx context.Context, operationURL string) (*analyzeResult, error) {
	ticker := time.NewTicker(p.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", p.Key)

		resp, err := p.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to poll analysis operation: %w", err)
		}

		var op analyzeOperation
		err = json.NewDecoder(resp.Body).Decode(&op)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode analysis operation: %w", err)
		}

		switch op.Status {
		case "succeeded":
			if op.AnalyzeResult == nil {
				return nil, fmt.Errorf("analysis succeeded but result is empty")
			}
			return op.AnalyzeResult, nil
		case "failed":
			if op.Error != nil {
				return nil, fmt.Errorf("analysis failed: %s: %s", op.Error.Code, op.Error.Message)
			}
			return nil, fmt.Errorf("analysis failed without error detail")
		}
		// "running" or "notStarted": keep polling
	}
}

func structureResult(r *analyzeResult) *docai.AnalysisResult {
	result := &docai.AnalysisResult{
		FullText: r.Content,
		ModelID:  r.ModelID,
	}

	for _, page := range r.Pages {
		lines := make([]string, len(page.Lines))
		for i, line := range page.Lines {
			lines[i] = line.Content
		}
		result.Pages = append(result.Pages, docai.Page{
			PageNumber: page.PageNumber,
			Lines:      lines,
		})
	}

	for _, table := range r.Tables {
		cells := make([]docai.TableCell, len(table.Cells))
		for i, cell := range table.Cells {
			cells[i] = docai.TableCell{
				Content:     cell.Content,
				RowIndex:    cell.RowIndex,
				ColumnIndex: cell.ColumnIndex,
			}
		}
		result.Tables = append(result.Tables, docai.Table{
			RowCount:    table.RowCount,
			ColumnCount: table.ColumnCount,
			Cells:       cells,
		})
	}

	for _, kv := range r.KeyValuePairs {
		pair := docai.KeyValuePair{Confidence: kv.Confidence}
		if kv.Key != nil {
			pair.Key = kv.Key.Content
		}
		if kv.Value != nil {
			pair.Value = kv.Value.Content
		}
		result.KeyValuePairs = append(result.KeyValuePairs, pair)
	}

	return result
}

func (p *AzureProvider) HealthCheck(ctx context.Context) bool {
	return p.Endpoint != "" && p.Key != ""
}
