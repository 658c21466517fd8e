package factory

import (
	"fmt"

	"doc-intelligence-be/pkg/llm"
	"doc-intelligence-be/pkg/llm/azureopenai"
	"doc-intelligence-be/pkg/llm/ollama"
)

type ProviderConfig struct {
	ModelName          string
	OllamaBaseURL      string
	AzureOpenAIBaseURL string
	AzureOpenAIKey     string
}

func NewLLMProvider(providerType string, cfg ProviderConfig) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.ModelName), nil
	case "azure-openai":
		if cfg.AzureOpenAIBaseURL == "" || cfg.AzureOpenAIKey == "" {
			return nil, fmt.Errorf("azure-openai provider requires endpoint and key")
		}
		return azureopenai.NewAzureOpenAIProvider(cfg.AzureOpenAIBaseURL, cfg.AzureOpenAIKey, cfg.ModelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
