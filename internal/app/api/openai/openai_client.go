package openai

import (
	"net/http"

	"github.com/sashabaranov/go-openai"
	"hy-whisper/internal/config"
)

// NewClient builds an OpenAI client from the provider configuration.
// httpClient may be nil, in which case the library default is used.
func NewClient(cfg config.OpenAIConfig, httpClient *http.Client) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}
	return openai.NewClientWithConfig(clientConfig)
}
