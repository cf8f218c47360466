package models

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms/openai"
)

// GitHubModelsBaseURL is the base URL for the GitHub Models API. The OpenAI-compatible chat
// completions endpoint is at {baseURL}/chat/completions.
const GitHubModelsBaseURL = "https://models.github.ai/inference"

// Provider names an OpenAI-compatible endpoint family.
type Provider string

const (
	// ProviderOpenAI talks to api.openai.com, or BaseURL when set.
	ProviderOpenAI Provider = "openai"

	// ProviderGitHub talks to the GitHub Models API. Model names use the publisher/model format,
	// e.g. "openai/gpt-4.1". The token is a fine-grained PAT with models:read.
	ProviderGitHub Provider = "github"
)

// OpenAIConfig configures NewOpenAI.
type OpenAIConfig struct {
	Provider Provider
	Model    string
	Token    string
	BaseURL  string
}

// githubHeaderTransport injects GitHub-specific headers into every request.
type githubHeaderTransport struct {
	base http.RoundTripper
}

func (t *githubHeaderTransport) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	return t.base.RoundTrip(req)
}

// NewOpenAI creates an LCG backed by an OpenAI-compatible chat completions endpoint.
//
// Additional openai.Option values customise the underlying client and come after the defaults,
// so they can override them (e.g. WithHTTPClient).
func NewOpenAI(cfg OpenAIConfig, opts ...openai.Option) (*LCG, error) {
	if cfg.Token == "" {
		return nil, errors.New("api token is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("model name is required")
	}

	baseOpts := []openai.Option{
		openai.WithToken(cfg.Token),
		openai.WithModel(cfg.Model),
	}
	switch cfg.Provider {
	case "", ProviderOpenAI:
		if cfg.BaseURL != "" {
			baseOpts = append(baseOpts, openai.WithBaseURL(cfg.BaseURL))
		}
	case ProviderGitHub:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = GitHubModelsBaseURL
		}
		baseOpts = append(baseOpts,
			openai.WithBaseURL(baseURL),
			openai.WithHTTPClient(&githubHeaderTransport{base: http.DefaultTransport}),
		)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	llm, err := openai.New(append(baseOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
	}
	return NewLCG(llm).WithModelName(cfg.Model), nil
}
