// Package ollama provides an Embedder and a Generator backed by a local
// Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/siterag"
	"github.com/ollama/ollama/api"
)

// Defaults for the Ollama server and models.
const (
	DefaultHost           = "http://localhost:11434"
	DefaultEmbedModel     = "all-minilm"
	DefaultGenerateModel  = "gemma3"
	DefaultFallbackModel  = "llama2"
	DefaultRequestTimeout = 120 * time.Second
)

// NewClient returns an Ollama API client for host.
func NewClient(host string, timeout time.Duration) (*api.Client, error) {
	if host == "" {
		host = DefaultHost
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, siterag.Errorf(siterag.EINVALID, "invalid ollama host %q: %v", host, err)
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return api.NewClient(u, &http.Client{Timeout: timeout}), nil
}

// available reports an error if the server does not have model.
func available(ctx context.Context, client *api.Client, model string) error {
	if model == "" {
		return fmt.Errorf("model name required")
	}
	if _, err := client.Show(ctx, &api.ShowRequest{Model: model}); err != nil {
		return fmt.Errorf("model %q unavailable: %w", model, err)
	}
	return nil
}
