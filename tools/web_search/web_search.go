package web_search

import (
	"context"
	"errors"

	"github.com/adhikar-ai/adhikar/tools/web_search/brave"
	"github.com/adhikar-ai/adhikar/tools/web_search/models"
	"github.com/adhikar-ai/adhikar/tools/web_search/serper"
)

// WebSearcher executes one keyword query against a search backend and returns
// up to k ranked results. Backend failures come back as errors, never panics,
// so the aggregator above can log and move on.
type WebSearcher interface {
	Discover(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	SerperProvider Provider = "serper"
	BraveProvider  Provider = "brave"
)

var ErrUnsupportedProvider = errors.New("unsupported provider")

func NewWebSearcher(provider Provider, apiKey string) (WebSearcher, error) {
	switch provider {
	case SerperProvider:
		return serper.Search{ApiKey: apiKey}, nil
	case BraveProvider:
		return brave.Search{ApiKey: apiKey}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
