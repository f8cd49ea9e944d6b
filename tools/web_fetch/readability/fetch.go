package readability

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adhikar-ai/adhikar/tools/web_fetch/models"
	"github.com/adhikar-ai/adhikar/utils"
	"github.com/go-shiori/go-readability"
)

// Fetch retrieves pages over plain HTTP and extracts the main article text
// with readability. Suitable for mostly-static sources (indiankanoon.org,
// devgan.in, government portals); script-heavy pages need the chromedp
// fetcher instead.
type Fetch struct {
	Timeout  time.Duration
	MaxChars int
}

func (f Fetch) Exec(ctx context.Context, rawURL string) (models.Result, error) {
	if strings.TrimSpace(rawURL) == "" {
		return models.Result{}, errors.New("invalid url")
	}

	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()
	t0 := time.Now()

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return models.Result{URL: rawURL, Status: 599, RenderMS: int(time.Since(t0) / time.Millisecond)}, nil
	}
	req.Header.Set("User-Agent", "AdhikarBot/1.0 (+contact@adhikar.example)")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return models.Result{URL: rawURL, Status: 599, RenderMS: int(time.Since(t0) / time.Millisecond)}, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.Result{URL: rawURL, Status: resp.StatusCode, RenderMS: int(time.Since(t0) / time.Millisecond)}, nil
	}

	article, err := readability.FromReader(resp.Body, mustParseURL(rawURL))
	if err != nil {
		return models.Result{URL: rawURL, Status: resp.StatusCode, RenderMS: int(time.Since(t0) / time.Millisecond)}, nil
	}
	text := utils.Truncate(article.TextContent, f.MaxChars)

	return models.Result{
		URL:      rawURL,
		Title:    strings.TrimSpace(article.Title),
		Text:     strings.TrimSpace(text),
		Status:   resp.StatusCode,
		RenderMS: int(time.Since(t0) / time.Millisecond),
	}, nil
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
