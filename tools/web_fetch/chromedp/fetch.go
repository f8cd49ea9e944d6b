package chromedp

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/adhikar-ai/adhikar/tools/web_fetch/models"
	"github.com/adhikar-ai/adhikar/utils"
	"github.com/chromedp/chromedp"
	"github.com/go-shiori/go-readability"
)

// Fetch renders pages in headless Chrome before extraction. Heavier than the
// readability fetcher but handles script-rendered content.
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

	html, err := fetchHTML(ctx, rawURL)
	if err != nil {
		return models.Result{URL: rawURL, Status: 599, RenderMS: int(time.Since(t0) / time.Millisecond)}, nil
	}

	article, err := readability.FromReader(strings.NewReader(html), mustParseURL(rawURL))
	if err != nil {
		return models.Result{URL: rawURL, Status: 200, RenderMS: int(time.Since(t0) / time.Millisecond)}, nil
	}
	text := utils.Truncate(article.TextContent, f.MaxChars)

	return models.Result{
		URL:      rawURL,
		Title:    strings.TrimSpace(article.Title),
		Text:     strings.TrimSpace(text),
		Status:   200,
		RenderMS: int(time.Since(t0) / time.Millisecond),
	}, nil
}

func fetchHTML(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent("AdhikarBot/1.0 (+contact@adhikar.example)"),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
