package agent

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	fetchTimeout     = 15 * time.Second
	maxContentRunes  = 4000
	defaultUserAgent = "Mozilla/5.0 (compatible; notecanvas/1.0)"
)

// HTTPFetcher downloads a page and reduces it to its title, description
// and visible body text.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxRunes  int
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: fetchTimeout},
		userAgent: defaultUserAgent,
		maxRunes:  maxContentRunes,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", url, err)
	}

	return truncateRunes(extractText(doc), f.maxRunes), nil
}

func extractText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, svg, iframe").Remove()

	var parts []string

	if title := collapseSpace(doc.Find("title").First().Text()); title != "" {
		parts = append(parts, title)
	}

	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		if desc = collapseSpace(desc); desc != "" {
			parts = append(parts, desc)
		}
	}

	if body := collapseSpace(doc.Find("body").Text()); body != "" {
		parts = append(parts, body)
	}

	return strings.Join(parts, "\n")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}

	return string(runes[:n])
}
