package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	DuckDuckGoLiteEndpoint = "https://lite.duckduckgo.com/lite/"
	defaultMaxResults      = 5
	browserUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// DuckDuckGo searches through the DuckDuckGo lite HTML page. No API key needed.
type DuckDuckGo struct {
	Endpoint   string
	MaxResults int
	client     *http.Client
}

func NewDuckDuckGo() *DuckDuckGo {
	return NewDuckDuckGoWithClient(&http.Client{Timeout: 15 * time.Second})
}

func NewDuckDuckGoWithClient(client *http.Client) *DuckDuckGo {
	return &DuckDuckGo{
		Endpoint:   DuckDuckGoLiteEndpoint,
		MaxResults: defaultMaxResults,
		client:     client,
	}
}

func (d *DuckDuckGo) Description() string {
	return duckDuckGoDescription
}

func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}

	form := url.Values{}
	form.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo http %d", resp.StatusCode)
	}
	return parseLiteResults(resp.Body, d.MaxResults)
}

// parseLiteResults reads the lite result table: every a.result-link row is
// followed by a td.result-snippet row.
func parseLiteResults(r io.Reader, limit int) ([]SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse duckduckgo page: %w", err)
	}
	if limit <= 0 {
		limit = defaultMaxResults
	}

	snippets := doc.Find("td.result-snippet")

	var results []SearchResult
	doc.Find("a.result-link").EachWithBreak(func(i int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		if href == "" || title == "" {
			return true
		}
		snippet := ""
		if i < snippets.Length() {
			snippet = strings.Join(strings.Fields(snippets.Eq(i).Text()), " ")
		}
		results = append(results, SearchResult{
			Title:   title,
			URL:     resolveResultURL(href),
			Snippet: snippet,
		})
		return len(results) < limit
	})
	return results, nil
}

// resolveResultURL unwraps DuckDuckGo redirect links (//duckduckgo.com/l/?uddg=...).
func resolveResultURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}
