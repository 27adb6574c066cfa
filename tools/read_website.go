package tools

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gocolly/colly/v2"
)

// maxPageBytes keeps a single page from flooding the model context.
const maxPageBytes = 32 * 1024

type ReadWebsiteInput struct {
	URL string `json:"url" jsonschema_description:"Absolute http(s) URL of the page to read" jsonschema:"required"`
}

// PageReader downloads a page and reduces it to its visible text.
type PageReader struct {
	UserAgent string
	Timeout   time.Duration
	MaxBytes  int
}

func NewPageReader() *PageReader {
	return &PageReader{
		UserAgent: browserUserAgent,
		Timeout:   15 * time.Second,
		MaxBytes:  maxPageBytes,
	}
}

var blankRun = regexp.MustCompile(`[ \t]+`)

func (p *PageReader) Read(ctx context.Context, input ReadWebsiteInput) (string, error) {
	target := strings.TrimSpace(input.URL)
	if target == "" {
		return "", errors.New("url is empty")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := colly.NewCollector(colly.UserAgent(p.UserAgent))
	c.SetRequestTimeout(p.Timeout)

	var text string
	var visitErr error

	c.OnHTML("html", func(e *colly.HTMLElement) {
		e.DOM.Find("script, style, noscript, nav, header, footer, svg").Remove()
		body := e.DOM.Find("body")
		if body.Length() == 0 {
			body = e.DOM
		}
		text = normalizeText(body.Text())
	})

	c.OnResponse(func(r *colly.Response) {
		contentType := strings.ToLower(r.Headers.Get("Content-Type"))
		if strings.HasPrefix(contentType, "text/plain") {
			text = normalizeText(string(r.Body))
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		visitErr = err
	})

	if err := c.Visit(target); err != nil {
		return "", err
	}
	if visitErr != nil {
		return "", visitErr
	}

	limit := p.MaxBytes
	if limit <= 0 {
		limit = maxPageBytes
	}
	if len(text) > limit {
		for limit > 0 && !utf8.RuneStart(text[limit]) {
			limit--
		}
		text = text[:limit] + "\n[TRUNCATED]"
	}
	return text, nil
}

// normalizeText collapses blank runs and drops empty lines.
func normalizeText(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(blankRun.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
