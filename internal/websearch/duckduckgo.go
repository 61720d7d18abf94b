package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"campus-connect-ai/internal/pipeline"
)

// DuckDuckGo scrapes the HTML search endpoint. No API key required,
// which makes it a usable fallback when no Tavily key is configured.
type DuckDuckGo struct {
	endpoint string
	client   *http.Client
}

// NewDuckDuckGo creates a DuckDuckGo HTML search client.
func NewDuckDuckGo() *DuckDuckGo {
	return &DuckDuckGo{
		endpoint: "https://html.duckduckgo.com/html/",
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Search returns up to n web results scraped from the HTML results page.
func (d *DuckDuckGo) Search(ctx context.Context, query string, n int) ([]pipeline.WebResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("kl", "us-en")

	req, err := http.NewRequestWithContext(ctx, "GET", d.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	results := parseResults(doc, n)
	return results, nil
}

// parseResults walks the document collecting result blocks. Each block is a
// node with class "result"; the link title lives under "result__a" and the
// summary under "result__snippet".
func parseResults(doc *html.Node, n int) []pipeline.WebResult {
	results := make([]pipeline.WebResult, 0, n)

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if len(results) >= n {
			return
		}
		if node.Type == html.ElementNode && hasClass(node, "result") {
			if r, ok := parseResult(node); ok {
				results = append(results, r)
			}
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return results
}

func parseResult(node *html.Node) (pipeline.WebResult, bool) {
	var result pipeline.WebResult

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "result__a"):
				result.Title = strings.TrimSpace(textContent(n))
				result.URL = attr(n, "href")
			case hasClass(n, "result__snippet"):
				result.Snippet = strings.TrimSpace(textContent(n))
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)

	if result.Title == "" {
		return pipeline.WebResult{}, false
	}
	return result, true
}

func hasClass(node *html.Node, class string) bool {
	for _, a := range node.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func attr(node *html.Node, key string) string {
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(node *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return b.String()
}
