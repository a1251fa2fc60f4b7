package skills

import (
	"context"
	"fmt"
	"io"
	log "log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const ddgEndpoint = "https://html.duckduckgo.com/html/"

// Result is one ranked web search hit. Field names match the payload
// the UI consumes.
type Result struct {
	Title string `json:"title"`
	Href  string `json:"href"`
	Body  string `json:"body"`
}

// Searcher is the provider contract the weather skill and the
// interpreter consume.
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]Result, error)
}

// DuckDuckGo queries the html.duckduckgo.com endpoint and scrapes the
// result list. Order is the provider's ranking, untouched.
type DuckDuckGo struct {
	client   *http.Client
	endpoint string
}

func NewDuckDuckGo(client *http.Client) *DuckDuckGo {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &DuckDuckGo{client: client, endpoint: ddgEndpoint}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, max int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if max <= 0 {
		max = 5
	}

	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: status %d", resp.StatusCode)
	}

	results, err := parseResults(resp.Body, max)
	if err != nil {
		return nil, err
	}

	log.Debug("web search", "query", query, "hits", len(results))
	return results, nil
}

// parseResults walks the result page. Each hit is an anchor with class
// result__a (title + link) followed by an anchor with class
// result__snippet (body).
func parseResults(r io.Reader, max int) ([]Result, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse result page: %w", err)
	}

	var out []Result

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(out) >= max && lastComplete(out) {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			switch {
			case hasClass(n, "result__a"):
				if len(out) >= max {
					return
				}
				out = append(out, Result{
					Title: nodeText(n),
					Href:  cleanHref(attr(n, "href")),
				})
			case hasClass(n, "result__snippet"):
				if len(out) > 0 && out[len(out)-1].Body == "" {
					out[len(out)-1].Body = nodeText(n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return out, nil
}

func lastComplete(rs []Result) bool {
	return len(rs) > 0 && rs[len(rs)-1].Body != ""
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
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

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// cleanHref unwraps the duckduckgo redirect links (…/l/?uddg=<target>).
func cleanHref(href string) string {
	if href == "" {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" {
		return "https:" + href
	}
	return href
}
