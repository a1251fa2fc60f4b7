package skills

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Wikipedia error kinds. The interpreter turns each into a distinct
// user-facing sentence.
var (
	ErrAmbiguous = errors.New("topic is ambiguous")
	ErrNotFound  = errors.New("no page for topic")
)

const wikipediaEndpoint = "https://en.wikipedia.org/api/rest_v1/page/summary"

// Wikipedia fetches page summaries from the REST v1 summary endpoint
// and trims them to two sentences.
type Wikipedia struct {
	client   *http.Client
	endpoint string
}

func NewWikipedia(client *http.Client) *Wikipedia {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Wikipedia{client: client, endpoint: wikipediaEndpoint}
}

type pageSummary struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

func (w *Wikipedia) Summary(ctx context.Context, topic string) (string, error) {
	title := strings.ReplaceAll(strings.TrimSpace(topic), " ", "_")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		w.endpoint+"/"+url.PathEscape(title), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%q: %w", topic, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wikipedia: status %d", resp.StatusCode)
	}

	var page pageSummary
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return "", fmt.Errorf("decode summary: %w", err)
	}

	if page.Type == "disambiguation" {
		return "", fmt.Errorf("%q: %w", topic, ErrAmbiguous)
	}
	if page.Extract == "" {
		return "", fmt.Errorf("%q: %w", topic, ErrNotFound)
	}

	return firstSentences(page.Extract, 2), nil
}

// firstSentences cuts text after n sentence terminators. A terminator
// only counts when followed by a space, a newline, or end of text, so
// dots inside numbers like "3.14" do not split the sentence.
func firstSentences(text string, n int) string {
	count := 0
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && runes[i+1] != ' ' && runes[i+1] != '\n' {
			continue
		}
		count++
		if count == n {
			return strings.TrimSpace(string(runes[:i+1]))
		}
	}
	return strings.TrimSpace(text)
}
