package ai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const pollinationsEndpoint = "https://text.pollinations.ai"

// Pollinations is the tertiary, best-effort provider: a plain GET with
// the prompt in the path, no auth. Success is HTTP 200 and the body is
// the answer.
type Pollinations struct {
	endpoint string
	client   *http.Client
}

func NewPollinations(client *http.Client) *Pollinations {
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}
	return &Pollinations{endpoint: pollinationsEndpoint, client: client}
}

func (p *Pollinations) Name() string { return "pollinations" }

func (p *Pollinations) Ask(ctx context.Context, prompt string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.endpoint+"/"+url.PathEscape(prompt), nil)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pollinations: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return string(body), nil
}
