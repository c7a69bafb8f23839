package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"cardops.org/internal/cards"
	"cardops.org/internal/money"
	"cardops.org/internal/obs"
)

const (
	defaultModel   = "gpt-4o-mini"
	defaultBaseURL = "https://api.openai.com/v1/chat/completions"

	// sampleLimit caps how many transactions are sent verbatim; only the
	// aggregate total covers the rest.
	sampleLimit = 10

	systemPrompt = "You are a senior financial analyst providing concise, actionable insights for corporate card users."

	// Fallback is returned on any transport or service error. The caller
	// never observes a hard failure from this boundary.
	Fallback = "Unable to generate insights at this time."

	emptyHistory = "No transactions found to analyze."
	blankAnswer  = "Analysis complete. Spending appears normal."
)

// Client requests natural-language spending summaries from a
// chat-completions endpoint.
type Client struct {
	APIKey     string
	Model      string
	BaseURL    string
	Currency   string
	HTTPClient *http.Client

	limiter *rate.Limiter
}

// New returns a client with sane defaults. The limiter keeps a burst of
// summaries from hammering the external service.
func New(apiKey string) *Client {
	return &Client{
		APIKey:     apiKey,
		Model:      defaultModel,
		BaseURL:    defaultBaseURL,
		Currency:   "USD",
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 3),
	}
}

// Summarize analyzes the flattened transaction history and returns a short
// summary. Errors degrade to a fixed fallback string and are logged, never
// propagated.
func (c *Client) Summarize(ctx context.Context, txs []cards.Transaction) string {
	if len(txs) == 0 {
		return emptyHistory
	}

	start := time.Now()
	text, err := c.summarize(ctx, txs)
	if err != nil {
		obs.ObserveInsights("error", time.Since(start))
		obs.LogJSON(map[string]any{
			"level": "error", "msg": "insights request failed", "err": err.Error(),
		})
		return Fallback
	}
	obs.ObserveInsights("ok", time.Since(start))
	return text
}

func (c *Client) summarize(ctx context.Context, txs []cards.Transaction) (string, error) {
	if c.APIKey == "" {
		return "", errors.New("missing API key")
	}
	if c.limiter != nil && !c.limiter.Allow() {
		return "", errors.New("summary rate limit exceeded")
	}

	var total float64
	for _, tx := range txs {
		total += tx.Amount
	}
	samples := make([]string, 0, sampleLimit)
	for _, tx := range txs {
		if len(samples) == sampleLimit {
			break
		}
		samples = append(samples, fmt.Sprintf("%s (%s): %s", tx.Merchant, tx.Category, money.Format(tx.Amount, c.Currency)))
	}

	payload := map[string]any{
		"model": c.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": fmt.Sprintf(
				"Analyze these corporate card transactions and provide 3 key insights or suggestions to optimize spending. Total spent: %s. Sample transactions: %s",
				money.Format(total, c.Currency), strings.Join(samples, ", "))},
		},
		"temperature": 0.2,
	}
	buf, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("insights service error: %s", resp.Status)
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return blankAnswer, nil
	}
	return out.Choices[0].Message.Content, nil
}
