// Package insights asks an external generative model for a short business
// summary of recent orders. The call is advisory only: any failure degrades
// to a fixed message and never surfaces as a domain error.
package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
)

const (
	// FallbackMessage is returned whenever the external service fails.
	FallbackMessage = "Unable to load AI insights at this time."

	// NoDataMessage is returned when there is nothing to analyze.
	NoDataMessage = "Not enough data for insights yet."

	maxOrdersInPrompt = 10
)

// Summarizer produces an advisory summary of recent orders.
type Summarizer interface {
	Summarize(ctx context.Context, orders []*domain.Order) string
}

// Client talks to a Gemini-style generateContent endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
}

func NewClient(endpoint, model, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      model,
		apiKey:     apiKey,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Summarize never returns an error: the caller always gets usable text.
func (c *Client) Summarize(ctx context.Context, orders []*domain.Order) string {
	if len(orders) == 0 {
		return NoDataMessage
	}
	if c.apiKey == "" {
		return FallbackMessage
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(orders)}}}},
	})
	if err != nil {
		return FallbackMessage
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return FallbackMessage
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return FallbackMessage
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return FallbackMessage
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return FallbackMessage
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return FallbackMessage
	}
	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return FallbackMessage
	}
	return text
}

func buildPrompt(orders []*domain.Order) string {
	if len(orders) > maxOrdersInPrompt {
		orders = orders[len(orders)-maxOrdersInPrompt:]
	}

	type orderSummary struct {
		Total string   `json:"total"`
		Items []string `json:"items"`
		Time  string   `json:"time"`
	}
	summaries := make([]orderSummary, 0, len(orders))
	for _, o := range orders {
		names := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			names = append(names, it.Name)
		}
		summaries = append(summaries, orderSummary{
			Total: o.Total.StringFixed(2),
			Items: names,
			Time:  o.CreatedAt.Format("15:04:05"),
		})
	}
	data, _ := json.Marshal(summaries)

	return fmt.Sprintf(`As a restaurant management consultant, analyze the following recent orders and provide a 3-sentence summary:
1. Key revenue performance.
2. Most popular item trends.
3. One specific recommendation for the manager.

Data: %s`, data)
}
