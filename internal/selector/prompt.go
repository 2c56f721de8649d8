// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package selector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/pdiddy/casedeck/internal/httputil"
	"github.com/pdiddy/casedeck/pkg/types"
)

// rankingPromptTmpl asks the model for exactly 4 catalog ids, most
// relevant first. Logo references are deliberately absent from the
// catalog listing: they carry no ranking signal.
var rankingPromptTmpl = template.Must(template.New("ranking").Parse(`You are an expert business analyst selecting relevant case studies for a sales deck.

TARGET COMPANY:
Name: {{.Name}}
Description: {{.Description}}

Select the 4 most relevant case studies using these criteria:
- industry alignment with the target company
- similarity of the challenges addressed
- complementary perspectives across the 4 picks
- relevance of the solutions delivered

CASE STUDIES:
{{range .Cases}}ID: {{.ID}}
Organization: {{.Organization}}
Sector: {{.Sector}}
Summary: {{.Summary}}
Metrics: {{.MetricLabels}}

{{end}}Respond with a JSON object and nothing else:
{"reasoning": "why these 4", "ids": ["id1", "id2", "id3", "id4"]}

The ids array must contain exactly 4 distinct ids from the list above, most relevant first.
`))

// strictInstruction is appended on the single retry after an invalid
// response.
const strictInstruction = `

Your previous answer did not follow the contract. Return ONLY a JSON object of the exact form {"reasoning": "...", "ids": ["...", "...", "...", "..."]} with exactly 4 distinct ids copied verbatim from the CASE STUDIES list. No prose, no code fences.`

// promptCase is one catalog entry as rendered into the prompt.
type promptCase struct {
	ID           string
	Organization string
	Sector       types.Sector
	Summary      string
	MetricLabels string
}

// buildPrompt renders the ranking prompt for a profile and catalog.
func buildPrompt(profile types.CompanyProfile, cases []types.CaseStudy) (string, error) {
	view := struct {
		Name        string
		Description string
		Cases       []promptCase
	}{
		Name:        profile.Name,
		Description: profile.Description,
	}
	for _, cs := range cases {
		labels := make([]string, 0, len(cs.Metrics))
		for _, m := range cs.Metrics {
			labels = append(labels, m.Label)
		}
		view.Cases = append(view.Cases, promptCase{
			ID:           cs.ID,
			Organization: cs.Organization,
			Sector:       cs.Sector,
			Summary:      cs.Summary,
			MetricLabels: strings.Join(labels, ", "),
		})
	}

	var buf bytes.Buffer
	if err := rankingPromptTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// claudeAPIURL is the Claude API endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeRanker calls the Claude Messages API to rank catalog entries.
type ClaudeRanker struct {
	APIKey string
	Model  string
	Client *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Rank sends the prompt and parses the model's JSON answer. HTTP 429s are
// retried by httputil; everything else is a single shot bounded by ctx.
func (c *ClaudeRanker) Rank(ctx context.Context, prompt string) (RankResponse, error) {
	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 1024,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return RankResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return RankResponse{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return RankResponse{}, fmt.Errorf("calling ranking API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return RankResponse{}, fmt.Errorf("ranking API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return RankResponse{}, fmt.Errorf("decoding API response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		var rank RankResponse
		if err := json.Unmarshal([]byte(strings.TrimSpace(block.Text)), &rank); err != nil {
			// Malformed JSON is a contract violation, not a transport
			// failure: let the selector issue its stricter retry.
			return RankResponse{}, nil
		}
		return rank, nil
	}

	return RankResponse{}, fmt.Errorf("no text content in ranking API response")
}
