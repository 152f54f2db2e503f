// Package ai runs the model-backed stages of a lookup: verifying that a
// candidate website belongs to the queried hotel, and extracting the
// phone number and room count from the scraped pages.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hotelinfo/internal/model"
	"github.com/sells-group/hotelinfo/internal/resilience"
	"github.com/sells-group/hotelinfo/pkg/anthropic"
)

// pageTextBudget caps how much scraped text goes into one prompt.
const pageTextBudget = 12000

// Config tunes the model calls.
type Config struct {
	Model      string
	MaxRetries int
}

// Service wraps the model client for the verify and extract stages.
type Service struct {
	client anthropic.Client
	cfg    Config
	retry  resilience.RetryConfig
}

// NewService creates the AI stage service.
func NewService(client anthropic.Client, cfg Config) *Service {
	retry := resilience.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxAttempts = cfg.MaxRetries
	}
	retry.OnRetry = func(attempt int, err error) {
		zap.L().Warn("model call retry",
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return &Service{client: client, cfg: cfg, retry: retry}
}

// VerifyResult is the model's judgement on a candidate website.
type VerifyResult struct {
	Match      bool    `json:"match"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Verify asks whether the scraped site belongs to the queried hotel. Pages
// with almost no text cannot be judged and verify permissively so the
// extraction stage still runs; it is the extraction confidence that gates
// the final status.
func (s *Service) Verify(ctx context.Context, query model.HotelQuery, pages []*model.ScrapedPage) (*VerifyResult, error) {
	text := concatPages(pages)
	if len(text) < 100 {
		return &VerifyResult{Match: true, Confidence: 0.3, Reason: "insufficient content to judge"}, nil
	}

	prompt := fmt.Sprintf("Hotel searched for: %s\nLocation: %s\n\nCandidate website pages:\n%s",
		query.Name, queryLocation(query), text)

	raw, err := s.complete(ctx, verifySystemPrompt, prompt, 256)
	if err != nil {
		return nil, eris.Wrap(err, "ai: verify candidate")
	}

	var result VerifyResult
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &result); err != nil {
		return nil, eris.Wrapf(err, "ai: parse verify response %q", truncate(raw, 200))
	}
	return &result, nil
}

// Extraction is the model's structured answer for one verified site.
type Extraction struct {
	UKContactPhone   *string `json:"uk_contact_phone"`
	PhoneType        *string `json:"phone_type"`
	PhoneSourceURL   *string `json:"phone_source_url"`
	RoomsMin         *int    `json:"rooms_min"`
	RoomsMax         *int    `json:"rooms_max"`
	RoomsSourceNotes *string `json:"rooms_source_notes"`
	Confidence       float64 `json:"confidence"`
}

// Extract pulls the phone number and room count from the verified site's
// pages. The deterministic pre-extraction is offered to the model as
// candidate values to confirm, and searchNotes carries the search agent's
// own sourced answer when the candidate came from the grounding provider.
func (s *Service) Extract(ctx context.Context, query model.HotelQuery, pages []*model.ScrapedPage, pre *model.PreExtraction, searchNotes string) (*Extraction, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Hotel: %s\nLocation: %s\n", query.Name, queryLocation(query))

	if searchNotes = strings.TrimSpace(searchNotes); searchNotes != "" {
		b.WriteString("\nSearch agent notes (secondary source, verify against pages):\n")
		b.WriteString(truncate(searchNotes, 1500))
		b.WriteString("\n")
	}

	if pre != nil && (len(pre.Phones) > 0 || len(pre.RoomMentions) > 0) {
		b.WriteString("\nCandidate values found by pattern matching:\n")
		for _, p := range pre.Phones {
			fmt.Fprintf(&b, "- phone %s (%s) on %s\n", p.Number, p.Type, p.SourcePage)
		}
		for _, m := range pre.RoomMentions {
			fmt.Fprintf(&b, "- rooms %d-%d (weight %.0f): %q\n", m.Min, m.Max, m.Weight, m.Context)
		}
	}

	b.WriteString("\nWebsite pages:\n")
	b.WriteString(concatPages(pages))

	raw, err := s.complete(ctx, extractSystemPrompt, b.String(), 512)
	if err != nil {
		return nil, eris.Wrap(err, "ai: extract details")
	}

	var ext Extraction
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &ext); err != nil {
		return nil, eris.Wrapf(err, "ai: parse extract response %q", truncate(raw, 200))
	}
	return &ext, nil
}

func (s *Service) complete(ctx context.Context, system, user string, maxTokens int64) (string, error) {
	resp, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return s.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     s.cfg.Model,
			MaxTokens: maxTokens,
			System:    system,
			Messages:  []anthropic.Message{{Role: "user", Content: user}},
		})
	})
	if err != nil {
		return "", err
	}
	resp.Usage.LogUsage(s.cfg.Model, "lookup")
	return resp.Text(), nil
}

// concatPages joins page texts under per-page headers, trimming to the
// prompt budget. The homepage comes first and is never truncated away.
func concatPages(pages []*model.ScrapedPage) string {
	var b strings.Builder
	for _, p := range pages {
		if p == nil || p.Text == "" {
			continue
		}
		remaining := pageTextBudget - b.Len()
		if remaining <= 0 {
			break
		}
		fmt.Fprintf(&b, "--- %s (%s) ---\n", p.URL, p.Title)
		b.WriteString(truncate(p.Text, remaining))
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

func queryLocation(q model.HotelQuery) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{q.Address, q.City, q.Postcode} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "UK"
	}
	return strings.Join(parts, ", ")
}

// cleanJSON strips markdown fences and any prose around the outermost JSON
// object. Models occasionally wrap their answer despite instructions.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
