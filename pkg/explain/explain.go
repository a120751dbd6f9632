// Package explain turns a calculation's audit trail into a short plain-text
// explanation using Google's Gemini API. It is strictly optional: callers
// treat any error as "no explanation available" and carry on.
package explain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"google.golang.org/genai"

	"github.com/journeykit/sendtime/pkg/sendtime"
)

const defaultModel = "gemini-2.5-flash-lite"

// Explainer generates natural-language summaries of send-time results.
type Explainer struct {
	logger *slog.Logger
	apiKey string
	model  string
}

// New creates an Explainer. The API key is required; the model defaults to a
// small fast one when empty.
func New(apiKey, model string, logger *slog.Logger) (*Explainer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Explainer{logger: logger, apiKey: apiKey, model: model}, nil
}

// Explain summarizes why the result's send time landed where it did.
func (e *Explainer) Explain(ctx context.Context, result sendtime.Result) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  e.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	prompt := buildPrompt(result)
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}
	temperature := float32(0.2)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 300,
	}

	var resp *genai.GenerateContentResponse
	err = retry.Do(
		func() error {
			var callErr error
			resp, callErr = client.Models.GenerateContent(ctx, e.model, contents, config)
			if callErr != nil && !isTransient(callErr) {
				return retry.Unrecoverable(callErr)
			}
			return callErr
		},
		retry.Attempts(3),
		retry.Delay(100*time.Millisecond),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(50*time.Millisecond),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			e.logger.Debug("retrying explanation request", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", errors.New("empty response from gemini")
	}
	return strings.TrimSpace(text), nil
}

// buildPrompt renders the audit trail as a compact brief for the model.
func buildPrompt(result sendtime.Result) string {
	var b strings.Builder
	b.WriteString("You are summarizing a marketing send-time calculation for a support engineer.\n")
	b.WriteString("Write 2-3 plain sentences explaining why the send time landed where it did. No markdown.\n\n")
	fmt.Fprintf(&b, "Entry time: %s\n", result.OriginalTime.Format(time.RFC3339))
	fmt.Fprintf(&b, "Country: %s (zone %s, fallback used: %v)\n", result.EffectiveCountry, result.Timezone, result.FallbackUsed)
	if result.Success {
		fmt.Fprintf(&b, "Final send time (reference clock): %s\n", result.OptimalSendTime.Format(time.RFC3339))
	} else {
		fmt.Fprintf(&b, "Calculation failed: %s (%s)\n", result.Error, result.ErrorCategory)
	}
	if len(result.Adjustments) > 0 {
		b.WriteString("Adjustments, in order:\n")
		for _, adj := range result.Adjustments {
			fmt.Fprintf(&b, "- %s: %s (days adjusted: %d)\n", adj.Type, adj.Reason, adj.DaysAdjusted)
		}
	} else {
		b.WriteString("No adjustments were needed.\n")
	}
	return b.String()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}
	return candidate.Content.Parts[0].Text
}

func isTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"rate limit", "quota", "timeout", "deadline", "unavailable",
		"internal server error", "502", "503", "504",
	} {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
