// Package transcript implements C4: classifying a video's caption text
// against the service's child-safety policy using Gemini.
package transcript

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/happyscroll/verdict-service/internal/verdict"
)

// model is pinned rather than configurable: the prompt below is tuned
// against this model's response shape, and swapping models without
// re-validating the prompt risks silent policy drift.
const model = "gemini-2.0-flash"

// maxCaptionRunes bounds how much caption text is sent to the classifier.
// Content past this point is unlikely to change the verdict and only
// inflates token cost and latency.
const maxCaptionRunes = 12000

var verdictPattern = regexp.MustCompile(`(?i)VERDICT:\s*(YES|NO)`)
var reasonPattern = regexp.MustCompile(`(?is)REASON:\s*(.+)`)

// hedgeWords catches a classifier response that nominally says YES but
// hedges enough that a fail-closed policy should still treat it as unsafe.
var hedgeWords = []string{"might", "could be", "possibly", "unclear", "not sure", "hard to tell"}

// Classifier sends caption text to Gemini and parses the verdict.
type Classifier struct {
	client *genai.Client
	log    zerolog.Logger
}

// New constructs a Classifier backed by the given Gemini API key.
func New(ctx context.Context, apiKey string, log zerolog.Logger) (*Classifier, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("transcript: constructing genai client: %w", err)
	}
	return &Classifier{client: client, log: log}, nil
}

// Classify analyzes meta.Caption and returns a BranchResult: OK(true) when
// the model judges the content safe with no hedging, OK(false) with the
// model's stated reason when it judges it unsafe, or Err(...) when the
// model call fails or its response cannot be parsed.
func (c *Classifier) Classify(ctx context.Context, meta verdict.Metadata) verdict.BranchResult {
	caption := meta.Caption
	if runes := []rune(caption); len(runes) > maxCaptionRunes {
		caption = string(runes[:maxCaptionRunes])
	}

	prompt := buildPrompt(meta.Title, meta.ChannelTitle, caption)

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return verdict.Err("ClassifierUnavailable", err.Error())
	}

	text, err := resp.Text()
	if err != nil {
		return verdict.Err("ClassifierUnavailable", err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return verdict.Err("ClassifierUnavailable", "empty response from classifier")
	}

	return parseVerdict(text)
}

// buildPrompt assembles a fixed-structure prompt enumerating the safety
// rules plainly, rather than delegating rule selection to the model — a
// stable, literal rule list keeps audits of safe/unsafe calls tractable.
func buildPrompt(title, channelTitle, caption string) string {
	var b strings.Builder
	b.WriteString("You are a content safety classifier screening videos for young children (ages 3-8).\n\n")
	b.WriteString("VIDEO TITLE: " + title + "\n")
	b.WriteString("CHANNEL: " + channelTitle + "\n")
	b.WriteString("TRANSCRIPT OR DESCRIPTION:\n" + caption + "\n\n")
	b.WriteString("Mark UNSAFE if the transcript contains ANY of:\n")
	b.WriteString("1. Profanity, slurs, or abusive language\n")
	b.WriteString("2. Sexual content or innuendo of any kind\n")
	b.WriteString("3. Violence, weapons, or descriptions of physical harm\n")
	b.WriteString("4. References to drugs, alcohol, or self-harm\n")
	b.WriteString("5. Frightening, graphic, or disturbing content\n")
	b.WriteString("6. Dangerous stunts or behavior a child might imitate\n")
	b.WriteString("7. Discrimination, hate speech, or slurs against any group\n")
	b.WriteString("8. Mature or adult themes unsuitable for young children\n\n")
	b.WriteString("If uncertain, mark UNSAFE — a false negative is worse than a false positive.\n\n")
	b.WriteString("Respond in exactly this format:\n")
	b.WriteString("VERDICT: YES or NO (YES means safe)\n")
	b.WriteString("REASON: one sentence explaining the decision\n")
	return b.String()
}

// parseVerdict extracts the VERDICT/REASON pair from a classifier
// response. A response lacking a recognizable VERDICT line is treated as
// ClassifierUnparseable rather than guessed at — fail-closed applies
// uniformly whether the model said UNSAFE or said nothing parseable.
func parseVerdict(text string) verdict.BranchResult {
	m := verdictPattern.FindStringSubmatch(text)
	if m == nil {
		return verdict.Err("ClassifierUnparseable", "no VERDICT keyword found in classifier response")
	}

	reason := strings.TrimSpace(text)
	if rm := reasonPattern.FindStringSubmatch(text); rm != nil {
		reason = strings.TrimSpace(rm[1])
	}

	safe := strings.EqualFold(m[1], "YES")
	if safe && containsHedge(reason) {
		return verdict.OK(false, "classifier hedged despite YES verdict: "+reason)
	}

	return verdict.OK(safe, reason)
}

func containsHedge(reason string) bool {
	lower := strings.ToLower(reason)
	for _, word := range hedgeWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
