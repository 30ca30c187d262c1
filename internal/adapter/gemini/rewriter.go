package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"

	"paperbase/internal/expand"
)

const (
	historyWindow = 3
	answerPreview = 200
)

// Rewriter turns a follow-up question into a standalone query using the
// recent conversation turns.
type Rewriter struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewRewriter(client *genai.Client, model string, timeout time.Duration) *Rewriter {
	return &Rewriter{client: client, model: model, timeout: timeout}
}

func (r *Rewriter) Rewrite(ctx context.Context, query string, history []expand.Turn) (string, error) {
	ctx, cancel := netContext(ctx, r.timeout)
	defer cancel()

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	var b strings.Builder
	b.WriteString("Rewrite the user's latest question as a standalone search query. ")
	b.WriteString("Resolve pronouns and references using the conversation. ")
	b.WriteString("Answer with the rewritten query only, in the same language as the question.\n\n")
	for _, turn := range history {
		b.WriteString("Q: " + turn.Question + "\n")
		if answer := previewAnswer(turn.Answer); answer != "" {
			b.WriteString("A: " + answer + "\n")
		}
	}
	b.WriteString("\nLatest question: " + query)

	model := r.client.GenerativeModel(r.model)
	res, err := model.GenerateContent(ctx, genai.Text(b.String()))
	if err != nil {
		return "", err
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", fmt.Errorf("rewrite response empty")
	}

	var out strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	return strings.TrimSpace(out.String()), nil
}

func previewAnswer(answer string) string {
	answer = strings.TrimSpace(answer)
	runes := []rune(answer)
	if len(runes) > answerPreview {
		return string(runes[:answerPreview]) + "…"
	}
	return answer
}
