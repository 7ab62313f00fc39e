// External scoring dependency backed by the OpenAI chat completions API.
// The model is instructed to reply with a strict JSON object carrying the
// four scores; anything else is treated as a scoring failure, which the
// analyzer absorbs by falling back to the local heuristic.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/domain"
)

const scoringSystemPrompt = `You score product feedback. Reply with only a JSON object:
{"specificity":0..1,"actionability":0..1,"novelty":0..1,"sentiment":-1..1}
No prose, no code fences.`

// OpenAIScorer implements Scorer on top of the OpenAI chat completions API.
type OpenAIScorer struct {
	client *openai.Client
	model  string
}

// NewOpenAIScorer builds a scorer for the given API key and model.
func NewOpenAIScorer(apiKey, model string) *OpenAIScorer {
	return &OpenAIScorer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Score asks the model for quality scores. The caller bounds ctx; a timeout
// or transport failure surfaces as an error and never as a partial result.
func (s *OpenAIScorer) Score(ctx context.Context, content string) (domain.QualityMetrics, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: scoringSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
	})
	if err != nil {
		return domain.QualityMetrics{}, fmt.Errorf("scoring call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.QualityMetrics{}, fmt.Errorf("scoring returned no choices")
	}
	return parseScores(resp.Choices[0].Message.Content)
}

// parseScores decodes the model reply. Models occasionally wrap JSON in code
// fences despite instructions, so fences are stripped before decoding.
func parseScores(reply string) (domain.QualityMetrics, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")

	var m domain.QualityMetrics
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &m); err != nil {
		return domain.QualityMetrics{}, fmt.Errorf("scoring reply not parseable: %w", err)
	}
	return m, nil
}
