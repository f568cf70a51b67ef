package associator

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

const (
	bodyTruncateLen = 1500
	callTimeout     = 30 * time.Second
)

// scoreRE pulls the first "0.xxx" or "1.0" token out of a chat response.
var scoreRE = regexp.MustCompile(`0\.[0-9]+|1\.0`)

// ChatAssociator scores note pairs by asking a chat-completion endpoint how
// strongly related they are. Any transport, timeout, or parse failure
// yields a logged warning and a score of 0.0 rather than an error, so one
// bad call never aborts a maintenance run.
type ChatAssociator struct {
	client openai.Client
	model  string
}

// NewChatAssociator builds a ChatAssociator against baseURL (empty keeps
// the SDK default) using apiKey and model.
func NewChatAssociator(baseURL, apiKey, model string) *ChatAssociator {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &ChatAssociator{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (c *ChatAssociator) Associate(ctx context.Context, docA, bodyA, docB, bodyB string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Rate how strongly related these two notes are on a scale from 0.0 (unrelated) to 1.0 (tightly related). Respond with only the number.\n\n--- %s ---\n%s\n\n--- %s ---\n%s",
		docA, truncate(bodyA, bodyTruncateLen),
		docB, truncate(bodyB, bodyTruncateLen),
	)

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: param.NewOpt(0.0),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Printf("associator: chat completion call failed for (%s, %s): %v", docA, docB, err)
		return 0.0, nil
	}
	if len(resp.Choices) == 0 {
		log.Printf("associator: chat completion returned no choices for (%s, %s)", docA, docB)
		return 0.0, nil
	}

	text := resp.Choices[0].Message.Content
	match := scoreRE.FindString(text)
	if match == "" {
		log.Printf("associator: could not parse a score out of response %q for (%s, %s)", text, docA, docB)
		return 0.0, nil
	}

	var score float64
	if _, err := fmt.Sscanf(match, "%g", &score); err != nil {
		log.Printf("associator: failed to parse matched score %q for (%s, %s): %v", match, docA, docB, err)
		return 0.0, nil
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
