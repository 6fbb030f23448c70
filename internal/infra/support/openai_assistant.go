package support

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"course-marketplace/internal/domain/ports/adapter"
)

var _ adapter.Assistant = (*OpenAIAssistant)(nil)

const systemPrompt = "You are the support assistant for an online course " +
	"marketplace. Answer questions about orders, payments, refunds, coupons, " +
	"invoices and course access briefly and factually. If a question needs " +
	"account-specific data, tell the user to contact human support."

// OpenAIAssistant backs the support chat fallback. tokenBudget caps the
// combined prompt size so a pasted novel cannot run up the bill.
type OpenAIAssistant struct {
	client      openai.Client
	model       string
	tokenBudget int
	encoder     *tiktoken.Tiktoken
}

func NewOpenAIAssistant(apiKey, model string, tokenBudget int) (*OpenAIAssistant, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if tokenBudget <= 0 {
		tokenBudget = 512
	}

	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("tiktoken encoding: %w", err)
	}

	return &OpenAIAssistant{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		tokenBudget: tokenBudget,
		encoder:     enc,
	}, nil
}

func (a *OpenAIAssistant) Answer(ctx context.Context, question string) (string, error) {
	question = a.truncateToBudget(question)

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(question),
		},
		MaxTokens: openai.Int(int64(a.tokenBudget)),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("openai chat: empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

// truncateToBudget trims the question to the token budget, keeping the head.
func (a *OpenAIAssistant) truncateToBudget(question string) string {
	tokens := a.encoder.Encode(question, nil, nil)
	if len(tokens) <= a.tokenBudget {
		return question
	}
	return a.encoder.Decode(tokens[:a.tokenBudget])
}
