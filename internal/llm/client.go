package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/capstone-recommender/backend/internal/domain"
	"github.com/capstone-recommender/backend/pkg/circuitbreaker"
	"github.com/capstone-recommender/backend/pkg/logger"
	"github.com/capstone-recommender/backend/pkg/retry"
)

// Client is the Generator adapter over the OpenAI chat completions API.
// Retries and circuit breaking live here, not in the orchestrator: the core
// performs a single attempt per stage and this adapter decides how hard one
// attempt tries before giving up.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

func NewClient(apiKey, model string, temperature float32, maxTokens, timeoutSec int) *Client {
	if timeoutSec <= 0 {
		timeoutSec = 45
	}

	cb := circuitbreaker.New("generator", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	logger.Info("generator client initialized",
		zap.String("model", model),
		zap.Int("timeout_sec", timeoutSec),
	)

	return &Client{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     time.Duration(timeoutSec) * time.Second,
		cb:          cb,
		retryConfig: retry.DefaultConfig(),
	}
}

// Generate sends the assembled prompt as a single user message. The system
// instruction is part of the prompt itself; the assembler owns prompt
// layout, this adapter owns transport.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	answer, err := retry.DoWithResult(ctx, c.retryConfig, func() (string, error) {
		var content string
		cbErr := c.cb.Execute(ctx, func() error {
			resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model: c.model,
				Messages: []openai.ChatCompletionMessage{
					{Role: openai.ChatMessageRoleUser, Content: prompt},
				},
				Temperature: c.temperature,
				MaxTokens:   c.maxTokens,
			})
			if err != nil {
				return err
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("completion response contained no choices")
			}

			logger.Debug("completion generated",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			content = resp.Choices[0].Message.Content
			return nil
		})
		return content, cbErr
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", domain.ErrGenerationTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}

	return answer, nil
}
