package embedding

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/capstone-recommender/backend/internal/domain"
	"github.com/capstone-recommender/backend/internal/metrics"
	"github.com/capstone-recommender/backend/pkg/circuitbreaker"
	"github.com/capstone-recommender/backend/pkg/logger"
	"github.com/capstone-recommender/backend/pkg/retry"
	"github.com/capstone-recommender/backend/pkg/utils"
)

const (
	embedTimeout  = 15 * time.Second
	cacheTTL      = 24 * time.Hour
)

// Cache stores query embeddings keyed by a text hash. A nil Cache disables
// caching. Cache failures never fail an Embed call.
type Cache interface {
	GetEmbedding(ctx context.Context, key string) ([]float32, bool, error)
	SetEmbedding(ctx context.Context, key string, embedding []float32, ttl time.Duration) error
}

// OpenAI is the production Embedder backed by the OpenAI embeddings API.
type OpenAI struct {
	client      *openai.Client
	model       string
	dim         int
	cache       Cache
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

func NewOpenAI(apiKey, model string, dim int, cache Cache) *OpenAI {
	cb := circuitbreaker.New("embedding", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	logger.Info("OpenAI embedder initialized",
		zap.String("model", model),
		zap.Int("dim", dim),
	)

	return &OpenAI{
		client:      openai.NewClient(apiKey),
		model:       model,
		dim:         dim,
		cache:       cache,
		cb:          cb,
		retryConfig: retry.DefaultConfig(),
	}
}

func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	key := utils.HashString(text)

	if o.cache != nil {
		if vec, ok, err := o.cache.GetEmbedding(ctx, key); err != nil {
			logger.Warn("embedding cache read failed", zap.Error(err))
		} else if ok {
			metrics.EmbedCacheHits.Inc()
			return vec, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	var embedding []float32

	err := o.cb.Execute(ctx, func() error {
		return retry.Do(ctx, o.retryConfig, func() error {
			resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
				Input: []string{text},
				Model: openai.EmbeddingModel(o.model),
			})
			if err != nil {
				return err
			}
			if len(resp.Data) == 0 {
				return fmt.Errorf("embeddings response contained no data")
			}

			embedding = make([]float32, len(resp.Data[0].Embedding))
			copy(embedding, resp.Data[0].Embedding)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	// A wrong-length vector would silently poison the similarity search, so
	// it is rejected here rather than padded or truncated.
	if len(embedding) != o.dim {
		return nil, fmt.Errorf("%w: backend returned %d dimensions, index expects %d",
			domain.ErrDimensionMismatch, len(embedding), o.dim)
	}

	if o.cache != nil {
		if err := o.cache.SetEmbedding(ctx, key, embedding, cacheTTL); err != nil {
			logger.Warn("embedding cache write failed", zap.Error(err))
		}
	}

	return embedding, nil
}
