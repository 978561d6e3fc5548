package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/capstone-recommender/backend/internal/domain"
	"github.com/capstone-recommender/backend/pkg/logger"
)

// Client is the VectorIndex adapter over a Milvus collection of past-project
// README chunks. The collection is built by the ingestion pipeline; this
// client only searches it, scoped to the configured collection name.
type Client struct {
	client         client.Client
	collectionName string
	vectorDim      int
}

func NewClient(endpoint, collectionName string, vectorDim int) (*Client, error) {
	c, err := client.NewGrpcClient(context.Background(), endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("milvus client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
		zap.Int("dim", vectorDim),
	)

	return &Client{
		client:         c,
		collectionName: collectionName,
		vectorDim:      vectorDim,
	}, nil
}

func (m *Client) Close() error {
	return m.client.Close()
}

// LoadCollection makes the collection searchable. It fails when the
// ingestion pipeline has not created it yet.
func (m *Client) LoadCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !has {
		return fmt.Errorf("collection %q does not exist; run the ingestion pipeline first", m.collectionName)
	}

	if err := m.client.LoadCollection(ctx, m.collectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("collection loaded", zap.String("collection", m.collectionName))
	return nil
}

func (m *Client) Query(ctx context.Context, vector []float32, topK int) ([]domain.EvidenceItem, error) {
	if len(vector) != m.vectorDim {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, collection expects %d",
			domain.ErrDimensionMismatch, len(vector), m.vectorDim)
	}

	sp, _ := entity.NewIndexIvfFlatSearchParam(16)

	searchResult, err := m.client.Search(
		ctx,
		m.collectionName,
		[]string{},
		"",
		[]string{"chunk_id", "text", "title", "description", "technologies"},
		[]entity.Vector{entity.FloatVector(vector)},
		"embedding",
		entity.IP,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrievalUnavailable, err)
	}

	items := make([]domain.EvidenceItem, 0)
	for _, sr := range searchResult {
		for i := 0; i < sr.ResultCount; i++ {
			item := domain.EvidenceItem{
				ID:       columnString(sr.Fields.GetColumn("chunk_id"), i),
				Text:     columnString(sr.Fields.GetColumn("text"), i),
				Score:    sr.Scores[i],
				Metadata: map[string]string{},
			}
			for _, key := range []string{"title", "description", "technologies"} {
				if v := columnString(sr.Fields.GetColumn(key), i); v != "" {
					item.Metadata[key] = v
				}
			}
			items = append(items, item)
		}
	}

	logger.Debug("vector search completed",
		zap.Int("topK", topK),
		zap.Int("results", len(items)),
	)

	return items, nil
}

func columnString(col entity.Column, idx int) string {
	if col == nil {
		return ""
	}
	v, err := col.Get(idx)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
