// Package vector wraps the Qdrant client. Each ingested resource gets its own
// collection, named from a slug of the resource identifier.
package vector

import (
	"context"
	"fmt"
	"strconv"

	"chatstack_backend/pkg/logger"

	"github.com/gosimple/slug"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

const EmbeddingDim = 1024

type Client struct {
	q *qdrant.Client
}

func NewClient(host, port, apiKey string, useTLS bool) (*Client, error) {
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant port %q: %w", port, err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   portNum,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		logger.Get().Error("failed to connect to Qdrant",
			zap.String("host", host), zap.Error(err))
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	logger.Get().Info("connected to Qdrant", zap.String("host", host))
	return &Client{q: client}, nil
}

// CollectionName derives a stable collection name for a resource identifier
// (a file name or URL).
func CollectionName(kind, identifier string) string {
	return fmt.Sprintf("%s-%s", kind, slug.Make(identifier))
}

// Reset drops and recreates the collection so re-ingesting a resource never
// mixes stale chunks with fresh ones.
func (c *Client) Reset(ctx context.Context, collection string) error {
	exists, err := c.q.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if exists {
		if err := c.q.DeleteCollection(ctx, collection); err != nil {
			return err
		}
	}

	return c.q.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     EmbeddingDim,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

// Upsert stores one point per chunk, carrying the chunk text as payload.
func (c *Client) Upsert(ctx context.Context, collection string, vectors [][]float32, chunks []string) error {
	if len(vectors) != len(chunks) {
		return fmt.Errorf("vector/chunk count mismatch: %d != %d", len(vectors), len(chunks))
	}

	points := make([]*qdrant.PointStruct, 0, len(vectors))
	for i, vec := range vectors {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(i)),
			Vectors: qdrant.NewVectors(vec...),
			Payload: qdrant.NewValueMap(map[string]any{"text": chunks[i]}),
		})
	}

	_, err := c.q.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
	})
	return err
}

// Search returns the payload text of the closest chunks.
func (c *Client) Search(ctx context.Context, collection string, vec []float32, limit uint64) ([]string, error) {
	results, err := c.q.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(results))
	for _, point := range results {
		if v, ok := point.Payload["text"]; ok {
			texts = append(texts, v.GetStringValue())
		}
	}
	return texts, nil
}

// Drop removes a resource's collection. Callers treat failure as advisory.
func (c *Client) Drop(ctx context.Context, collection string) error {
	return c.q.DeleteCollection(ctx, collection)
}
