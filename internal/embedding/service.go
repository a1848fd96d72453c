package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Service wraps the OpenAI embeddings API. Both the query path (one unit
// at a time) and the offline loader (batched) go through it.
type Service struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewService(apiKey, model string) *Service {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &Service{
		client: openai.NewClient(apiKey),
		model:  openai.EmbeddingModel(model),
	}
}

// Embed returns one vector per input text, batching in groups of 100 for
// API limits.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	const batchSize = 100
	var all [][]float32

	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts[i:end],
			Model: s.model,
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch %d: %w", i/batchSize, err)
		}

		for _, d := range resp.Data {
			all = append(all, d.Embedding)
		}
	}

	return all, nil
}

func (s *Service) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vectors[0], nil
}
