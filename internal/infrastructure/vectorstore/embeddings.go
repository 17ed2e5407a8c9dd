package vectorstore

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
	openai "github.com/sashabaranov/go-openai"
)

// NewOpenAIEmbedding returns an embedding function over the OpenAI
// Embeddings API producing vectors of the given dimension. The
// dimension is fixed at store initialization; every index in a
// deployment shares it.
func NewOpenAIEmbedding(apiKey string, dimension int) chromem.EmbeddingFunc {
	client := openai.NewClient(apiKey)

	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input:      []string{text},
			Model:      openai.SmallEmbedding3,
			Dimensions: dimension,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create embedding: %w", err)
		}
		if len(resp.Data) == 0 {
			return nil, fmt.Errorf("embedding response is empty")
		}
		return resp.Data[0].Embedding, nil
	}
}
