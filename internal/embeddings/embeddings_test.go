package embeddings

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, append([]string(nil), texts...))
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int { return 2 }
func (c *countingEmbedder) Name() string    { return "counting" }

func TestCachedEmbedder_ForwardsOnlyMisses(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{}
	cached := NewCachedEmbedder(inner, 10)

	first, err := cached.Embed(ctx, []string{"a", "bb"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 1}, {2, 1}}, first)

	second, err := cached.Embed(ctx, []string{"bb", "ccc", "a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{2, 1}, {3, 1}, {1, 1}}, second)

	require.Len(t, inner.calls, 2)
	assert.Equal(t, []string{"ccc"}, inner.calls[1])
	assert.Equal(t, 3, cached.Len())
}

func TestCachedEmbedder_AllHits(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{}
	cached := NewCachedEmbedder(inner, 0)

	_, err := cached.Embed(ctx, []string{"x"})
	require.NoError(t, err)
	_, err = cached.Embed(ctx, []string{"x", "x"})
	require.NoError(t, err)

	assert.Len(t, inner.calls, 1)
	assert.Equal(t, "counting", cached.Name())
	assert.Equal(t, 2, cached.Dimensions())
}

func TestCachedEmbedder_ErrorNotCached(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{err: errors.New("offline")}
	cached := NewCachedEmbedder(inner, 10)

	_, err := cached.Embed(ctx, []string{"x"})
	require.Error(t, err)
	assert.Equal(t, 0, cached.Len())
}

func TestToChromemFunc(t *testing.T) {
	ef := ToChromemFunc(&countingEmbedder{})

	vec, err := ef(context.Background(), "abcd")
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 1}, vec)

	_, err = ToChromemFunc(&countingEmbedder{err: errors.New("down")})(context.Background(), "x")
	assert.Error(t, err)
}

func TestNewOllamaEmbedder_Defaults(t *testing.T) {
	e := NewOllamaEmbedder("", 768, "")
	assert.Equal(t, "ollama/nomic-embed-text", e.Name())
	assert.Equal(t, 768, e.Dimensions())
}

func TestNewOpenAIEmbedder_Defaults(t *testing.T) {
	e := NewOpenAIEmbedder("key", "", "")
	assert.Equal(t, "openai/text-embedding-3-small", e.Name())
	assert.Equal(t, 1536, e.Dimensions())
	assert.Equal(t, 3072, NewOpenAIEmbedder("key", ModelTextEmbedding3Large, "http://localhost:1234/v1").Dimensions())
}
