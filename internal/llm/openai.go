package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to any OpenAI-compatible completion endpoint. With the
// default base URL it targets a local Ollama server's /v1 API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	stream bool
}

func NewOpenAI(apiKey, baseURL, model string, stream bool) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
		stream: stream,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (Response, error) {
	reqID := uuid.NewString()[:8]
	log.Printf("[request %s] sending prompt to backend (model=%s, %d chars)", reqID, c.model, len(prompt))

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	if c.stream {
		return c.generateStream(ctx, reqID, req)
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("backend returned no choices")
	}
	return Response{
		Content:          resp.Choices[0].Message.Content,
		Model:            c.model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// generateStream collects the whole stream before returning; no parsing
// happens on partial chunks.
func (c *OpenAIClient) generateStream(ctx context.Context, reqID string, req openai.ChatCompletionRequest) (Response, error) {
	req.Stream = true
	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create chat completion stream: %w", err)
	}
	defer stream.Close()

	var b strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Response{}, fmt.Errorf("stream recv: %w", err)
		}
		if len(chunk.Choices) > 0 {
			b.WriteString(chunk.Choices[0].Delta.Content)
		}
	}
	log.Printf("[request %s] stream complete (%d chars)", reqID, b.Len())
	return Response{Content: b.String(), Model: c.model}, nil
}
