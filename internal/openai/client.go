package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cloo-solutions/intakeiq/internal/service"
)

const (
	// DefaultChatModel is the OpenAI model used for content classification
	DefaultChatModel = openai.GPT4oMini
)

var (
	// ErrEmptyFileName is returned when the filename is empty
	ErrEmptyFileName = errors.New("file name cannot be empty")
	// ErrNoAPIKey is returned when OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
)

// ChatAPI defines the interface for chat completion calls
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client classifies documents via the OpenAI chat API when the filename
// rules miss. It implements service.ContentClassifier.
type Client struct {
	api   ChatAPI
	model string
	// fileTypes constrains the model's answer to the canonical vocabulary.
	fileTypes []string
}

type Config struct {
	APIKey    string
	ChatModel string
	FileTypes []string
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string, fileTypes []string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey, FileTypes: fileTypes})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	model := cfg.ChatModel
	if model == "" {
		model = DefaultChatModel
	}
	return &Client{
		api:       openai.NewClient(cfg.APIKey),
		model:     model,
		fileTypes: cfg.FileTypes,
	}
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv(fileTypes []string) (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey, fileTypes), nil
}

type classifyResponse struct {
	FileType   string  `json:"file_type"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// ClassifyContent asks the model to classify a document by its filename,
// constrained to the known file types. Returns nil when the model declines.
func (c *Client) ClassifyContent(ctx context.Context, fileName string) (*service.ContentGuess, error) {
	if fileName == "" {
		return nil, ErrEmptyFileName
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: c.systemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Classify this document: %q", fileName),
			},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to classify content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no completion choices returned")
	}

	var parsed classifyResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse classification response: %w", err)
	}
	if parsed.FileType == "" || strings.EqualFold(parsed.FileType, "unknown") {
		return nil, nil
	}

	return &service.ContentGuess{
		FileType:   parsed.FileType,
		Category:   parsed.Category,
		Confidence: parsed.Confidence,
	}, nil
}

func (c *Client) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You classify lending documents by filename. ")
	b.WriteString("Respond with JSON: {\"file_type\": string, \"category\": string, \"confidence\": number between 0 and 1}. ")
	b.WriteString("Use \"unknown\" when unsure.")
	if len(c.fileTypes) > 0 {
		b.WriteString(" Known file types: ")
		b.WriteString(strings.Join(c.fileTypes, ", "))
		b.WriteString(".")
	}
	return b.String()
}

var _ service.ContentClassifier = (*Client)(nil)
