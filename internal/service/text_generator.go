package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"skillpath_backend/internal/config"

	"google.golang.org/genai"
)

// TextGenerator 根据提示词生成文本
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// modelSetter 支持热更新模型名称的生成器
type modelSetter interface {
	SetModel(model string)
}

var ErrNoAPIKey = errors.New("AI API key is not configured")

// NewTextGenerator 按 ai.provider 创建生成器，未配置密钥时返回 ErrNoAPIKey，调用方使用 nil 生成器走兜底逻辑
func NewTextGenerator(ctx context.Context, cfg config.AIConfig) (TextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	switch cfg.Provider {
	case "openai":
		return NewAIService(cfg), nil
	case "genai", "":
		c, err := NewGenAIClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
	}
}

// GenAIClient 调用 Gemini 生成 JSON 文本
type GenAIClient struct {
	client *genai.Client

	mu    sync.RWMutex
	model string
}

func NewGenAIClient(ctx context.Context, cfg config.AIConfig) (*GenAIClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIClient{client: client, model: cfg.Model}, nil
}

func (c *GenAIClient) SetModel(model string) {
	if model == "" {
		return
	}
	c.mu.Lock()
	c.model = model
	c.mu.Unlock()
}

func (c *GenAIClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	c.mu.RLock()
	model := c.model
	c.mu.RUnlock()

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.7),
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("GenAI returned empty response")
	}
	return text, nil
}
