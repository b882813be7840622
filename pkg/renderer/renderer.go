// Package renderer 把完整的 HTML 文档渲染成 PNG。
package renderer

import (
	"context"

	"skillpath_backend/internal/config"
)

const (
	EngineBrowser = "browser"
	EngineCanvas  = "canvas"
)

// Renderer 渲染失败直接返回错误，不做重试
type Renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
	Engine() string
	Close() error
}

// New 按配置选择渲染引擎
func New(cfg config.RendererConfig) Renderer {
	if cfg.ViewportWidth <= 0 {
		cfg.ViewportWidth = 1200
	}
	if cfg.ViewportHeight <= 0 {
		cfg.ViewportHeight = 850
	}
	if cfg.Engine == EngineCanvas {
		return NewCanvasRenderer(cfg)
	}
	return NewBrowserRenderer(cfg)
}
