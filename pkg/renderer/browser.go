package renderer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"skillpath_backend/internal/config"
	"skillpath_backend/pkg/logger"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// BrowserRenderer 使用无头 Chrome 截图，浏览器进程懒启动并在多次渲染间复用
type BrowserRenderer struct {
	cfg config.RendererConfig

	mu       sync.Mutex
	launch   *launcher.Launcher
	instance *rod.Browser
}

func NewBrowserRenderer(cfg config.RendererConfig) *BrowserRenderer {
	return &BrowserRenderer{cfg: cfg}
}

func (r *BrowserRenderer) Engine() string {
	return EngineBrowser
}

func (r *BrowserRenderer) browser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.instance != nil {
		return r.instance, nil
	}

	l := launcher.New().Headless(true)
	if r.cfg.BrowserBin != "" {
		l = l.Bin(r.cfg.BrowserBin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	logger.Log.Info("Headless browser started", zap.String("controlURL", controlURL))
	r.launch = l
	r.instance = b
	return b, nil
}

const browserPingTimeout = 3 * time.Second

// browserDead 本次渲染自身超时或取消时不判定浏览器失效
func browserDead(renderCtxErr error, ping func() error) bool {
	if renderCtxErr != nil {
		return false
	}
	return ping() != nil
}

func pingBrowser(b *rod.Browser) error {
	ctx, cancel := context.WithTimeout(context.Background(), browserPingTimeout)
	defer cancel()
	_, err := b.Context(ctx).Version()
	return err
}

// resetIfDead 浏览器连接确实断开时才丢弃实例，其他并发渲染不受单次失败影响
func (r *BrowserRenderer) resetIfDead(renderCtx context.Context, b *rod.Browser) {
	if !browserDead(renderCtx.Err(), func() error { return pingBrowser(b) }) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// 可能已被其他请求重启过
	if r.instance != b {
		return
	}
	logger.Log.Warn("Headless browser connection lost, restarting on next render")
	r.closeLocked()
}

func (r *BrowserRenderer) Render(ctx context.Context, content string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout())
	defer cancel()

	b, err := r.browser()
	if err != nil {
		return nil, err
	}

	page, err := b.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		r.resetIfDead(ctx, b)
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer func() {
		if cerr := page.Context(context.Background()).Close(); cerr != nil {
			logger.Log.Warn("Failed to close render page", zap.Error(cerr))
		}
	}()

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             r.cfg.ViewportWidth,
		Height:            r.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}).Call(page); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	wait := page.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)
	if err := page.SetDocumentContent(content); err != nil {
		return nil, fmt.Errorf("load html: %w", err)
	}
	wait()

	img, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return img, nil
}

func (r *BrowserRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeLocked()
}

func (r *BrowserRenderer) closeLocked() error {
	var err error
	if r.instance != nil {
		err = r.instance.Close()
		r.instance = nil
	}
	if r.launch != nil {
		r.launch.Kill()
		r.launch = nil
	}
	return err
}
