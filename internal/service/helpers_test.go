package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"skillpath_backend/internal/config"
	"skillpath_backend/internal/repository"
)

var errUpstream = errors.New("upstream unavailable")

// fakeGenerator 依次返回预设结果，用尽后重复最后一个
type fakeGenerator struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     atomic.Int32
	model     string
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	n := int(f.calls.Add(1)) - 1
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.errs) > 0 {
		i := n
		if i >= len(f.errs) {
			i = len(f.errs) - 1
		}
		if f.errs[i] != nil {
			return "", f.errs[i]
		}
	}
	if len(f.responses) == 0 {
		return "", errUpstream
	}
	i := n
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func (f *fakeGenerator) SetModel(model string) {
	f.mu.Lock()
	f.model = model
	f.mu.Unlock()
}

func failingGenerator() *fakeGenerator {
	return &fakeGenerator{errs: []error{errUpstream}}
}

func testAIConfig() config.AIConfig {
	return config.AIConfig{
		Model:          "test-model",
		TimeoutSeconds: 5,
		MaxRetries:     2,
		RetryBackoffMs: 0,
	}
}

func newTestContentGenerator(gen TextGenerator) *ContentGenerator {
	return NewContentGenerator(gen, repository.NewCacheRepository(nil), testAIConfig())
}

// fakeRenderer 记录调用次数
type fakeRenderer struct {
	calls atomic.Int32
	err   error
}

func (r *fakeRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return []byte("\x89PNG-fake"), nil
}

func (r *fakeRenderer) Engine() string { return "fake" }

func (r *fakeRenderer) Close() error { return nil }
