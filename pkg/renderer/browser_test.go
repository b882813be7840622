package renderer

import (
	"context"
	"errors"
	"testing"

	"skillpath_backend/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestBrowserDead(t *testing.T) {
	errPing := errors.New("websocket closed")
	tests := []struct {
		name    string
		ctxErr  error
		pingErr error
		want    bool
		pinged  bool
	}{
		{"own timeout keeps browser", context.DeadlineExceeded, errPing, false, false},
		{"own cancel keeps browser", context.Canceled, nil, false, false},
		{"healthy browser kept", nil, nil, false, true},
		{"dead connection reset", nil, errPing, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pinged := false
			got := browserDead(tt.ctxErr, func() error {
				pinged = true
				return tt.pingErr
			})
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.pinged, pinged)
		})
	}
}

func TestBrowserRendererCloseWithoutLaunch(t *testing.T) {
	r := NewBrowserRenderer(config.RendererConfig{})
	assert.NoError(t, r.Close())
	assert.Equal(t, EngineBrowser, r.Engine())
}
