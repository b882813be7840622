package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"skillpath_backend/internal/config"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func testConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			c.String(http.StatusOK, "guest")
			return
		}
		c.String(http.StatusOK, claims.Email)
	})
	r.GET("/", handlers...)
	return r
}

func token(t *testing.T, secret string, ttl time.Duration) string {
	t.Helper()
	u := &model.User{Email: "ada@example.com"}
	u.ID = 7
	tok, err := util.GenerateJWT(u, secret, ttl)
	require.NoError(t, err)
	return tok
}

func do(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(testConfig()))

	tests := []struct {
		name   string
		auth   string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + token(t, "other", time.Hour), http.StatusUnauthorized},
		{"expired", "Bearer " + token(t, testSecret, -time.Hour), http.StatusUnauthorized},
		{"valid", "Bearer " + token(t, testSecret, time.Hour), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.auth)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "ada@example.com", w.Body.String())
			}
		})
	}
}

func TestTryAuthMiddleware(t *testing.T) {
	r := newRouter(TryAuthMiddleware(testConfig()))

	assert.Equal(t, "guest", do(r, "").Body.String())
	assert.Equal(t, "guest", do(r, "Bearer broken").Body.String())
	assert.Equal(t, "ada@example.com", do(r, "Bearer "+token(t, testSecret, time.Hour)).Body.String())
}

type activityRecorder struct {
	wg  sync.WaitGroup
	ids []uint
	mu  sync.Mutex
}

func (a *activityRecorder) UpdateLastActive(userID uint) error {
	a.mu.Lock()
	a.ids = append(a.ids, userID)
	a.mu.Unlock()
	a.wg.Done()
	return nil
}

func TestActivityMiddleware(t *testing.T) {
	rec := &activityRecorder{}
	rec.wg.Add(1)
	r := newRouter(AuthMiddleware(testConfig()), ActivityMiddleware(rec))

	w := do(r, "Bearer "+token(t, testSecret, time.Hour))
	require.Equal(t, http.StatusOK, w.Code)

	rec.wg.Wait()
	assert.Equal(t, []uint{7}, rec.ids)
}
