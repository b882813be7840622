package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"skillpath_backend/internal/config"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	calls atomic.Int32
}

func (r *stubRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	r.calls.Add(1)
	return []byte("\x89PNG stub"), nil
}

func (r *stubRenderer) Engine() string { return "stub" }

func (r *stubRenderer) Close() error { return nil }

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) (*App, *stubRenderer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode, PublicURL: "http://api.test"},
		JWT:    config.JWTConfig{Secret: "router-test-secret", ExpireTime: time.Hour},
		AI:     config.AIConfig{Model: "test-model", TimeoutSeconds: 1},
		Storage: config.StorageConfig{
			Type:      "local",
			LocalPath: t.TempDir(),
		},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
	}

	r := &stubRenderer{}
	a := &App{Config: cfg, DB: testutil.DB(t)}
	a.build(nil, r)
	t.Cleanup(func() { a.Close(context.Background()) })
	return a, r
}

func doJSON(t *testing.T, a *App, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func register(t *testing.T, a *App, email string) string {
	t.Helper()
	w, env := doJSON(t, a, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Ada Lovelace",
		"email":    email,
		"password": "secret123",
		"skills":   []string{"Go", "Go", "SQL"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestAuthFlow(t *testing.T) {
	a, _ := newTestApp(t)
	token := register(t, a, "ada@example.com")

	w, _ := doJSON(t, a, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Ada", "email": "ada@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = doJSON(t, a, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "ada@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := doJSON(t, a, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "ada@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, env = doJSON(t, a, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Email   string `json:"email"`
		Profile struct {
			Skills []string `json:"skills"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "ada@example.com", me.Email)
	assert.Equal(t, []string{"Go", "SQL"}, me.Profile.Skills)

	w, _ = doJSON(t, a, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	a, _ := newTestApp(t)

	w, env := doJSON(t, a, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Short", "email": "short@example.com", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}

func TestAnalyzeDomainFallsBackWithoutAI(t *testing.T) {
	a, _ := newTestApp(t)
	token := register(t, a, "frontend@example.com")

	w, env := doJSON(t, a, http.MethodPost, "/api/ai/analyze-domain", token, gin.H{"domain": "Frontend Development"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)

	var data struct {
		Analysis struct {
			Source string `json:"source"`
			Skills []struct {
				Name string `json:"name"`
			} `json:"skills"`
		} `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "fallback", data.Analysis.Source)
	require.NotEmpty(t, data.Analysis.Skills)
	assert.Equal(t, "HTML & CSS", data.Analysis.Skills[0].Name)

	w, _ = doJSON(t, a, http.MethodPost, "/api/ai/analyze-domain", token, gin.H{"domain": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateDailyTasksReturnsRequestedDays(t *testing.T) {
	a, _ := newTestApp(t)
	token := register(t, a, "plan@example.com")

	w, env := doJSON(t, a, http.MethodPost, "/api/ai/generate-daily-tasks", token, gin.H{
		"domain":   "Data Science",
		"skills":   []string{"Python", "Statistics"},
		"duration": 10,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		DailyTasks []struct {
			Day int `json:"day"`
		} `json:"dailyTasks"`
		Duration       int    `json:"duration"`
		LearningPathID string `json:"learningPathId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 10, data.Duration)
	require.Len(t, data.DailyTasks, 10)
	for i, task := range data.DailyTasks {
		assert.Equal(t, i+1, task.Day)
	}
	assert.NotEmpty(t, data.LearningPathID)

	w, _ = doJSON(t, a, http.MethodGet, "/api/learning-paths/"+data.LearningPathID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, a, http.MethodPost, "/api/ai/generate-daily-tasks", token, gin.H{
		"domain": "Data Science", "duration": 91,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCertificateLifecycle(t *testing.T) {
	a, r := newTestApp(t)
	token := register(t, a, "cert@example.com")

	body := gin.H{"domain": "Backend Development", "skills": []string{"Go", "SQL"}, "level": "intermediate"}
	w, env := doJSON(t, a, http.MethodPost, "/api/certificates/generate", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Certificate struct {
			CertificateID  string `json:"certificateId"`
			CompletionRate int    `json:"completionRate"`
		} `json:"certificate"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id := created.Certificate.CertificateID
	require.NotEmpty(t, id)

	w, _ = doJSON(t, a, http.MethodPost, "/api/certificates/generate", token, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	// 公开验证接口不需要登录
	w, env = doJSON(t, a, http.MethodGet, "/api/certificates/verify/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var verified struct {
		IsValid bool `json:"isValid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &verified))
	assert.True(t, verified.IsValid)

	req := httptest.NewRequest(http.MethodGet, "/api/certificates/"+id+"/image", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	img := httptest.NewRecorder()
	a.Router.ServeHTTP(img, req)
	require.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, "image/png", img.Header().Get("Content-Type"))
	assert.EqualValues(t, 1, r.calls.Load())

	w, _ = doJSON(t, a, http.MethodPost, "/api/certificates/"+id+"/revoke", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, env = doJSON(t, a, http.MethodGet, "/api/certificates/verify/"+id, "", nil)
	require.NoError(t, json.Unmarshal(env.Data, &verified))
	assert.False(t, verified.IsValid)

	// 吊销后可以重新颁发
	w, _ = doJSON(t, a, http.MethodPost, "/api/certificates/generate", token, body)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestBlankDomainIsRejected(t *testing.T) {
	a, _ := newTestApp(t)
	token := register(t, a, "blank@example.com")

	question := gin.H{"question": "2 + 2?", "options": []string{"3", "4"}, "correctAnswer": 1}
	cases := []struct {
		path string
		body gin.H
	}{
		{"/api/certificates/generate", gin.H{"domain": "   "}},
		{"/api/assessment/generate-assessment", gin.H{"domain": "   "}},
		{"/api/assessment/analyze-assessment", gin.H{
			"domain":    "  ",
			"questions": []gin.H{question},
			"answers":   []int{1},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			w, env := doJSON(t, a, http.MethodPost, tc.path, token, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.False(t, env.Success)
		})
	}

	w, env := doJSON(t, a, http.MethodGet, "/api/certificates", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Certificates []json.RawMessage `json:"certificates"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Empty(t, list.Certificates)
}

func TestCertificateOwnership(t *testing.T) {
	a, _ := newTestApp(t)
	owner := register(t, a, "owner@example.com")
	other := register(t, a, "other@example.com")

	_, env := doJSON(t, a, http.MethodPost, "/api/certificates/generate", owner, gin.H{"domain": "Cloud Computing"})
	var created struct {
		Certificate struct {
			CertificateID string `json:"certificateId"`
		} `json:"certificate"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, _ := doJSON(t, a, http.MethodGet, "/api/certificates/"+created.Certificate.CertificateID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, a, http.MethodGet, "/api/certificates/verify/CERT-UNKNOWN", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProgressUpsert(t *testing.T) {
	a, _ := newTestApp(t)
	token := register(t, a, "progress@example.com")

	for i := 0; i < 3; i++ {
		w, _ := doJSON(t, a, http.MethodPut, "/api/progress", token, gin.H{
			"learningPathId": "path-1",
			"taskId":         fmt.Sprintf("task-%d", i),
			"completed":      true,
			"timeSpent":      15,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w, env := doJSON(t, a, http.MethodGet, "/api/progress", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []struct {
		LearningPathID string `json:"learningPathId"`
		TimeSpent      int    `json:"timeSpent"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "path-1", list[0].LearningPathID)
	assert.Equal(t, 45, list[0].TimeSpent)

	w, _ = doJSON(t, a, http.MethodPut, "/api/progress", token, gin.H{"timeSpent": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, a, http.MethodPut, "/api/progress", token, gin.H{"learningPathId": "path-1", "timeSpent": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	a, _ := newTestApp(t)

	w, env := doJSON(t, a, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSwaggerDocIsServed(t *testing.T) {
	a, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Swagger string                     `json:"swagger"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "2.0", doc.Swagger)
	assert.Contains(t, doc.Paths, "/api/certificates/generate")
	assert.Contains(t, doc.Paths, "/api/certificates/verify/{id}")
}

func TestFeedbackIsPersistedAsynchronously(t *testing.T) {
	a, _ := newTestApp(t)
	token := register(t, a, "feedback@example.com")

	w, env := doJSON(t, a, http.MethodPost, "/api/ai/feedback", token, gin.H{
		"type":    "daily-plan",
		"message": "Day 3 was too long",
		"rating":  4,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		FeedbackID string `json:"feedbackId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.FeedbackID)

	a.services.feedback.Wait()
	var stored model.Feedback
	require.NoError(t, a.DB.First(&stored, "id = ?", data.FeedbackID).Error)
	assert.Equal(t, "daily-plan", stored.Type)
	assert.Equal(t, 4, stored.Rating)

	w, _ = doJSON(t, a, http.MethodPost, "/api/ai/feedback", token, gin.H{"message": "x", "rating": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
