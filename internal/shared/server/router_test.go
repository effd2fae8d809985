package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magungh1/exporo-sme-export-assistant/internal/assessments"
	"github.com/magungh1/exporo-sme-export-assistant/internal/chat"
	"github.com/magungh1/exporo-sme-export-assistant/internal/llm"
	"github.com/magungh1/exporo-sme-export-assistant/internal/profiles"
	"github.com/magungh1/exporo-sme-export-assistant/internal/services/health"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/config"
)

func newTestRouter(t *testing.T, healthSvc *health.Service) http.Handler {
	t.Helper()
	profileSvc := profiles.NewService(profiles.NewMemoryRepo())
	historySvc := assessments.NewService(assessments.NewMemoryRepo())
	pipeline := chat.NewPipeline(chat.Deps{
		Profiles: profileSvc,
		History:  historySvc,
		Engine:   llm.Placeholder{},
	})
	return NewRouter(RouterDeps{
		Config: config.Config{
			CORSAllowOrigins: "http://localhost:5173",
			RateLimit:        config.RateLimitConfig{ChatPerMinute: 60, ChatBurst: 2},
		},
		Health:         healthSvc,
		ProfileHandler: profiles.NewHandler(profileSvc, nil),
		HistoryHandler: assessments.NewHandler(historySvc),
		ChatHandler:    chat.NewHandler(pipeline),
	})
}

func serve(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReady(t *testing.T) {
	h := health.NewService()
	r := newTestRouter(t, h)

	rec := serve(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = serve(r, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	h.Register("database", func(ctx context.Context) error { return errors.New("down") })
	rec = serve(r, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"ready":false,"checks":{"database":"down"}}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestRouter(t, nil), http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCatalogIsPublic(t *testing.T) {
	rec := serve(newTestRouter(t, nil), http.MethodGet, "/api/v1/countries", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"United States"`)
}

func TestMeRequiresIdentity(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := serve(r, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(r, http.MethodGet, "/api/v1/me", "", map[string]string{"X-Guest-Id": "abc"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userId":"guest:abc","isGuest":true}`, rec.Body.String())
}

func TestChatIsRateLimited(t *testing.T) {
	r := newTestRouter(t, nil)
	headers := map[string]string{"X-User-Id": "u1", "Content-Type": "application/json"}

	for i := 0; i < 2; i++ {
		rec := serve(r, http.MethodPost, "/api/v1/chat/messages", `{"message":"halo"}`, headers)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec := serve(r, http.MethodPost, "/api/v1/chat/messages", `{"message":"halo"}`, headers)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Reads are not throttled.
	rec = serve(r, http.MethodGet, "/api/v1/chat/session", "", headers)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAddr(t *testing.T) {
	assert.Equal(t, ":8080", Addr(""))
	assert.Equal(t, ":9000", Addr("9000"))
	assert.Equal(t, ":9000", Addr(":9000"))
}
