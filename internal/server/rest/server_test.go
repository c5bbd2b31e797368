package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AndreyChufelin/kbpanel/internal/content"
	"github.com/AndreyChufelin/kbpanel/internal/logger"
	"github.com/AndreyChufelin/kbpanel/internal/markdown"
	"github.com/AndreyChufelin/kbpanel/internal/router"
	"github.com/AndreyChufelin/kbpanel/internal/toast"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) *echo.Echo {
	t.Helper()
	c := content.NewResolver("/static/")
	table, err := router.NewDefaultTable(c)
	require.NoError(t, err)

	s := NewServer("localhost", "0", logger.Discard(), table,
		markdown.New(markdown.Options{Classes: true}), toast.DefaultConfig(c), opts...)
	e, err := s.Handler()
	require.NoError(t, err)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthcheck(t *testing.T) {
	rec := do(newTestServer(t), http.MethodGet, "/v1/healthcheck", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "available", decode(t, rec)["status"])
}

func TestShellResolvesState(t *testing.T) {
	rec := do(newTestServer(t), http.MethodGet, "/panel/areas/3/subjects", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Match router.Match `json:"match"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, router.StateSubjects, body.Match.State)
	assert.Equal(t, router.Params{"areaId": "3"}, body.Match.Params)
	assert.Equal(t, "SubjectCtrl", body.Match.Views["content@panel"].Controller)
}

func TestShellDecodesParamsOnce(t *testing.T) {
	e := newTestServer(t)

	tests := []struct {
		target string
		postID string
	}{
		{"/panel/edit-contribution/50%25", "50%"},
		{"/panel/edit-contribution/a%2525b", "a%25b"},
		{"/panel/edit-contribution/a%20b", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(e, http.MethodGet, tt.target, "")
			require.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				Match router.Match `json:"match"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, router.StateEditContribution, body.Match.State)
			assert.Equal(t, router.Params{"postId": tt.postID}, body.Match.Params)
		})
	}
}

func TestShellRedirectsUnmatched(t *testing.T) {
	e := newTestServer(t)

	for _, target := range []string{"/", "/panel", "/panel/nothing", "/panel/areas/1"} {
		t.Run(target, func(t *testing.T) {
			rec := do(e, http.MethodGet, target, "")
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/panel/areas", rec.Header().Get(echo.HeaderLocation))
		})
	}
}

func TestShellLogin(t *testing.T) {
	rec := do(newTestServer(t), http.MethodGet, "/login", "")
	require.Equal(t, http.StatusOK, rec.Code)

	match := decode(t, rec)["match"].(map[string]any)
	assert.Equal(t, router.StateLogin, match["state"])
}

func TestResolveState(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodGet, "/v1/states/resolve?url=/panel/edit-contribution/5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	match := decode(t, rec)["match"].(map[string]any)
	assert.Equal(t, router.StateEditContribution, match["state"])
	assert.Equal(t, false, match["redirected"])

	rec = do(e, http.MethodGet, "/v1/states/resolve?url=/missing", "")
	require.Equal(t, http.StatusOK, rec.Code)
	match = decode(t, rec)["match"].(map[string]any)
	assert.Equal(t, router.StateAreas, match["state"])
	assert.Equal(t, true, match["redirected"])

	rec = do(e, http.MethodGet, "/v1/states/resolve", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListStates(t *testing.T) {
	rec := do(newTestServer(t), http.MethodGet, "/v1/states", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "/panel/areas", body["otherwise"])
	assert.Len(t, body["states"], 9)
}

func TestToastConfig(t *testing.T) {
	rec := do(newTestServer(t), http.MethodGet, "/v1/toast-config", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, float64(5000), body["timeOut"])
	assert.Equal(t, false, body["closeButton"])
}

func TestRenderToast(t *testing.T) {
	rec := do(newTestServer(t), http.MethodPost, "/v1/toasts/render",
		`{"level":"error","title":"Bad Request","message":"You don't have <access>"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t,
		`<div class="toast toast-error"><div class="toast-title">Bad Request</div>`+
			`<div class="toast-message">You don&#39;t have &lt;access&gt;</div></div>`,
		decode(t, rec)["html"])
}

func TestRenderToastValidation(t *testing.T) {
	rec := do(newTestServer(t), http.MethodPost, "/v1/toasts/render", `{"level":"fatal","message":"x"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var errs []ValidationError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errs))
	require.Len(t, errs, 1)
	assert.Equal(t, "Level", errs[0].Field)
}

func TestRenderMarkdown(t *testing.T) {
	rec := do(newTestServer(t), http.MethodPost, "/v1/markdown", `{"source":"# Title\n\n`+"```go\\nfunc main() {}\\n```"+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	html := decode(t, rec)["html"].(string)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, `class="chroma"`)
}

func TestRenderMarkdownValidation(t *testing.T) {
	rec := do(newTestServer(t), http.MethodPost, "/v1/markdown", `{"source":""}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var errs []ValidationError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errs))
	require.Len(t, errs, 1)
	assert.Equal(t, "Source", errs[0].Field)
	assert.Equal(t, "Source is a required field", errs[0].Message)
}

func TestRenderMarkdownBadJSON(t *testing.T) {
	rec := do(newTestServer(t), http.MethodPost, "/v1/markdown", `{"source":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStaticContent(t *testing.T) {
	e := newTestServer(t, WithStatic("/static/", "testdata/static"))

	rec := do(e, http.MethodGet, "/static/toast.html", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="toast"`)
}

func TestRateLimit(t *testing.T) {
	e := newTestServer(t, WithRateLimit(1))

	var limited bool
	for i := 0; i < 10; i++ {
		if do(e, http.MethodGet, "/v1/healthcheck", "").Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited)
}
