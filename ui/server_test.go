package ui

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gotasks/adapters/datareadiness"
	"gotasks/adapters/datareadiness/coercer"
	"gotasks/adapters/excel"
	"gotasks/adapters/memory"
	"gotasks/app"
	"gotasks/domain/task"
	"gotasks/internal/dates"
	"gotasks/internal/importer"
	"gotasks/internal/matching"
	"gotasks/internal/metrics"
	"gotasks/ui/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	server *Server
	repo   *memory.TaskRepository
}

func newTestEnv(t *testing.T, singleUser bool) *testEnv {
	t.Helper()
	repo := memory.NewTaskRepository()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	imports := app.NewImportService(
		matching.NewColumnMatcher(matching.DefaultSynonymTable(), matching.NewFuzzyMatcher(matching.DefaultMinSimilarity)),
		datareadiness.NewColumnProfiler(coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()), datareadiness.DefaultSampleRows),
		importer.NewPipeline(dates.NewParser(), task.NewValidator()),
		excel.NewReader(nil),
		repo,
		m,
		nil,
	)

	server := NewServer(Options{
		Imports:        imports,
		Tasks:          app.NewTaskService(repo, task.NewValidator(), nil),
		Metrics:        m,
		Gatherer:       reg,
		SingleUserMode: singleUser,
		MaxUploadMB:    1,
	})
	return &testEnv{server: server, repo: repo}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)

	var decoded map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, true)
	w, body := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, true)
	env.do(t, http.MethodGet, "/api/v1/tasks", nil)

	w, _ := env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `gotasks_http_requests_total{method="GET",route="/api/v1/tasks",status="200"} 1`)
}

func TestRequireUser(t *testing.T) {
	env := newTestEnv(t, false)

	w, _ := env.do(t, http.MethodGet, "/api/v1/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.Header.Set(middleware.UserHeader, "not-a-uuid")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.Header.Set(middleware.UserHeader, "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	rec = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyzeJSON(t *testing.T) {
	env := newTestEnv(t, true)

	w, body := env.do(t, http.MethodPost, "/api/v1/imports/analyze", gin.H{
		"headers":    []string{"Task", "Due", "Priorty"},
		"sampleRows": [][]interface{}{{"Buy milk", "2024-05-01", "high"}, {"Call mum", nil, "low"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	matches := data["columnMatches"].([]interface{})
	require.Len(t, matches, 3)
	assert.Equal(t, "title", matches[0].(map[string]interface{})["targetField"])
	assert.Equal(t, "priority", matches[2].(map[string]interface{})["targetField"])
	assert.Len(t, data["sampleRows"], 2)
}

func TestAnalyzeWithoutHeaders(t *testing.T) {
	env := newTestEnv(t, true)
	w, body := env.do(t, http.MethodPost, "/api/v1/imports/analyze", gin.H{"headers": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", body["code"])
}

func TestImportJSON(t *testing.T) {
	env := newTestEnv(t, true)

	w, body := env.do(t, http.MethodPost, "/api/v1/imports", gin.H{
		"headers":  []string{"Task", "Due", "Pri", "Area"},
		"rows":     [][]interface{}{{"Buy milk", "2024-05-01", "high", "Home"}, {"Write report", nil, "low", "Work"}},
		"mappings": gin.H{"Task": "title", "Due": "dueDate", "Pri": "priority"},
		"filterColumn": "Area",
		"filterValue":  "home",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1.0, body["imported"])
	assert.Equal(t, 1.0, body["skipped"])
	assert.Equal(t, 0.0, body["validationFailed"])
	assert.Equal(t, 1, env.repo.Len())

	w, body = env.do(t, http.MethodGet, "/api/v1/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, body["count"])
}

func TestImportNothingImportedIs422(t *testing.T) {
	env := newTestEnv(t, true)

	w, body := env.do(t, http.MethodPost, "/api/v1/imports", gin.H{
		"headers":  []string{"Task"},
		"rows":     [][]interface{}{{nil}, {"  "}},
		"mappings": gin.H{"Task": "title"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, 2.0, body["validationFailed"])
	assert.Len(t, body["rowErrors"], 2)
}

func TestImportMalformedPayload(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", strings.NewReader(`{"rows": [[{"nested": true}]]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func multipartRequest(t *testing.T, path, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImportMultipartCSV(t *testing.T) {
	env := newTestEnv(t, true)

	req := multipartRequest(t, "/api/v1/imports", "tasks.csv",
		"Task,Tags\nBuy milk,errand\nCall mum,family\n",
		map[string]string{"mappings": `{"Task":"title","Tags":"tags"}`})
	w := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, env.repo.Len())
}

func TestAnalyzeMultipartCSV(t *testing.T) {
	env := newTestEnv(t, true)

	req := multipartRequest(t, "/api/v1/imports/analyze", "tasks.csv", "Task,Deadline\nBuy milk,2024-05-01\n", nil)
	w := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Data app.Analysis `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"Task", "Deadline"}, body.Data.Headers)
}

func TestImportMultipartBadMappings(t *testing.T) {
	env := newTestEnv(t, true)

	req := multipartRequest(t, "/api/v1/imports", "tasks.csv", "Task\nBuy milk\n", map[string]string{"mappings": "not json"})
	w := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportMultipartNonStringMapping(t *testing.T) {
	env := newTestEnv(t, true)

	req := multipartRequest(t, "/api/v1/imports", "tasks.csv", "Task\nBuy milk\n", map[string]string{"mappings": `{"Task": 1}`})
	w := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "column Task must be a string")
}

func TestImportMultipartTooLarge(t *testing.T) {
	env := newTestEnv(t, true)

	big := "Task\n" + strings.Repeat("x", 3<<20) + "\n"
	req := multipartRequest(t, "/api/v1/imports", "tasks.csv", big, nil)
	w := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestImportFields(t *testing.T) {
	env := newTestEnv(t, true)
	w, body := env.do(t, http.MethodGet, "/api/v1/imports/fields", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 15)
}

func TestTaskLifecycle(t *testing.T) {
	env := newTestEnv(t, true)

	w, body := env.do(t, http.MethodPost, "/api/v1/tasks", gin.H{
		"title":       "Plan trip",
		"description": "Book **flights**",
		"priority":    "HIGH",
		"tags":        []string{"travel"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := body["data"].(map[string]interface{})["id"].(string)

	w, body = env.do(t, http.MethodGet, "/api/v1/tasks/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Plan trip", data["title"])
	assert.Contains(t, data["descriptionHtml"], "<strong>flights</strong>")

	w, _ = env.do(t, http.MethodGet, "/api/v1/tasks?status=done", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/v1/tasks?status=someday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = env.do(t, http.MethodDelete, "/api/v1/tasks", gin.H{"ids": []string{id}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, body["deleted"])

	w, _ = env.do(t, http.MethodGet, "/api/v1/tasks/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTaskValidation(t *testing.T) {
	env := newTestEnv(t, true)
	w, body := env.do(t, http.MethodPost, "/api/v1/tasks", gin.H{"title": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestGetTaskBadID(t *testing.T) {
	env := newTestEnv(t, true)
	w, _ := env.do(t, http.MethodGet, "/api/v1/tasks/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteRequiresSelector(t *testing.T) {
	env := newTestEnv(t, true)
	w, _ := env.do(t, http.MethodDelete, "/api/v1/tasks", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRenderMarkdownDropsRawHTML(t *testing.T) {
	out := renderMarkdown("hello <script>alert(1)</script>")
	assert.NotContains(t, out, "<script>")
	assert.Empty(t, renderMarkdown(""))
}

func TestRenderMarkdownLinks(t *testing.T) {
	out := renderMarkdown("[click](javascript:alert(document.cookie))")
	assert.NotContains(t, out, `href="javascript:`)

	out = renderMarkdown("[docs](https://example.com/guide)")
	assert.Contains(t, out, `href="https://example.com/guide"`)
	assert.Contains(t, out, "nofollow")
}
