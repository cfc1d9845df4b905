package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Harsh-BH/pairexec/internal/domain"
	mockpub "github.com/Harsh-BH/pairexec/internal/publisher/mock"
	mockrepo "github.com/Harsh-BH/pairexec/internal/repository/mock"
	"github.com/Harsh-BH/pairexec/internal/suggest"
	"github.com/Harsh-BH/pairexec/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeLanguages []domain.LanguageInfo

func (f fakeLanguages) Languages() []domain.LanguageInfo { return f }

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type testEnv struct {
	router *gin.Engine
	repo   *mockrepo.MockJobRepository
	pub    *mockpub.MockPublisher
	exec   *mockrepo.Executor
}

func setupTestRouter(t *testing.T, queue bool, mutate ...func(*RouterDeps)) *testEnv {
	t.Helper()

	env := &testEnv{
		repo: mockrepo.NewMockJobRepository(),
		pub:  mockpub.NewMockPublisher(),
		exec: &mockrepo.Executor{},
	}
	logger := zap.NewNop()

	deps := RouterDeps{
		Execute: usecase.NewExecuteCodeUsecase(env.exec, logger),
		Suggest: usecase.NewSuggestUsecase(suggest.New()),
		Languages: fakeLanguages{
			{Name: domain.LangPython, Display: "Python", Toolchain: "python3", Available: true},
			{Name: domain.LangCpp, Display: "C++", Toolchain: "g++", Compiled: true},
		},
		Logger:       logger,
		Version:      "1.0.0",
		MaxBodyBytes: 1 << 20,
	}
	if queue {
		deps.Submit = usecase.NewSubmitJobUsecase(env.repo, env.pub, logger)
		deps.GetJob = usecase.NewGetJobUsecase(env.repo, &mockrepo.JobCache{}, logger)
		deps.Checks = map[string]HealthChecker{
			"postgres": env.repo,
			"rabbitmq": env.pub,
		}
	}
	for _, m := range mutate {
		m(&deps)
	}

	env.router = NewRouter(deps)
	return env
}

func postJSON(router http.Handler, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestExecuteHandler_Success(t *testing.T) {
	for _, path := range []string{"/execute", "/api/v1/execute"} {
		t.Run(path, func(t *testing.T) {
			env := setupTestRouter(t, false)

			w := postJSON(env.router, path, map[string]any{
				"code":     "print('Hello, World!')",
				"language": "python",
			})
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
			}

			var resp map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			for _, key := range []string{"success", "output", "error", "executionTime", "returnCode", "status"} {
				if _, ok := resp[key]; !ok {
					t.Errorf("response missing %q: %s", key, w.Body.String())
				}
			}
			if resp["output"] != "Hello, World!\n" || resp["success"] != true {
				t.Errorf("unexpected response %s", w.Body.String())
			}
			if _, ok := resp["MemoryUsedKB"]; ok {
				t.Error("memory usage must not be part of the response")
			}
		})
	}
}

func TestExecuteHandler_Defaults(t *testing.T) {
	env := setupTestRouter(t, false)

	w := postJSON(env.router, "/execute", map[string]any{"code": ""})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	calls := env.exec.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 execute call, got %d", len(calls))
	}
	if calls[0].Language != "python" || calls[0].Code != "" || calls[0].Stdin != "" {
		t.Errorf("unexpected request %+v", calls[0])
	}
}

func TestExecuteHandler_FailedResultIs200(t *testing.T) {
	env := setupTestRouter(t, false)
	env.exec.ExecuteFn = func(ctx context.Context, req *domain.ExecutionRequest) *domain.ExecutionResult {
		return &domain.ExecutionResult{
			Error:    "Unsupported language: ruby. Supported: python, javascript, go, cpp",
			ExitCode: -1,
			Status:   domain.StatusUnsupportedLanguage,
		}
	}

	w := postJSON(env.router, "/execute", map[string]any{"code": "puts 1", "language": "ruby"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var res domain.ExecutionResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if res.Success || res.ExitCode != -1 || !strings.HasPrefix(res.Error, "Unsupported language: ruby") {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestExecuteHandler_InvalidBody(t *testing.T) {
	env := setupTestRouter(t, false)

	tests := []struct {
		name string
		body string
	}{
		{"missing code", `{"language":"python"}`},
		{"malformed json", `{"code":`},
		{"wrong type", `{"code":42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(env.router, "/execute", tt.body)
			if w.Code != http.StatusUnprocessableEntity {
				t.Errorf("expected status 422, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
	if len(env.exec.Calls()) != 0 {
		t.Error("invalid bodies must not reach the engine")
	}
}

func TestExecuteHandler_BodyTooLarge(t *testing.T) {
	env := setupTestRouter(t, false, func(d *RouterDeps) { d.MaxBodyBytes = 64 })

	w := postJSON(env.router, "/execute", map[string]any{"code": strings.Repeat("x", 128)})
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected status 413, got %d", w.Code)
	}
}

func TestExecuteHandler_RateLimited(t *testing.T) {
	env := setupTestRouter(t, false, func(d *RouterDeps) { d.RateLimit = 2 })

	var last int
	for i := 0; i < 3; i++ {
		last = postJSON(env.router, "/execute", map[string]any{"code": "1"}).Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", last)
	}

	// Autocomplete is not rate limited.
	w := postJSON(env.router, "/autocomplete", map[string]any{"code": "pr", "language": "python", "cursorPosition": 2})
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestAutocompleteHandler(t *testing.T) {
	env := setupTestRouter(t, false)

	w := postJSON(env.router, "/api/v1/autocomplete", map[string]any{
		"code":           "def fo",
		"language":       "python",
		"cursorPosition": 6,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp domain.SuggestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	want := []domain.SuggestionItem{
		{Label: "for", Kind: domain.KindKeyword, InsertText: "for"},
		{Label: "fo", Kind: domain.KindFunction, InsertText: "fo()"},
	}
	if len(resp.Suggestions) != len(want) {
		t.Fatalf("expected %d suggestions, got %+v", len(want), resp.Suggestions)
	}
	for i := range want {
		if resp.Suggestions[i] != want[i] {
			t.Errorf("suggestion %d: got %+v, want %+v", i, resp.Suggestions[i], want[i])
		}
	}
}

func TestAutocompleteHandler_EmptyList(t *testing.T) {
	env := setupTestRouter(t, false)

	w := postJSON(env.router, "/autocomplete", map[string]any{
		"code":           "x",
		"language":       "cobol",
		"cursorPosition": 1,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != `{"suggestions":[]}` {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestAutocompleteHandler_MissingFields(t *testing.T) {
	env := setupTestRouter(t, false)

	for _, body := range []string{
		`{"language":"python","cursorPosition":0}`,
		`{"code":"x","cursorPosition":0}`,
		`{"code":"x","language":"python"}`,
	} {
		w := postJSON(env.router, "/autocomplete", body)
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: expected status 422, got %d", body, w.Code)
		}
	}
}

func TestRootHandler(t *testing.T) {
	env := setupTestRouter(t, false)

	w := get(env.router, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp struct {
		Message   string            `json:"message"`
		Version   string            `json:"version"`
		Endpoints map[string]string `json:"endpoints"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if resp.Version != "1.0.0" || resp.Endpoints["execute"] != "/execute" || resp.Endpoints["autocomplete"] != "/autocomplete" {
		t.Errorf("unexpected root response %+v", resp)
	}
	if _, ok := resp.Endpoints["submissions"]; ok {
		t.Error("submissions advertised without a queue")
	}
}

func TestHealthHandler(t *testing.T) {
	env := setupTestRouter(t, false)

	for _, path := range []string{"/health", "/api/v1/health"} {
		w := get(env.router, path)
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, w.Code)
		}
		if !strings.Contains(w.Body.String(), `"status":"healthy"`) {
			t.Errorf("%s: unexpected body %s", path, w.Body.String())
		}
	}
}

func TestHealthHandler_DependencyDown(t *testing.T) {
	env := setupTestRouter(t, true, func(d *RouterDeps) {
		d.Checks["redis"] = pingFunc(func(ctx context.Context) error {
			return errors.New("dial tcp: connection refused")
		})
	})

	w := get(env.router, "/api/v1/health")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}

	var resp struct {
		Status   string            `json:"status"`
		Services map[string]string `json:"services"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if resp.Status != "degraded" || resp.Services["redis"] != "unavailable" || resp.Services["postgres"] != "ok" {
		t.Errorf("unexpected health response %+v", resp)
	}
}

func TestLanguageHandler(t *testing.T) {
	env := setupTestRouter(t, false)

	w := get(env.router, "/api/v1/languages")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string][]domain.LanguageInfo
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	languages := resp["languages"]
	if len(languages) != 2 {
		t.Fatalf("expected 2 languages, got %d", len(languages))
	}
	if !languages[1].Compiled || languages[1].Available {
		t.Errorf("unexpected cpp entry %+v", languages[1])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestRouter(t, false)

	w := get(env.router, "/metrics")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestSubmissionRoutes_DisabledWithoutQueue(t *testing.T) {
	env := setupTestRouter(t, false)

	w := postJSON(env.router, "/api/v1/submissions", map[string]any{"language": "python", "source_code": "1"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestSubmitHandler_Success(t *testing.T) {
	env := setupTestRouter(t, true)

	w := postJSON(env.router, "/api/v1/submissions", map[string]any{
		"language":    "python",
		"source_code": "print('hello')",
		"stdin":       "test",
	})
	if w.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d: %s", w.Code, w.Body.String())
	}

	var resp domain.SubmitResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.JobID == uuid.Nil {
		t.Error("expected non-empty job ID")
	}
	if loc := w.Header().Get("Location"); loc != "/api/v1/submissions/"+resp.JobID.String() {
		t.Errorf("unexpected Location header %q", loc)
	}
	if len(env.pub.Published) != 1 {
		t.Errorf("expected 1 published job, got %d", len(env.pub.Published))
	}
}

func TestSubmitHandler_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		publish error
		want    int
	}{
		{"invalid language", map[string]any{"language": "ruby", "source_code": "puts 'hello'"}, nil, http.StatusBadRequest},
		{"empty body", "{}", nil, http.StatusBadRequest},
		{"missing source code", map[string]any{"language": "python"}, nil, http.StatusBadRequest},
		{"blank source code", map[string]any{"language": "python", "source_code": "  "}, nil, http.StatusBadRequest},
		{"publish failure", map[string]any{"language": "python", "source_code": "1"}, errors.New("channel closed"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter(t, true)
			if tt.publish != nil {
				env.pub.PublishFn = func(ctx context.Context, job *domain.Job) error { return tt.publish }
			}

			w := postJSON(env.router, "/api/v1/submissions", tt.body)
			if w.Code != tt.want {
				t.Errorf("expected status %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestSubmitHandler_CppLanguage(t *testing.T) {
	env := setupTestRouter(t, true)

	w := postJSON(env.router, "/api/v1/submissions", map[string]any{
		"language":    "c++",
		"source_code": "#include <iostream>\nint main() { std::cout << \"hello\"; }",
	})
	if w.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d: %s", w.Code, w.Body.String())
	}

	jobs := env.repo.GetAll()
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].Language != domain.LangCpp {
		t.Errorf("expected language cpp, got %s", jobs[0].Language)
	}
}

func TestGetByIDHandler_Success(t *testing.T) {
	env := setupTestRouter(t, true)

	submitW := postJSON(env.router, "/api/v1/submissions", map[string]any{
		"language":    "python",
		"source_code": "print('hello')",
	})
	var submitResp domain.SubmitResponse
	if err := json.Unmarshal(submitW.Body.Bytes(), &submitResp); err != nil {
		t.Fatalf("failed to unmarshal submit response: %v", err)
	}

	getW := get(env.router, "/api/v1/submissions/"+submitResp.JobID.String())
	if getW.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d: %s", getW.Code, getW.Body.String())
	}

	var job domain.Job
	if err := json.Unmarshal(getW.Body.Bytes(), &job); err != nil {
		t.Fatalf("failed to unmarshal job: %v", err)
	}
	if job.JobID != submitResp.JobID {
		t.Errorf("expected job ID %s, got %s", submitResp.JobID, job.JobID)
	}
	if job.Status != domain.StatusQueued {
		t.Errorf("expected status QUEUED, got %s", job.Status)
	}
}

func TestGetByIDHandler_NotFoundAndInvalid(t *testing.T) {
	env := setupTestRouter(t, true)

	if w := get(env.router, "/api/v1/submissions/00000000-0000-0000-0000-000000000001"); w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d: %s", w.Code, w.Body.String())
	}
	if w := get(env.router, "/api/v1/submissions/not-a-uuid"); w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestWebSocketStream_TerminalJob(t *testing.T) {
	env := setupTestRouter(t, true)

	job := &domain.Job{JobID: uuid.New(), Language: domain.LangGo, Status: domain.StatusQueued}
	_ = env.repo.Create(context.Background(), job)
	_ = env.repo.SetResult(context.Background(), job.JobID, &domain.ExecutionResult{
		Success: true, Output: "hi\n", Status: domain.StatusSuccess,
	})

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/submissions/" + job.JobID.String() + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var got domain.Job
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Status != domain.StatusSuccess || got.Result == nil || got.Result.Output != "hi\n" {
		t.Errorf("unexpected job %+v", got)
	}

	// The server closes the stream once the job is terminal.
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("expected normal closure, got %v", err)
	}
}

func TestWebSocketStream_RejectsForeignOrigin(t *testing.T) {
	env := setupTestRouter(t, true, func(d *RouterDeps) {
		d.AllowedOrigins = []string{"http://localhost:3000"}
	})
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/submissions/" + uuid.NewString() + "/stream"
	header := http.Header{"Origin": []string{"http://evil.test"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("expected the upgrade to be rejected")
	}
	if resp != nil && resp.StatusCode == http.StatusSwitchingProtocols {
		t.Errorf("unexpected upgrade")
	}
}
