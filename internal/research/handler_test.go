package research

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"researchagent/internal/models"
	"researchagent/internal/store"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeArchive is an in-memory Archive for handler tests. The runner inserts
// from its own goroutine, so access is locked.
type fakeArchive struct {
	mu   sync.Mutex
	docs []models.Document
}

func (a *fakeArchive) Insert(_ context.Context, doc *models.Document) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d := *doc
	d.CreatedAt = time.Now()
	a.docs = append(a.docs, d)
	return doc.JobID, nil
}

func (a *fakeArchive) List(_ context.Context) ([]models.Document, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.Document(nil), a.docs...), nil
}

func (a *fakeArchive) GetByJobID(_ context.Context, jobID string) (*models.Document, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.docs {
		if a.docs[i].JobID == jobID {
			d := a.docs[i]
			return &d, nil
		}
	}
	return nil, store.ErrNotFound
}

func (a *fakeArchive) all() []models.Document {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.Document(nil), a.docs...)
}

// newTestRouter wires the handler with in-memory stores and a demo-data
// agent, the same composition the server uses with nothing configured.
func newTestRouter(t *testing.T) (chi.Router, *store.MemoryJobStore) {
	return newArchiveRouter(t, nil)
}

// newArchiveRouter is newTestRouter with an archive backend attached.
func newArchiveRouter(t *testing.T, archive Archive) (chi.Router, *store.MemoryJobStore) {
	t.Helper()
	log := testLogger()
	jobs := store.NewMemoryJobStore()
	files, err := store.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	agent := NewAgent(nil, 3, log)
	runner := NewRunner(jobs, files, archive, agent, log)
	h := NewHandler(jobs, files, archive, runner, log)

	r := chi.NewRouter()
	h.Routes(r)
	return r, jobs
}

func postResearch(t *testing.T, r chi.Router, topic string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"topic": topic})
	req := httptest.NewRequest("POST", "/research", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []struct {
		name    string
		topic   string
		wantErr string
	}{
		{"empty", "", "Topic is required"},
		{"whitespace", "   ", "Topic is required"},
		{"too long", strings.Repeat("a", 201), "Topic too long (max 200 characters)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postResearch(t, r, tc.topic)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var body map[string]string
			json.Unmarshal(w.Body.Bytes(), &body)
			if body["error"] != tc.wantErr {
				t.Errorf("error = %q, want %q", body["error"], tc.wantErr)
			}
		})
	}
}

func TestCreateBadJSON(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest("POST", "/research", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestResearchLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postResearch(t, r, "quantum computing")
	if w.Code != http.StatusOK {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	var created models.CreateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ResultID == "" || created.Status != models.StatusInitializing {
		t.Fatalf("create response = %+v", created)
	}

	// Poll until the background pipeline reaches a terminal status.
	var job models.Job
	deadline := time.Now().Add(5 * time.Second)
	for {
		req := httptest.NewRequest("GET", "/research/"+created.ResultID, nil)
		pw := httptest.NewRecorder()
		r.ServeHTTP(pw, req)
		if pw.Code != http.StatusOK {
			t.Fatalf("status poll = %d: %s", pw.Code, pw.Body.String())
		}
		if err := json.Unmarshal(pw.Body.Bytes(), &job); err != nil {
			t.Fatalf("decode job: %v", err)
		}
		if job.Status.Terminal() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never finished, last status %s", job.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if job.Status != models.StatusCompleted {
		t.Fatalf("job = %+v, want completed", job)
	}
	if !strings.Contains(job.HTMLContent, "Research Presentation: quantum computing") {
		t.Errorf("html content missing presentation heading: %q", job.HTMLContent)
	}
	if !strings.Contains(job.HTMLContent, "<h2>") {
		t.Errorf("html content not rendered from markdown: %q", job.HTMLContent)
	}
	if job.Filename == "" {
		t.Error("completed job has no filename")
	}

	// The stored presentation is downloadable with a safe attachment name.
	req := httptest.NewRequest("GET", "/download/"+created.ResultID, nil)
	dw := httptest.NewRecorder()
	r.ServeHTTP(dw, req)
	if dw.Code != http.StatusOK {
		t.Fatalf("download = %d: %s", dw.Code, dw.Body.String())
	}
	if cd := dw.Header().Get("Content-Disposition"); !strings.Contains(cd, "research_quantum computing.md") {
		t.Errorf("content disposition = %q", cd)
	}
	if !strings.Contains(dw.Body.String(), "# Research Presentation: quantum computing") {
		t.Errorf("download body = %q", dw.Body.String())
	}
}

func TestStatusUnknownJob(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/research/does-not-exist", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] != "Research not found" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestStatusInvalidID(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, id := range []string{"bad%21id", strings.Repeat("a", 51)} {
		req := httptest.NewRequest("GET", "/research/"+id, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("id %q: status = %d, want 400", id, w.Code)
		}
	}
}

func TestDownloadBeforeCompletion(t *testing.T) {
	r, jobs := newTestRouter(t)

	job := &models.Job{ID: "pending1", Status: models.StatusSearching, Topic: "t"}
	if err := jobs.Save(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	req := httptest.NewRequest("GET", "/download/pending1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] != "Research not completed" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestStatusServedFromArchive(t *testing.T) {
	arc := &fakeArchive{}
	arc.Insert(context.Background(), &models.Document{
		JobID:    "expired1",
		Topic:    "solar panels",
		Markdown: "# Research Presentation: solar panels",
		HTML:     "<h1>Research Presentation: solar panels</h1>",
	})
	r, _ := newArchiveRouter(t, arc)

	// The job store has no entry, as after its TTL has elapsed.
	req := httptest.NewRequest("GET", "/research/expired1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var job models.Job
	if err := json.Unmarshal(w.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.Status != models.StatusCompleted {
		t.Errorf("status = %s, want completed", job.Status)
	}
	if job.Topic != "solar panels" {
		t.Errorf("topic = %q", job.Topic)
	}
	if !strings.Contains(job.HTMLContent, "solar panels") {
		t.Errorf("html content = %q", job.HTMLContent)
	}
}

func TestDownloadServedFromArchive(t *testing.T) {
	arc := &fakeArchive{}
	arc.Insert(context.Background(), &models.Document{
		JobID:    "expired2",
		Topic:    "solar panels",
		Markdown: "# Research Presentation: solar panels",
		HTML:     "<h1>Research Presentation: solar panels</h1>",
	})
	r, _ := newArchiveRouter(t, arc)

	req := httptest.NewRequest("GET", "/download/expired2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("download = %d: %s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "research_solar panels.md") {
		t.Errorf("content disposition = %q", cd)
	}
	if w.Body.String() != "# Research Presentation: solar panels" {
		t.Errorf("download body = %q", w.Body.String())
	}
}

func TestCompletedJobIsArchived(t *testing.T) {
	arc := &fakeArchive{}
	r, _ := newArchiveRouter(t, arc)

	w := postResearch(t, r, "wind turbines")
	if w.Code != http.StatusOK {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	var created models.CreateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for len(arc.all()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("report never archived")
		}
		time.Sleep(10 * time.Millisecond)
	}

	doc := arc.all()[0]
	if doc.JobID != created.ResultID {
		t.Errorf("archived job id = %q, want %q", doc.JobID, created.ResultID)
	}
	if doc.Topic != "wind turbines" {
		t.Errorf("archived topic = %q", doc.Topic)
	}
	if !strings.Contains(doc.Markdown, "# Research Presentation: wind turbines") {
		t.Errorf("archived markdown = %q", doc.Markdown)
	}
}

func TestListWithoutArchive(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/research", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %q, want empty list", got)
	}
}

func TestSafeFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"quantum computing", "quantum computing"},
		{"C++ & Rust: a / comparison?", "C  Rust a  comparison"},
		{"trailing punctuation!!!", "trailing punctuation"},
		{"under_score-dash", "under_score-dash"},
		{"café research", "café research"},
	}
	for _, tc := range cases {
		if got := safeFilename(tc.in); got != tc.want {
			t.Errorf("safeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
