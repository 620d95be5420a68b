package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/villemin/feuille/internal/docstore"
	"github.com/villemin/feuille/internal/extract"
	"github.com/villemin/feuille/internal/models"
	"github.com/villemin/feuille/internal/testutil"
)

type stubAnalyzer struct{}

func (stubAnalyzer) AnalyzeImage(ctx context.Context, image []byte, mimeType string, opts extract.AnalysisOptions) (extract.Draft, error) {
	return extract.Draft{Title: "Extracted", Difficulty: 1, Content: "<p>" + string(image) + "</p>"}, nil
}

func (stubAnalyzer) VerifyKey(ctx context.Context, apiKey string) bool {
	return apiKey == "valid-key"
}

type testEnv struct {
	store    *docstore.Store
	settings *docstore.SettingsStore
	queue    *extract.Queue
	server   *httptest.Server
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	_, fs := testutil.TestFS(t)
	store := docstore.New(fs, testutil.Logger())
	store.Load()
	settings := docstore.NewSettingsStore(fs, testutil.Logger())
	settings.Load()
	db := testutil.TestDB(t)
	queue := extract.NewQueue(stubAnalyzer{}, testutil.Logger())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go queue.Run(ctx)

	r := NewRouter(Deps{
		Store:    store,
		Settings: settings,
		Searcher: db,
		Queue:    queue,
		Analyzer: stubAnalyzer{},
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{store: store, settings: settings, queue: queue, server: srv}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestDocumentLifecycle(t *testing.T) {
	env := newEnv(t)

	// Create.
	resp := env.do(t, "POST", "/documents", map[string]string{"title": "Algebra Test", "className": "3A"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	doc := decode[models.Document](t, resp)
	if doc.ID == "" || doc.Title != "Algebra Test" {
		t.Fatalf("created = %+v", doc)
	}

	// List shows it.
	resp = env.do(t, "GET", "/documents", nil)
	list := decode[struct {
		Documents []models.Document `json:"documents"`
		Total     int               `json:"total"`
	}](t, resp)
	if list.Total != 1 || list.Documents[0].ID != doc.ID {
		t.Fatalf("list = %+v", list)
	}

	// Patch.
	resp = env.do(t, "PATCH", "/documents/"+doc.ID, map[string]string{"title": "Renamed"})
	if got := decode[models.Document](t, resp); got.Title != "Renamed" || got.ClassName != "3A" {
		t.Fatalf("patched = %+v", got)
	}

	// Delete, twice: both must be 204.
	for i := 0; i < 2; i++ {
		resp = env.do(t, "DELETE", "/documents/"+doc.ID, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("delete #%d status = %d", i+1, resp.StatusCode)
		}
	}
}

func TestDocumentNotFound(t *testing.T) {
	env := newEnv(t)
	for _, c := range []struct{ method, path string }{
		{"GET", "/documents/doc_missing"},
		{"PATCH", "/documents/doc_missing"},
		{"POST", "/documents/doc_missing/duplicate"},
		{"POST", "/documents/doc_missing/exercises"},
		{"GET", "/documents/doc_missing/data"},
		{"POST", "/documents/doc_missing/export"},
	} {
		var body any
		if c.method == "PATCH" {
			body = map[string]string{"title": "x"}
		}
		if c.method == "POST" && strings.HasSuffix(c.path, "exercises") {
			body = map[string]string{"title": "x", "content": "<p>x</p>"}
		}
		resp := env.do(t, c.method, c.path, body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s %s status = %d, want 404", c.method, c.path, resp.StatusCode)
		}
	}
}

func TestCreateDocumentValidation(t *testing.T) {
	env := newEnv(t)
	resp := env.do(t, "POST", "/documents", map[string]string{"title": ""})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty title status = %d, want 400", resp.StatusCode)
	}
}

func TestExerciseRoutes(t *testing.T) {
	env := newEnv(t)
	doc := env.store.AddDocument(models.NewDocumentInput{Title: "T"})

	// Add.
	resp := env.do(t, "POST", "/documents/"+doc.ID+"/exercises",
		map[string]any{"title": "A", "content": "<p>a</p>", "difficulty": 2})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d", resp.StatusCode)
	}
	ex := decode[models.Exercise](t, resp)

	env.do(t, "POST", "/documents/"+doc.ID+"/exercises",
		map[string]any{"title": "B", "content": "<p>b</p>"}).Body.Close()

	// Patch.
	resp = env.do(t, "PATCH", "/documents/"+doc.ID+"/exercises/"+ex.ID,
		map[string]any{"difficulty": 5})
	if got := decode[models.Exercise](t, resp); got.Difficulty != 5 || got.Title != "A" {
		t.Fatalf("patched = %+v", got)
	}

	// Reorder; the updated document comes back.
	resp = env.do(t, "POST", "/documents/"+doc.ID+"/exercises/reorder",
		map[string]int{"from": 0, "to": 1})
	got := decode[models.Document](t, resp)
	if got.Exercises[0].Title != "B" || got.Exercises[1].Title != "A" {
		t.Fatalf("reordered = %+v", got.Exercises)
	}

	// Delete is idempotent.
	for i := 0; i < 2; i++ {
		resp = env.do(t, "DELETE", "/documents/"+doc.ID+"/exercises/"+ex.ID, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("delete #%d status = %d", i+1, resp.StatusCode)
		}
	}
}

func TestDataExportImportRoundTrip(t *testing.T) {
	env := newEnv(t)
	doc := env.store.AddDocument(models.NewDocumentInput{Title: "Shared Sheet"})
	env.store.AddExercise(doc.ID, models.NewExerciseInput{Title: "A", Content: "<p>a</p>"})

	resp := env.do(t, "GET", "/documents/"+doc.ID+"/data", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("data status = %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "Shared-Sheet.json") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	exported := decode[models.Document](t, resp)

	// Re-importing the export merges into the same document.
	resp = env.do(t, "POST", "/documents/import", exported)
	sum := decode[docstore.ImportSummary](t, resp)
	if sum.Merged != 1 || sum.Imported != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	got, _ := env.store.GetDocument(doc.ID)
	if len(got.Exercises) != 1 {
		t.Errorf("re-import duplicated exercises: %d", len(got.Exercises))
	}

	// An array body works too.
	resp = env.do(t, "POST", "/documents/import", []models.Document{exported})
	sum = decode[docstore.ImportSummary](t, resp)
	if sum.Merged != 1 {
		t.Fatalf("array import summary = %+v", sum)
	}
}

func TestExportHTML(t *testing.T) {
	env := newEnv(t)
	doc := env.store.AddDocument(models.NewDocumentInput{Title: "Sheet"})
	env.store.AddExercise(doc.ID, models.NewExerciseInput{Title: "A", Content: `<p>\(x\)</p>`})

	resp := env.do(t, "POST", "/documents/"+doc.ID+"/export", map[string]any{"columns": 2, "fontSize": 11, "theme": "default", "showDifficulty": true, "showKeywords": true, "showTitles": true})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	page := buf.String()
	if !strings.Contains(page, "Exercise 1") || !strings.Contains(page, "column-count: 2") {
		t.Error("rendered page missing expected markup")
	}
	if strings.Contains(page, "print-mode") {
		t.Error("plain export must not carry the print trigger")
	}

	// Print mode wraps the page.
	resp = env.do(t, "POST", "/documents/"+doc.ID+"/export?mode=print", nil)
	defer resp.Body.Close()
	buf.Reset()
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "print-mode") {
		t.Error("print mode missing")
	}

	// Invalid options are rejected.
	resp = env.do(t, "POST", "/documents/"+doc.ID+"/export", map[string]any{"columns": 7})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid options status = %d", resp.StatusCode)
	}
}

func TestSettingsRedactsKey(t *testing.T) {
	env := newEnv(t)

	key := "secret-key"
	if _, err := env.settings.Update(models.SettingsPatch{APIKey: &key}); err != nil {
		t.Fatal(err)
	}

	resp := env.do(t, "GET", "/settings", nil)
	got := decode[map[string]any](t, resp)
	if _, leaked := got["apiKey"]; leaked {
		t.Error("api key must never be returned")
	}
	if got["hasApiKey"] != true {
		t.Errorf("hasApiKey = %v", got["hasApiKey"])
	}

	// Patch through the API.
	resp = env.do(t, "PATCH", "/settings", map[string]string{"language": "fr"})
	got = decode[map[string]any](t, resp)
	if got["language"] != "fr" {
		t.Errorf("language = %v", got["language"])
	}

	// Invalid enum rejected.
	resp = env.do(t, "PATCH", "/settings", map[string]string{"theme": "sepia"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid theme status = %d", resp.StatusCode)
	}
}

func TestVerifyKey(t *testing.T) {
	env := newEnv(t)

	// Explicit key in the body.
	resp := env.do(t, "POST", "/settings/verify-key", map[string]string{"apiKey": "valid-key"})
	if got := decode[map[string]bool](t, resp); !got["valid"] {
		t.Error("valid key must verify")
	}
	resp = env.do(t, "POST", "/settings/verify-key", map[string]string{"apiKey": "wrong"})
	if got := decode[map[string]bool](t, resp); got["valid"] {
		t.Error("wrong key must not verify")
	}

	// Empty body checks the stored key.
	key := "valid-key"
	env.settings.Update(models.SettingsPatch{APIKey: &key})
	resp = env.do(t, "POST", "/settings/verify-key", nil)
	if got := decode[map[string]bool](t, resp); !got["valid"] {
		t.Error("stored key must verify")
	}
}

func multipartImages(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, name))
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte(name))
	}
	mw.WriteField("boldKeywords", "true")
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestExtractJobFlow(t *testing.T) {
	env := newEnv(t)

	// No API key configured: blocked up front.
	body, contentType := multipartImages(t, "a.png")
	req, _ := http.NewRequest("POST", env.server.URL+"/extract/jobs", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusPreconditionFailed {
		t.Fatalf("missing key status = %d, want 412", resp.StatusCode)
	}

	key := "valid-key"
	env.settings.Update(models.SettingsPatch{APIKey: &key})

	body, contentType = multipartImages(t, "a.png", "b.png")
	req, _ = http.NewRequest("POST", env.server.URL+"/extract/jobs", body)
	req.Header.Set("Content-Type", contentType)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("submit status = %d", resp.StatusCode)
	}
	submitted := decode[map[string]string](t, resp)
	jobID := submitted["jobId"]
	if jobID == "" {
		t.Fatal("jobId missing")
	}

	// Poll until done.
	deadline := time.Now().Add(2 * time.Second)
	var job extract.Job
	for {
		resp = env.do(t, "GET", "/extract/jobs/"+jobID, nil)
		job = decode[extract.Job](t, resp)
		if job.Done {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never finished: %+v", job)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(job.Items) != 2 || job.Items[0].Status != extract.StatusSuccess {
		t.Fatalf("job = %+v", job)
	}

	// Apply into a document.
	doc := env.store.AddDocument(models.NewDocumentInput{Title: "Target"})
	resp = env.do(t, "POST", "/extract/jobs/"+jobID+"/apply", map[string]string{"documentId": doc.ID})
	applied := decode[map[string]int](t, resp)
	if applied["added"] != 2 {
		t.Fatalf("applied = %+v", applied)
	}
	got, _ := env.store.GetDocument(doc.ID)
	if len(got.Exercises) != 2 {
		t.Errorf("document exercises = %d", len(got.Exercises))
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, fs := testutil.TestFS(t)
	store := docstore.New(fs, testutil.Logger())
	store.Load()
	settings := docstore.NewSettingsStore(fs, testutil.Logger())
	settings.Load()
	r := NewRouter(Deps{
		Store:       store,
		Settings:    settings,
		Searcher:    testutil.TestDB(t),
		Queue:       extract.NewQueue(stubAnalyzer{}, testutil.Logger()),
		Analyzer:    stubAnalyzer{},
		AuthEnabled: true,
		Token:       "sekrit",
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/documents")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest("GET", srv.URL+"/documents", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", resp.StatusCode)
	}

	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want 401", resp.StatusCode)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	env := newEnv(t)
	resp := env.do(t, "GET", "/search", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty query status = %d, want 400", resp.StatusCode)
	}
}
