package webadapter

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirillkom/idu-service/internal/core/domain"
	"github.com/kirillkom/idu-service/internal/core/usecase"
	"github.com/kirillkom/idu-service/internal/infrastructure/analysisapi"
	"github.com/kirillkom/idu-service/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/idu-service/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/idu-service/internal/infrastructure/extractor/upload"
)

const longText = "Apple Inc. announced record quarterly results in Cupertino on Monday."

type predictBackend struct {
	calls  atomic.Int32
	texts  chan string
	status int
	result domain.AnalysisResult
}

func newPredictBackend(t *testing.T, status int, result domain.AnalysisResult) (*predictBackend, *httptest.Server) {
	t.Helper()
	b := &predictBackend{status: status, result: result, texts: make(chan string, 8)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		var req struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.texts <- req.Text
		if b.status != http.StatusOK {
			w.WriteHeader(b.status)
			_, _ = io.WriteString(w, `{"error":"boom"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(b.result)
	}))
	t.Cleanup(srv.Close)
	return b, srv
}

func newTestRoutes(apiURL string) http.Handler {
	extractor := upload.NewExtractor(plaintext.NewExtractor(), pdf.NewExtractor())
	client := analysisapi.New(apiURL, 5*time.Second)
	submitter := usecase.NewSubmitUseCase(extractor, client, domain.MinSubmitChars)
	return NewHandler(submitter, domain.MinSubmitChars, 1<<20).Routes()
}

type formFile struct {
	name        string
	contentType string
	data        []byte
}

func postAnalyze(t *testing.T, handler http.Handler, fields map[string]string, file *formFile) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="`+file.name+`"`)
		header.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(file.data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestIndexRendersForm(t *testing.T) {
	handler := newTestRoutes("http://127.0.0.1:1")

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	for _, want := range []string{"Intelligent Document Understanding (IDU)", `action="/analyze"`, "Upload File"} {
		if !strings.Contains(res.Body.String(), want) {
			t.Fatalf("expected %q in page", want)
		}
	}
}

func TestAnalyzeTextRendersResult(t *testing.T) {
	backend, srv := newPredictBackend(t, http.StatusOK, domain.AnalysisResult{
		Category: "business",
		Entities: []domain.Entity{
			{Text: "Apple Inc.", Label: domain.LabelOrganization},
			{Text: "Monday", Label: domain.LabelDate},
		},
		Summary: "Apple posted record results.",
	})
	handler := newTestRoutes(srv.URL)

	res := postAnalyze(t, handler, map[string]string{"mode": "text", "text": "  " + longText + "\n\n"}, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got := backend.calls.Load(); got != 1 {
		t.Fatalf("expected exactly one service call, got %d", got)
	}
	if sent := <-backend.texts; sent != longText {
		t.Fatalf("expected normalized text to be sent, got %q", sent)
	}
	page := res.Body.String()
	for _, want := range []string{"Analysis Results", "business", "Apple Inc.", "ORG", "DATE", "Apple posted record results.", `action="/summary.txt"`} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected %q in page:\n%s", want, page)
		}
	}
	if strings.Index(page, "Apple Inc.</strong>") > strings.Index(page, "Monday</strong>") {
		t.Fatalf("expected entities in source order")
	}
}

func TestAnalyzeShortTextWarnsWithoutCallingService(t *testing.T) {
	backend, srv := newPredictBackend(t, http.StatusOK, domain.AnalysisResult{})
	handler := newTestRoutes(srv.URL)

	short := strings.Repeat("a", 49)
	res := postAnalyze(t, handler, map[string]string{"mode": "text", "text": short + "          "}, nil)
	if !strings.Contains(res.Body.String(), "Please provide at least 50 characters of text") {
		t.Fatalf("expected short text warning:\n%s", res.Body.String())
	}
	if got := backend.calls.Load(); got != 0 {
		t.Fatalf("expected no service call, got %d", got)
	}
}

func TestAnalyzePlainTextUploadIsNormalized(t *testing.T) {
	backend, srv := newPredictBackend(t, http.StatusOK, domain.AnalysisResult{})
	handler := newTestRoutes(srv.URL)

	res := postAnalyze(t, handler, map[string]string{"mode": "file"}, &formFile{
		name:        "note.txt",
		contentType: "text/plain",
		data:        []byte("Hello   world\n"),
	})
	page := res.Body.String()
	if !strings.Contains(page, "File processed successfully") {
		t.Fatalf("expected extraction notice:\n%s", page)
	}
	if !strings.Contains(page, ">Hello world</textarea>") {
		t.Fatalf("expected normalized text in text area:\n%s", page)
	}
	if !strings.Contains(page, "Please provide at least 50 characters of text") {
		t.Fatalf("expected short text warning for tiny upload")
	}
	if got := backend.calls.Load(); got != 0 {
		t.Fatalf("expected no service call, got %d", got)
	}
}

func TestAnalyzeUnsupportedUploadShowsError(t *testing.T) {
	backend, srv := newPredictBackend(t, http.StatusOK, domain.AnalysisResult{})
	handler := newTestRoutes(srv.URL)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	res := postAnalyze(t, handler, map[string]string{"mode": "file"}, &formFile{
		name:        "scan.png",
		contentType: "image/png",
		data:        png,
	})
	if !strings.Contains(res.Body.String(), "Could not extract text") {
		t.Fatalf("expected extraction error:\n%s", res.Body.String())
	}
	if got := backend.calls.Load(); got != 0 {
		t.Fatalf("expected no service call, got %d", got)
	}
}

func TestAnalyzeMissingUploadWarns(t *testing.T) {
	backend, srv := newPredictBackend(t, http.StatusOK, domain.AnalysisResult{})
	handler := newTestRoutes(srv.URL)

	res := postAnalyze(t, handler, map[string]string{"mode": "file"}, nil)
	if !strings.Contains(res.Body.String(), "Please upload a .txt or .pdf document") {
		t.Fatalf("expected missing file warning:\n%s", res.Body.String())
	}
	if got := backend.calls.Load(); got != 0 {
		t.Fatalf("expected no service call, got %d", got)
	}
}

func TestAnalyzeBackendErrorIsOpaque(t *testing.T) {
	backend, srv := newPredictBackend(t, http.StatusInternalServerError, domain.AnalysisResult{})
	handler := newTestRoutes(srv.URL)

	res := postAnalyze(t, handler, map[string]string{"mode": "text", "text": longText}, nil)
	page := res.Body.String()
	if !strings.Contains(page, "Backend error. Check API logs.") {
		t.Fatalf("expected backend error message:\n%s", page)
	}
	if strings.Contains(page, "boom") {
		t.Fatalf("backend body must not be shown to the user")
	}
	if got := backend.calls.Load(); got != 1 {
		t.Fatalf("expected a single call without retry, got %d", got)
	}
}

func TestAnalyzeTransportErrorShowsReason(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	apiURL := srv.URL
	srv.Close()
	handler := newTestRoutes(apiURL)

	res := postAnalyze(t, handler, map[string]string{"mode": "text", "text": longText}, nil)
	if !strings.Contains(res.Body.String(), "Error connecting to backend: ") {
		t.Fatalf("expected transport error message:\n%s", res.Body.String())
	}
}

func TestAnalyzeFallbacksForSparseResult(t *testing.T) {
	_, srv := newPredictBackend(t, http.StatusOK, domain.AnalysisResult{Summary: "short"})
	handler := newTestRoutes(srv.URL)

	res := postAnalyze(t, handler, map[string]string{"mode": "text", "text": longText}, nil)
	page := res.Body.String()
	if !strings.Contains(page, "Unknown") {
		t.Fatalf("expected category fallback:\n%s", page)
	}
	if !strings.Contains(page, "No significant named entities detected.") {
		t.Fatalf("expected empty entity notice:\n%s", page)
	}
}

func TestDownloadSummaryReturnsAttachment(t *testing.T) {
	handler := newTestRoutes("http://127.0.0.1:1")

	form := url.Values{"summary": {"Apple posted record results."}}
	req := httptest.NewRequest(http.MethodPost, "/summary.txt", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got := res.Header().Get("Content-Disposition"); got != `attachment; filename="summary.txt"` {
		t.Fatalf("unexpected content disposition %q", got)
	}
	if !strings.HasPrefix(res.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("unexpected content type %q", res.Header().Get("Content-Type"))
	}
	if res.Body.String() != "Apple posted record results." {
		t.Fatalf("unexpected body %q", res.Body.String())
	}
}
