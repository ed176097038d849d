// Package webadapter serves the document analysis page.
package webadapter

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kirillkom/idu-service/internal/core/domain"
	"github.com/kirillkom/idu-service/internal/core/ports"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

const (
	modeText = "text"
	modeFile = "file"

	// multipart framing and the text field ride on top of the file itself
	formOverheadBytes = 1 << 20

	unknownCategory = "Unknown"
)

type Handler struct {
	submitter      ports.DocumentSubmitter
	minChars       int
	maxUploadBytes int64
}

func NewHandler(submitter ports.DocumentSubmitter, minChars int, maxUploadBytes int64) *Handler {
	if minChars <= 0 {
		minChars = domain.MinSubmitChars
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 25 << 20
	}
	return &Handler{
		submitter:      submitter,
		minChars:       minChars,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Post("/analyze", h.analyze)
	r.Post("/summary.txt", h.downloadSummary)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	return r
}

type pageData struct {
	Mode    string
	Text    string
	Notice  string
	Warning string
	Error   string
	Result  *resultView
}

type resultView struct {
	Category string
	Entities []entityView
	Summary  string
}

type entityView struct {
	Text        string
	Label       string
	Description string
}

func newResultView(result *domain.AnalysisResult) *resultView {
	view := &resultView{
		Category: result.Category,
		Summary:  result.Summary,
		Entities: make([]entityView, 0, len(result.Entities)),
	}
	if view.Category == "" {
		view.Category = unknownCategory
	}
	for _, e := range result.Entities {
		view.Entities = append(view.Entities, entityView{
			Text:        e.Text,
			Label:       string(e.Label),
			Description: e.Label.Description(),
		})
	}
	return view
}

func (h *Handler) index(w http.ResponseWriter, _ *http.Request) {
	h.render(w, pageData{Mode: modeText})
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+formOverheadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.render(w, pageData{Mode: modeFile, Error: fmt.Sprintf("File is too large. Limit is %d MB.", h.maxUploadBytes>>20)})
			return
		}
		h.render(w, pageData{Mode: modeText, Error: "Could not read the submitted form."})
		return
	}

	page := pageData{Mode: modeText}
	if r.FormValue("mode") == modeFile {
		page.Mode = modeFile
		text, ok := h.extractUpload(r, &page)
		if !ok {
			h.render(w, page)
			return
		}
		page.Text = text
	} else {
		page.Text = r.FormValue("text")
	}

	submission, err := h.submitter.Submit(r.Context(), page.Text)
	switch {
	case err == nil:
		page.Text = submission.Text
		page.Result = newResultView(submission.Result)
	case domain.IsKind(err, domain.ErrTextTooShort):
		page.Warning = fmt.Sprintf("Please provide at least %d characters of text", h.minChars)
	case domain.IsKind(err, domain.ErrBackendStatus):
		slog.Warn("analysis_backend_error", "request_id", middleware.GetReqID(r.Context()), "error", err)
		page.Error = "Backend error. Check API logs."
	default:
		slog.Error("analysis_call_failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
		page.Error = "Error connecting to backend: " + err.Error()
	}
	h.render(w, page)
}

func (h *Handler) extractUpload(r *http.Request, page *pageData) (string, bool) {
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			page.Warning = "Please upload a .txt or .pdf document"
			return "", false
		}
		page.Error = "Could not read the uploaded file."
		return "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		page.Error = "Could not read the uploaded file."
		return "", false
	}

	text, err := h.submitter.ExtractUpload(r.Context(), domain.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		slog.Info("upload_extract_failed",
			"request_id", middleware.GetReqID(r.Context()),
			"filename", header.Filename,
			"error", err,
		)
		page.Error = "Could not extract text"
		return "", false
	}
	page.Notice = "File processed successfully"
	return text, true
}

func (h *Handler) downloadSummary(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, formOverheadBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	summary := r.PostFormValue("summary")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="summary.txt"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, summary)
}

func (h *Handler) render(w http.ResponseWriter, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		slog.Error("render_page_failed", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
