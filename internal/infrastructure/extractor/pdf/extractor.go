package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/idu-service/internal/core/domain"
)

// Extractor pulls the text layer of a PDF page by page.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, upload domain.Upload) (text string, err error) {
	// the parser panics on some malformed documents
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = domain.WrapError(domain.ErrNoTextExtracted, "parse pdf", fmt.Errorf("%s: %v", upload.Filename, r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(upload.Data), int64(len(upload.Data)))
	if err != nil {
		return "", domain.WrapError(domain.ErrNoTextExtracted, "open pdf", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", domain.WrapError(domain.ErrNoTextExtracted, "read pdf page", fmt.Errorf("page %d: %w", i, err))
		}
		if pageText == "" {
			continue
		}
		b.WriteString(pageText)
		b.WriteString(" ")
	}
	return b.String(), nil
}
