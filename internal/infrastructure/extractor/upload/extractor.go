package upload

import (
	"context"
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kirillkom/idu-service/internal/core/domain"
	"github.com/kirillkom/idu-service/internal/core/ports"
)

const (
	MimePlainText = "text/plain"
	MimePDF       = "application/pdf"

	mimeOctetStream = "application/octet-stream"
)

// Extractor routes an upload to the extractor for its media type. Content is
// sniffed only when the client declared no specific type; any other declared
// type must be one we support.
type Extractor struct {
	byType map[string]ports.TextExtractor
}

func NewExtractor(plain, pdf ports.TextExtractor) *Extractor {
	return &Extractor{byType: map[string]ports.TextExtractor{
		MimePlainText: plain,
		MimePDF:       pdf,
	}}
}

func (e *Extractor) Extract(ctx context.Context, upload domain.Upload) (string, error) {
	mediaType := e.detect(upload)
	extractor, ok := e.byType[mediaType]
	if !ok || extractor == nil {
		return "", domain.WrapError(domain.ErrNoTextExtracted, "detect upload type", fmt.Errorf("unsupported file type %s", mediaType))
	}
	return extractor.Extract(ctx, upload)
}

func (e *Extractor) detect(upload domain.Upload) string {
	declared := baseMediaType(upload.ContentType)
	if declared != "" && declared != mimeOctetStream {
		return declared
	}
	sniffed := mimetype.Detect(upload.Data)
	for mediaType := range e.byType {
		if sniffed.Is(mediaType) {
			return mediaType
		}
	}
	return baseMediaType(sniffed.String())
}

func baseMediaType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(contentType)
	}
	return mediaType
}
