package ports

import (
	"context"

	"github.com/kirillkom/idu-service/internal/core/domain"
)

// DocumentAnalyzer is the inbound contract of the analysis service.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, text string) (*domain.AnalysisResult, error)
}

// DocumentSubmitter is the inbound contract of the front-end: acquire text,
// gate it and forward it to the analysis service.
type DocumentSubmitter interface {
	ExtractUpload(ctx context.Context, upload domain.Upload) (string, error)
	Submit(ctx context.Context, text string) (*domain.Submission, error)
}
