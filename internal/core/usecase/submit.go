package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirillkom/idu-service/internal/core/domain"
	"github.com/kirillkom/idu-service/internal/core/ports"
)

type SubmitUseCase struct {
	extractor ports.TextExtractor
	client    ports.AnalysisClient
	minChars  int
}

func NewSubmitUseCase(extractor ports.TextExtractor, client ports.AnalysisClient, minChars int) *SubmitUseCase {
	if minChars <= 0 {
		minChars = domain.MinSubmitChars
	}
	return &SubmitUseCase{
		extractor: extractor,
		client:    client,
		minChars:  minChars,
	}
}

// ExtractUpload returns the normalized text of an uploaded document.
func (uc *SubmitUseCase) ExtractUpload(ctx context.Context, upload domain.Upload) (string, error) {
	raw, err := uc.extractor.Extract(ctx, upload)
	if err != nil {
		return "", fmt.Errorf("extract upload %q: %w", upload.Filename, err)
	}
	text := domain.NormalizeText(raw)
	if text == "" {
		return "", domain.WrapError(domain.ErrNoTextExtracted, "extract upload", fmt.Errorf("file %q is empty", upload.Filename))
	}
	return text, nil
}

// Submit normalizes text, enforces the minimum length and calls the analysis
// service exactly once when the gate passes.
func (uc *SubmitUseCase) Submit(ctx context.Context, text string) (*domain.Submission, error) {
	normalized := domain.NormalizeText(text)
	if domain.CharCount(normalized) < uc.minChars {
		return nil, domain.WrapError(
			domain.ErrTextTooShort,
			"submit",
			fmt.Errorf("need at least %d characters, got %d", uc.minChars, domain.CharCount(normalized)),
		)
	}
	if uc.client == nil {
		return nil, errors.New("analysis client is not configured")
	}

	result, err := uc.client.Predict(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("call analysis service: %w", err)
	}
	return &domain.Submission{Text: normalized, Result: result}, nil
}
