package ports

import (
	"context"
	"io"

	"github.com/kirillkom/idu-service/internal/core/domain"
)

// TextClassifier maps text to one trained category label.
type TextClassifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// EntityTagger returns entity candidates in order of appearance.
type EntityTagger interface {
	Tag(ctx context.Context, text string) ([]domain.EntityCandidate, error)
}

// Summarizer generates a bounded, greedily decoded summary for an
// instruction-prefixed input.
type Summarizer interface {
	Summarize(ctx context.Context, input string, maxNewTokens int) (string, error)
}

// ArtifactStore opens pre-trained model artifacts by key.
type ArtifactStore interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// TextExtractor turns an uploaded document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, upload domain.Upload) (string, error)
}

// AnalysisClient calls the analysis service over the network.
type AnalysisClient interface {
	Predict(ctx context.Context, text string) (*domain.AnalysisResult, error)
}
