package linear

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kirillkom/idu-service/internal/core/ports"
)

const (
	DefaultVectorizerKey = "tfidf_vectorizer.json"
	DefaultClassifierKey = "text_classifier.json"
)

// Model pairs a vectorizer with the classifier fit on its features. Both are
// read-only after Load, so a Model is safe for concurrent use.
type Model struct {
	vectorizer *Vectorizer
	classifier *Classifier
}

func Load(ctx context.Context, store ports.ArtifactStore, vectorizerKey, classifierKey string) (*Model, error) {
	if vectorizerKey == "" {
		vectorizerKey = DefaultVectorizerKey
	}
	if classifierKey == "" {
		classifierKey = DefaultClassifierKey
	}

	var vectorizer Vectorizer
	if err := decodeArtifact(ctx, store, vectorizerKey, &vectorizer); err != nil {
		return nil, err
	}
	if err := vectorizer.validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", vectorizerKey, err)
	}

	var classifier Classifier
	if err := decodeArtifact(ctx, store, classifierKey, &classifier); err != nil {
		return nil, err
	}
	if err := classifier.validate(vectorizer.Dimensions()); err != nil {
		return nil, fmt.Errorf("validate %s: %w", classifierKey, err)
	}

	return New(&vectorizer, &classifier), nil
}

func New(vectorizer *Vectorizer, classifier *Classifier) *Model {
	return &Model{vectorizer: vectorizer, classifier: classifier}
}

func (m *Model) Classify(_ context.Context, text string) (string, error) {
	return m.classifier.Predict(m.vectorizer.Transform(text)), nil
}

func (m *Model) Classes() []string {
	out := make([]string, len(m.classifier.Classes))
	copy(out, m.classifier.Classes)
	return out
}

func decodeArtifact(ctx context.Context, store ports.ArtifactStore, key string, out any) error {
	rc, err := store.Open(ctx, key)
	if err != nil {
		return fmt.Errorf("open %s: %w", key, err)
	}
	defer rc.Close()

	if err := json.NewDecoder(rc).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
