package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/idu-service/internal/core/domain"
	"github.com/kirillkom/idu-service/internal/core/ports"
)

const (
	StepClassify  = "classify"
	StepEntities  = "entities"
	StepSummarize = "summarize"
)

// Models holds the inference backends loaded once at startup. It is shared by
// all requests and never mutated after construction.
type Models struct {
	Classifier ports.TextClassifier
	Tagger     ports.EntityTagger
	Summarizer ports.Summarizer
}

func (m Models) Validate() error {
	switch {
	case m.Classifier == nil:
		return errors.New("classifier is not loaded")
	case m.Tagger == nil:
		return errors.New("entity tagger is not loaded")
	case m.Summarizer == nil:
		return errors.New("summarizer is not loaded")
	}
	return nil
}

// AnalyzeObserver receives per-step timings. Implementations must be safe for
// concurrent use.
type AnalyzeObserver interface {
	ObserveAnalysisStep(step string, duration time.Duration, err error)
	ObserveEntities(kept, dropped int)
}

type noopObserver struct{}

func (noopObserver) ObserveAnalysisStep(string, time.Duration, error) {}
func (noopObserver) ObserveEntities(int, int)                         {}

type AnalyzeUseCase struct {
	models   Models
	policy   domain.LabelPolicy
	observer AnalyzeObserver
}

func NewAnalyzeUseCase(models Models, policy domain.LabelPolicy, observer AnalyzeObserver) *AnalyzeUseCase {
	if observer == nil {
		observer = noopObserver{}
	}
	return &AnalyzeUseCase{
		models:   models,
		policy:   policy,
		observer: observer,
	}
}

// Analyze runs classification, entity extraction and summarization
// concurrently and assembles the result. Any failed step fails the call.
func (uc *AnalyzeUseCase) Analyze(ctx context.Context, text string) (*domain.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "analyze", errors.New("text is required"))
	}

	var (
		category   string
		candidates []domain.EntityCandidate
		summary    string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return uc.runStep(gctx, StepClassify, func(ctx context.Context) error {
			label, err := uc.models.Classifier.Classify(ctx, text)
			if err != nil {
				return fmt.Errorf("classify text: %w", err)
			}
			category = label
			return nil
		})
	})
	g.Go(func() error {
		return uc.runStep(gctx, StepEntities, func(ctx context.Context) error {
			tagged, err := uc.models.Tagger.Tag(ctx, text)
			if err != nil {
				return fmt.Errorf("tag entities: %w", err)
			}
			candidates = tagged
			return nil
		})
	})
	g.Go(func() error {
		return uc.runStep(gctx, StepSummarize, func(ctx context.Context) error {
			generated, err := uc.models.Summarizer.Summarize(ctx, domain.SummaryInstruction+text, domain.SummaryMaxNewTokens)
			if err != nil {
				return fmt.Errorf("summarize text: %w", err)
			}
			summary = generated
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entities := uc.policy.Filter(candidates)
	uc.observer.ObserveEntities(len(entities), len(candidates)-len(entities))

	return &domain.AnalysisResult{
		Category: category,
		Entities: entities,
		Summary:  summary,
	}, nil
}

func (uc *AnalyzeUseCase) runStep(ctx context.Context, step string, fn func(context.Context) error) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s step panicked: %v", step, r)
		}
		uc.observer.ObserveAnalysisStep(step, time.Since(start), err)
	}()
	return fn(ctx)
}
