package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/idu-service/internal/config"
	"github.com/kirillkom/idu-service/internal/core/domain"
	"github.com/kirillkom/idu-service/internal/core/ports"
	"github.com/kirillkom/idu-service/internal/core/usecase"
	"github.com/kirillkom/idu-service/internal/infrastructure/analysisapi"
	"github.com/kirillkom/idu-service/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/idu-service/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/idu-service/internal/infrastructure/extractor/upload"
	"github.com/kirillkom/idu-service/internal/infrastructure/inference/hf"
	"github.com/kirillkom/idu-service/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/idu-service/internal/infrastructure/llm/openai"
	"github.com/kirillkom/idu-service/internal/infrastructure/model/linear"
	"github.com/kirillkom/idu-service/internal/infrastructure/resilience"
	"github.com/kirillkom/idu-service/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/idu-service/internal/observability/metrics"
)

// App holds the analysis service dependencies. Models are loaded once here and
// shared read-only by every request.
type App struct {
	Config  config.Config
	Metrics *metrics.HTTPServerMetrics

	AnalyzeUC ports.DocumentAnalyzer
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	store, err := localfs.New(cfg.ModelDir)
	if err != nil {
		return nil, fmt.Errorf("init model store: %w", err)
	}
	classifier, err := linear.Load(ctx, store, cfg.VectorizerArtifact, cfg.ClassifierArtifact)
	if err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}
	slog.Info("classifier_loaded", "classes", len(classifier.Classes()), "model_dir", cfg.ModelDir)

	policy, err := config.LoadLabelPolicy(cfg.EntityLabelsFile)
	if err != nil {
		return nil, fmt.Errorf("load entity label policy: %w", err)
	}

	guard := resilience.NewGuard(modelPolicy(cfg))
	hfClient := hf.New(cfg.HFBaseURL, cfg.HFAPIToken, cfg.ModelTimeout, guard)

	summarizer, err := newSummarizer(cfg, hfClient, guard)
	if err != nil {
		return nil, err
	}

	models := usecase.Models{
		Classifier: classifier,
		Tagger:     hf.NewTagger(hfClient, cfg.TaggerModel, cfg.TaggerWindowChars),
		Summarizer: summarizer,
	}
	if err := models.Validate(); err != nil {
		return nil, fmt.Errorf("validate models: %w", err)
	}

	m := metrics.NewHTTPServerMetrics("idu-api")
	return &App{
		Config:    cfg,
		Metrics:   m,
		AnalyzeUC: usecase.NewAnalyzeUseCase(models, policy, m),
	}, nil
}

func newSummarizer(cfg config.Config, hfClient *hf.Client, guard *resilience.Guard) (ports.Summarizer, error) {
	switch cfg.SummarizerBackend {
	case config.SummarizerHF, "":
		return hf.NewSummarizer(hfClient, cfg.SummarizerModel), nil
	case config.SummarizerOllama:
		return ollama.NewSummarizer(ollama.New(cfg.OllamaURL, cfg.OllamaModel, cfg.ModelTimeout, guard)), nil
	case config.SummarizerOpenAI:
		if cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
			return nil, fmt.Errorf("summarizer backend %q requires OPENAI_API_KEY or OPENAI_BASE_URL", cfg.SummarizerBackend)
		}
		return openai.NewSummarizer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, guard), nil
	default:
		return nil, fmt.Errorf("unknown summarizer backend %q", cfg.SummarizerBackend)
	}
}

func modelPolicy(cfg config.Config) resilience.Policy {
	p := resilience.ModelPolicy()
	p.Attempts = cfg.ModelRetryAttempts
	p.Breaker = cfg.BreakerEnabled
	p.TripAfter = cfg.BreakerMinRequests
	p.TripRatio = cfg.BreakerFailureRatio
	p.Cooldown = cfg.BreakerOpenTimeout
	return p
}

// WebApp holds the front-end dependencies.
type WebApp struct {
	Config   config.WebConfig
	SubmitUC ports.DocumentSubmitter
}

func NewWeb(cfg config.WebConfig) *WebApp {
	extractor := upload.NewExtractor(plaintext.NewExtractor(), pdf.NewExtractor())
	client := analysisapi.New(cfg.APIURL, cfg.APITimeout)
	minChars := cfg.MinTextChars
	if minChars <= 0 {
		minChars = domain.MinSubmitChars
	}
	return &WebApp{
		Config:   cfg,
		SubmitUC: usecase.NewSubmitUseCase(extractor, client, minChars),
	}
}
