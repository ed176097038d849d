package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	SummarizerHF     = "hf"
	SummarizerOllama = "ollama"
	SummarizerOpenAI = "openai"
)

// Config drives the analysis service (cmd/api).
type Config struct {
	APIAddr  string `env:"API_ADDR"  envDefault:"127.0.0.1:8000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	ModelDir           string `env:"MODEL_DIR"           envDefault:"./models"`
	VectorizerArtifact string `env:"VECTORIZER_ARTIFACT" envDefault:"tfidf_vectorizer.json"`
	ClassifierArtifact string `env:"CLASSIFIER_ARTIFACT" envDefault:"text_classifier.json"`
	EntityLabelsFile   string `env:"ENTITY_LABELS_FILE"`

	HFBaseURL         string `env:"HF_BASE_URL"         envDefault:"https://api-inference.huggingface.co"`
	HFAPIToken        string `env:"HF_API_TOKEN"`
	TaggerModel       string `env:"TAGGER_MODEL"        envDefault:"djagatiya/ner-roberta-base-ontonotesv5-englishv4"`
	TaggerWindowChars int    `env:"TAGGER_WINDOW_CHARS" envDefault:"1500"`

	SummarizerBackend string `env:"SUMMARIZER_BACKEND" envDefault:"hf"`
	SummarizerModel   string `env:"SUMMARIZER_MODEL"   envDefault:"t5-small"`

	OllamaURL   string `env:"OLLAMA_URL"   envDefault:"http://localhost:11434"`
	OllamaModel string `env:"OLLAMA_MODEL" envDefault:"llama3.1:8b"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	ModelTimeout        time.Duration `env:"MODEL_TIMEOUT"         envDefault:"120s"`
	ModelRetryAttempts  int           `env:"MODEL_RETRY_ATTEMPTS"  envDefault:"1"`
	BreakerEnabled      bool          `env:"BREAKER_ENABLED"       envDefault:"true"`
	BreakerMinRequests  uint32        `env:"BREAKER_MIN_REQUESTS"  envDefault:"5"`
	BreakerFailureRatio float64       `env:"BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	BreakerOpenTimeout  time.Duration `env:"BREAKER_OPEN_TIMEOUT"  envDefault:"30s"`

	APIRateLimitRPS   float64  `env:"API_RATE_LIMIT_RPS"   envDefault:"0"`
	APIRateLimitBurst int      `env:"API_RATE_LIMIT_BURST" envDefault:"10"`
	APIMaxInFlight    int      `env:"API_MAX_IN_FLIGHT"    envDefault:"0"`
	APIMaxBodyBytes   int64    `env:"API_MAX_BODY_BYTES"   envDefault:"5242880"`
	CORSOrigins       []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	MCPEnabled bool `env:"MCP_ENABLED" envDefault:"true"`
}

// WebConfig drives the front-end (cmd/web).
type WebConfig struct {
	WebAddr        string        `env:"WEB_ADDR"          envDefault:":8501"`
	LogLevel       string        `env:"LOG_LEVEL"         envDefault:"info"`
	APIURL         string        `env:"IDU_API_URL"       envDefault:"http://127.0.0.1:8000"`
	APITimeout     time.Duration `env:"IDU_API_TIMEOUT"   envDefault:"120s"`
	MinTextChars   int           `env:"MIN_TEXT_CHARS"    envDefault:"50"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES"  envDefault:"26214400"`
}

func Parse() (Config, error) {
	return env.ParseAs[Config]()
}

func Load() Config {
	return env.Must(Parse())
}

func ParseWeb() (WebConfig, error) {
	return env.ParseAs[WebConfig]()
}

func LoadWeb() WebConfig {
	return env.Must(ParseWeb())
}
