package config

// QualityTier controls which model a provider runs for report analysis.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderNone       ProviderType = "none"
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderGoogle     ProviderType = "google"
	ProviderOllama     ProviderType = "ollama"
)

// StorageType selects the backing store for reports and users.
type StorageType string

const (
	StorageSQLite StorageType = "sqlite"
	StorageFile   StorageType = "file"
)

// Config is the top-level urbix configuration, corresponding to .urbix.yml.
type Config struct {
	Provider               ProviderType `yaml:"provider" koanf:"provider"`
	Model                  string       `yaml:"model" koanf:"model"`
	PulseModel             string       `yaml:"pulse_model" koanf:"pulse_model"`
	Quality                QualityTier  `yaml:"quality" koanf:"quality"`
	EmbeddingProvider      ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel         string       `yaml:"embedding_model" koanf:"embedding_model"`
	DataDir                string       `yaml:"data_dir" koanf:"data_dir"`
	Storage                StorageType  `yaml:"storage" koanf:"storage"`
	Timezone               string       `yaml:"timezone" koanf:"timezone"`
	AnalysisTimeoutSeconds int          `yaml:"analysis_timeout_seconds" koanf:"analysis_timeout_seconds"`
	RateLimitRPM           int          `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	Server                 ServerConfig `yaml:"server" koanf:"server"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
