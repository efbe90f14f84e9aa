package config

// QualityPreset describes the models to use for a given quality tier.
// Analysis handles photos, so every preset is a vision-capable model.
type QualityPreset struct {
	Model          string
	PulseModel     string
	EmbeddingModel string
}

var qualityPresets = map[ProviderType]map[QualityTier]QualityPreset{
	ProviderGoogle: {
		QualityLite:   {Model: "gemini-3-flash-preview", PulseModel: "gemini-3-flash-preview", EmbeddingModel: "text-embedding-3-small"},
		QualityNormal: {Model: "gemini-3-pro-preview", PulseModel: "gemini-3-flash-preview", EmbeddingModel: "text-embedding-3-small"},
		QualityMax:    {Model: "gemini-3-pro-preview", PulseModel: "gemini-3-pro-preview", EmbeddingModel: "text-embedding-3-large"},
	},
	ProviderAnthropic: {
		QualityLite:   {Model: "claude-haiku-4-5-20251001", PulseModel: "claude-haiku-4-5-20251001", EmbeddingModel: "text-embedding-3-small"},
		QualityNormal: {Model: "claude-sonnet-4-5-20250929", PulseModel: "claude-haiku-4-5-20251001", EmbeddingModel: "text-embedding-3-small"},
		QualityMax:    {Model: "claude-opus-4-6", PulseModel: "claude-sonnet-4-5-20250929", EmbeddingModel: "text-embedding-3-large"},
	},
	ProviderOpenAI: {
		QualityLite:   {Model: "gpt-4o-mini", PulseModel: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
		QualityNormal: {Model: "gpt-4o", PulseModel: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
		QualityMax:    {Model: "gpt-4o", PulseModel: "gpt-4o", EmbeddingModel: "text-embedding-3-large"},
	},
	ProviderOpenRouter: {
		QualityLite:   {Model: "google/gemini-3-flash-preview", PulseModel: "google/gemini-3-flash-preview", EmbeddingModel: "text-embedding-3-small"},
		QualityNormal: {Model: "google/gemini-3-pro-preview", PulseModel: "google/gemini-3-flash-preview", EmbeddingModel: "text-embedding-3-small"},
		QualityMax:    {Model: "google/gemini-3-pro-preview", PulseModel: "google/gemini-3-pro-preview", EmbeddingModel: "text-embedding-3-large"},
	},
	ProviderOllama: {
		QualityLite:   {Model: "llava", PulseModel: "llama3", EmbeddingModel: "nomic-embed-text"},
		QualityNormal: {Model: "llava", PulseModel: "llama3", EmbeddingModel: "nomic-embed-text"},
		QualityMax:    {Model: "llava:34b", PulseModel: "llama3:70b", EmbeddingModel: "nomic-embed-text"},
	},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:               ProviderGoogle,
		Model:                  "gemini-3-pro-preview",
		PulseModel:             "gemini-3-flash-preview",
		Quality:                QualityNormal,
		EmbeddingProvider:      ProviderNone,
		DataDir:                "data",
		Storage:                StorageSQLite,
		Timezone:               "UTC",
		AnalysisTimeoutSeconds: 30,
		RateLimitRPM:           0,
		Server: ServerConfig{
			Port:            8080,
			AllowAllOrigins: false,
		},
	}
}

// GetPreset returns the quality preset for the given provider and tier.
// Returns the Normal Google preset if the combination is not found.
func GetPreset(provider ProviderType, tier QualityTier) QualityPreset {
	if tiers, ok := qualityPresets[provider]; ok {
		if preset, ok := tiers[tier]; ok {
			return preset
		}
	}
	return qualityPresets[ProviderGoogle][QualityNormal]
}
