package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "REPOSCOUT_CONFIG"
	githubTokenEnv  = "GITHUB_TOKEN"
	llmAPIKeyEnv    = "LLM_API_KEY"
	llmModelEnv     = "LLM_MODEL"
	mlAPIKeyEnv     = "ML_API_KEY"
	mlInferenceEnv  = "ML_INFERENCE_URL"
	cachePathEnv    = "REPOSCOUT_CACHE"
	logLevelEnv     = "REPOSCOUT_LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	GitHub  GitHubConfig  `yaml:"github"`
	ML      MLConfig      `yaml:"ml"`
	LLM     LLMConfig     `yaml:"llm"`
	Ranking RankingConfig `yaml:"ranking"`
	Cache   CacheConfig   `yaml:"cache"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// GitHubConfig describes the search API connection and ingestion limits.
type GitHubConfig struct {
	APIURL               string `yaml:"apiUrl"`
	Token                string `yaml:"token"`
	PerPage              int    `yaml:"perPage"`
	MaxResults           int    `yaml:"maxResults"`
	SearchIntervalSecs   int    `yaml:"searchIntervalSeconds"`
	RateLimitBackoffSecs int    `yaml:"rateLimitBackoffSeconds"`
	DocFetchConcurrency  int    `yaml:"docFetchConcurrency"`
	ReadmeCap            int    `yaml:"readmeCap"`
	ArchDocsCap          int    `yaml:"archDocsCap"`
	TotalDocCap          int    `yaml:"totalDocCap"`
}

// MLConfig describes the embedding / cross-encoder service integration.
type MLConfig struct {
	InferenceURL   string `yaml:"inferenceUrl"`
	APIKey         string `yaml:"apiKey"`
	Backend        string `yaml:"backend"` // "remote" or "local"
	LocalModelPath string `yaml:"localModelPath"`
}

// LLMConfig defines how to contact the chat-completions API used by the
// expander, the hardware parser, and the authenticity judge.
type LLMConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// RankingConfig carries the stage thresholds and chunking parameters.
type RankingConfig struct {
	MaxQueries            int     `yaml:"maxQueries"`
	SemanticTopN          int     `yaml:"semanticTopN"`
	RerankTopN            int     `yaml:"rerankTopN"`
	ChunkSize             int     `yaml:"chunkSize"`
	MaxDocLength          int     `yaml:"maxDocLength"`
	MinDocLength          int     `yaml:"minDocLength"`
	LowDocThreshold       int     `yaml:"lowDocThreshold"`
	SparseDocPenalty      float64 `yaml:"sparseDocPenalty"`
	CrossEncoderThreshold float64 `yaml:"crossEncoderThreshold"`
	DisableFilterFallback bool    `yaml:"disableFilterFallback"`
	PersonalGoldBar       int     `yaml:"personalGoldBar"`
}

// CacheConfig locates the persistent file-content cache.
type CacheConfig struct {
	Path          string `yaml:"path"`
	MemoryEntries int    `yaml:"memoryEntries"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(githubTokenEnv); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(mlAPIKeyEnv); v != "" {
		c.ML.APIKey = v
	}
	if v := os.Getenv(mlInferenceEnv); v != "" {
		c.ML.InferenceURL = v
	}
	if v := os.Getenv(cachePathEnv); v != "" {
		c.Cache.Path = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	overrideString(&base.Logging.Level, override.Logging.Level)

	overrideString(&base.GitHub.APIURL, override.GitHub.APIURL)
	overrideString(&base.GitHub.Token, override.GitHub.Token)
	overrideInt(&base.GitHub.PerPage, override.GitHub.PerPage)
	overrideInt(&base.GitHub.MaxResults, override.GitHub.MaxResults)
	overrideInt(&base.GitHub.SearchIntervalSecs, override.GitHub.SearchIntervalSecs)
	overrideInt(&base.GitHub.RateLimitBackoffSecs, override.GitHub.RateLimitBackoffSecs)
	overrideInt(&base.GitHub.DocFetchConcurrency, override.GitHub.DocFetchConcurrency)
	overrideInt(&base.GitHub.ReadmeCap, override.GitHub.ReadmeCap)
	overrideInt(&base.GitHub.ArchDocsCap, override.GitHub.ArchDocsCap)
	overrideInt(&base.GitHub.TotalDocCap, override.GitHub.TotalDocCap)

	overrideString(&base.ML.InferenceURL, override.ML.InferenceURL)
	overrideString(&base.ML.APIKey, override.ML.APIKey)
	overrideString(&base.ML.Backend, override.ML.Backend)
	overrideString(&base.ML.LocalModelPath, override.ML.LocalModelPath)

	overrideString(&base.LLM.Endpoint, override.LLM.Endpoint)
	overrideString(&base.LLM.Model, override.LLM.Model)
	overrideString(&base.LLM.APIKey, override.LLM.APIKey)

	overrideInt(&base.Ranking.MaxQueries, override.Ranking.MaxQueries)
	overrideInt(&base.Ranking.SemanticTopN, override.Ranking.SemanticTopN)
	overrideInt(&base.Ranking.RerankTopN, override.Ranking.RerankTopN)
	overrideInt(&base.Ranking.ChunkSize, override.Ranking.ChunkSize)
	overrideInt(&base.Ranking.MaxDocLength, override.Ranking.MaxDocLength)
	overrideInt(&base.Ranking.MinDocLength, override.Ranking.MinDocLength)
	overrideInt(&base.Ranking.LowDocThreshold, override.Ranking.LowDocThreshold)
	overrideFloat(&base.Ranking.SparseDocPenalty, override.Ranking.SparseDocPenalty)
	overrideFloat(&base.Ranking.CrossEncoderThreshold, override.Ranking.CrossEncoderThreshold)
	overrideInt(&base.Ranking.PersonalGoldBar, override.Ranking.PersonalGoldBar)
	if override.Ranking.DisableFilterFallback {
		base.Ranking.DisableFilterFallback = true
	}

	overrideString(&base.Cache.Path, override.Cache.Path)
	overrideInt(&base.Cache.MemoryEntries, override.Cache.MemoryEntries)

	return base
}

func overrideString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func overrideInt(dst *int, value int) {
	if value != 0 {
		*dst = value
	}
}

func overrideFloat(dst *float64, value float64) {
	if value != 0 {
		*dst = value
	}
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		GitHub: GitHubConfig{
			APIURL:               "https://api.github.com",
			PerPage:              10,
			MaxResults:           30,
			SearchIntervalSecs:   3,
			RateLimitBackoffSecs: 10,
			DocFetchConcurrency:  3,
			ReadmeCap:            500,
			ArchDocsCap:          500,
			TotalDocCap:          1000,
		},
		ML: MLConfig{
			InferenceURL: "https://ml.example.org/infer",
			Backend:      "remote",
		},
		LLM: LLMConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
		},
		Ranking: RankingConfig{
			MaxQueries:            100,
			SemanticTopN:          100,
			RerankTopN:            20,
			ChunkSize:             2000,
			MaxDocLength:          5000,
			MinDocLength:          200,
			LowDocThreshold:       400,
			SparseDocPenalty:      5.0,
			CrossEncoderThreshold: 0.3,
			PersonalGoldBar:       8,
		},
		Cache: CacheConfig{
			Path:          "reposcout-cache.db",
			MemoryEntries: 4096,
		},
	}
}
