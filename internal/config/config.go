package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"paperbase"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"paperbase"`

	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	NSQDHost   string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQEnabled bool   `envconfig:"NSQ_ENABLED" default:"true"`

	GeminiAPIKey   string `envconfig:"GEMINI_API_KEY"`
	EmbedModel     string `envconfig:"EMBED_MODEL" default:"text-embedding-004"`
	EmbedDimension int    `envconfig:"EMBED_DIMENSION" default:"768"`
	RewriteModel   string `envconfig:"REWRITE_MODEL" default:"gemini-2.0-flash"`

	DriveFolderID    string `envconfig:"DRIVE_FOLDER_ID"`
	DriveCredentials string `envconfig:"DRIVE_CREDENTIALS" default:"credentials.json"`

	OCREnabled   bool   `envconfig:"OCR_ENABLED" default:"false"`
	OCRLanguages string `envconfig:"OCR_LANGUAGES" default:"kor+eng"`

	// Retrieval tuning. Deliberately configuration, not constants.
	SearchHighThreshold  float32 `envconfig:"SEARCH_HIGH_THRESHOLD" default:"0.3"`
	SearchLowThreshold   float32 `envconfig:"SEARCH_LOW_THRESHOLD" default:"0.1"`
	SearchTopK           int     `envconfig:"SEARCH_TOP_K" default:"10"`
	SearchMinVectorHits  int     `envconfig:"SEARCH_MIN_VECTOR_HITS" default:"5"`
	SearchMinKeywordHits int     `envconfig:"SEARCH_MIN_KEYWORD_HITS" default:"2"`
	SearchScanLimit      int     `envconfig:"SEARCH_SCAN_LIMIT" default:"500"`
	SearchPerSourceCap   int     `envconfig:"SEARCH_PER_SOURCE_CAP" default:"3"`
	SearchMaxResults     int     `envconfig:"SEARCH_MAX_RESULTS" default:"15"`
	QueryVariantCap      int     `envconfig:"QUERY_VARIANT_CAP" default:"7"`

	RetryMaxAttempts int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	RetryBaseDelay   time.Duration `envconfig:"RETRY_BASE_DELAY" default:"500ms"`
	NetworkTimeout   time.Duration `envconfig:"NETWORK_TIMEOUT" default:"60s"`
	SyncTimeout      time.Duration `envconfig:"SYNC_TIMEOUT" default:"30m"`

	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`
	ServerPort    int    `envconfig:"SERVER_PORT" default:"8081"`
	QueryLogPath  string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`

	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Env vars may come from the shell; a missing .env is fine.
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
	}
	if c.DriveFolderID == "" {
		return fmt.Errorf("%w: DRIVE_FOLDER_ID", ErrMissingRequired)
	}
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.SearchLowThreshold > c.SearchHighThreshold {
		return fmt.Errorf("SEARCH_LOW_THRESHOLD %v exceeds SEARCH_HIGH_THRESHOLD %v",
			c.SearchLowThreshold, c.SearchHighThreshold)
	}
	return nil
}
