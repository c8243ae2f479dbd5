package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database (identity directory + authorization logs)
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Durable state (samples, label map, model)
	DataDir string `envconfig:"DATA_DIR" default:"./data"`

	// Vision providers
	DetectorType string `envconfig:"DETECTOR_TYPE" default:"pigo"`
	ModelType    string `envconfig:"MODEL_TYPE" default:"lbph"`
	CascadeFile  string `envconfig:"CASCADE_FILE" default:"./cascade/facefinder"`
	AWSRegion    string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Enrollment
	TargetFrames int `envconfig:"TARGET_FRAMES" default:"100"`
	CropPadding  int `envconfig:"CROP_PADDING" default:"10"`

	// Training
	TrainTimeout time.Duration `envconfig:"TRAIN_TIMEOUT" default:"2m"`

	// Authorization
	ConfidenceThreshold float64 `envconfig:"CONFIDENCE_THRESHOLD" default:"50"`

	// Security
	TokenSecret string `envconfig:"TOKEN_SECRET" required:"true"`
	TokenIssuer string `envconfig:"TOKEN_ISSUER" default:"shield-api"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.TargetFrames <= 0 {
		return nil, fmt.Errorf("load config: TARGET_FRAMES must be positive, got %d", cfg.TargetFrames)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
