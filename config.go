package caloriewise

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds the backend endpoints and credentials the SDK talks to.
// Environment variables use the CALORIEWISE_ prefix.
type Config struct {
	// StoreBaseURL is the document-store endpoint holding one snapshot per
	// user identity.
	StoreBaseURL string `envconfig:"STORE_BASE_URL"`

	// AI backend (generate-content API).
	AIBaseURL string `envconfig:"AI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	AIAPIKey  string `envconfig:"AI_API_KEY"`
	AIModel   string `envconfig:"AI_MODEL" default:"gemini-2.5-flash"`

	// Image search backend for exercise illustrations. Optional; when unset,
	// generated plans simply carry no images.
	ImageSearchBaseURL string `envconfig:"IMAGE_SEARCH_URL"`
	ImageSearchAPIKey  string `envconfig:"IMAGE_SEARCH_KEY"`
}

// LoadConfig reads Config from CALORIEWISE_* environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("CALORIEWISE", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
