// internal/workers/ingestion/extract-criteria/config.go
package extractcriteria

import "time"

type Config struct {
	Timeout time.Duration
	UseAI   bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 60 * time.Second,
		UseAI:   true,
	}
}
