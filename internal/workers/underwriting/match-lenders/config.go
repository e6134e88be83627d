// internal/workers/underwriting/match-lenders/config.go
package matchlenders

import "time"

type Config struct {
	Timeout        time.Duration
	CacheTTL       time.Duration
	MaxConcurrency int
	AuditIndex     string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        30 * time.Second,
		CacheTTL:       5 * time.Minute,
		MaxConcurrency: 8,
		AuditIndex:     "match-results",
	}
}
