// internal/workers/matching/rank-scholarships/config.go
package rankscholarships

import "time"

type Config struct {
	Timeout         time.Duration
	CatalogCacheTTL time.Duration
	ProfileCacheTTL time.Duration
	MaxScholarships int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		CatalogCacheTTL: 5 * time.Minute,
		ProfileCacheTTL: 10 * time.Minute,
		MaxScholarships: 500,
	}
}
