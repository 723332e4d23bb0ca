// internal/workers/data-access/search-scholarships/config.go
package searchscholarships

import "time"

type Config struct {
	Timeout      time.Duration
	DefaultIndex string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		DefaultIndex: "scholarships",
	}
}
