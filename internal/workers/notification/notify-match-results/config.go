// internal/workers/notification/notify-match-results/config.go
package notifymatchresults

import "time"

type Config struct {
	Timeout          time.Duration
	DefaultFromEmail string
	SMSSenderID      string
	TopMatches       int
	Templates        Templates
}

func LoadConfig() *Config {
	return &Config{
		Timeout:          30 * time.Second,
		DefaultFromEmail: "noreply@scholarships.example.com",
		SMSSenderID:      "SCHOLAR",
		TopMatches:       5,
		Templates:        DefaultTemplates(),
	}
}
