package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv applies .env.local then .env. Variables already set in the
// environment are never overwritten, and .env.local wins over .env.
// It returns the files that were loaded.
func LoadDotEnv() []string {
	var loaded []string
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}
