package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv reads MINDSET_ENV_FILE, or .env when unset, into the process environment.
// Variables already set win. A missing file is not an error.
func LoadEnv() {
	file := os.Getenv("MINDSET_ENV_FILE")
	if file == "" {
		file = ".env"
	}

	if err := godotenv.Load(file); err != nil {
		Logger.Warn("Error loading ", file, ", will use environment variables instead: ", err)
	}
}
