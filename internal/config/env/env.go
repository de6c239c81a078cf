package env

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads the first existing dotenv files for the current environment.
// Variables already present in the process environment are never overridden.
// It returns the files that were loaded.
func LoadEnv() ([]string, error) {
	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	candidates := []string{
		fmt.Sprintf(".env.%s", env),
		".env",
	}

	var loaded []string
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("error loading env file %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}

	return loaded, nil
}
