package config

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// loadDotenv loads the project .env once; absent files fall back to plain
// environment variables.
func loadDotenv() {
	dotenvOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		rootDir := filepath.Dir(filepath.Dir(filename))
		envPath := filepath.Join(rootDir, ".env")

		if err := godotenv.Load(envPath); err != nil {
			if !os.IsNotExist(err) {
				log.Printf("Warning: could not load .env at %s: %v", envPath, err)
			}
		}
	})
}
