package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// envFileVar names an alternative dotenv file, e.g. for a deployment
// directory. Defaults to .env in the working directory.
const envFileVar = "CALCULATOR_ENV_FILE"

// loadDotEnv loads variables from the dotenv file when present. Variables
// already set in the process environment win.
func loadDotEnv() error {
	path := os.Getenv(envFileVar)
	if path == "" {
		path = ".env"
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load %s: %w", path, err)
}
