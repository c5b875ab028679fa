package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const (
	ENV_NO_COLOR = "NO_COLOR"
	// ENV_ENV_FILE points at a dotenv file with MONGOTEST_* variables.
	ENV_ENV_FILE = "MONGOTEST_ENV_FILE"

	envVarPrefix   = "MONGOTEST"
	defaultEnvFile = ".env"
)

// loadEnvFile loads the dotenv file named by MONGOTEST_ENV_FILE, or ./.env. Variables already
// set in the environment win. A missing default file is not an error.
func loadEnvFile() error {
	path := envOr(ENV_ENV_FILE, "")
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

// envOr returns os.Getenv(key) if set, or else default.
func envOr(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		val = def
	}
	return val
}
