package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ServerEnv holds server overrides taken from the environment.
type ServerEnv struct {
	Addr   string
	DBPath string
}

// LoadServerEnv loads envFile into the process environment when it exists
// and reads PORT, TYPIST_ADDR and TYPIST_DB. TYPIST_ADDR wins over PORT.
func LoadServerEnv(envFile string) (ServerEnv, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return ServerEnv{}, err
		}
	}
	var env ServerEnv
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		env.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	if addr := strings.TrimSpace(os.Getenv("TYPIST_ADDR")); addr != "" {
		env.Addr = addr
	}
	env.DBPath = strings.TrimSpace(os.Getenv("TYPIST_DB"))
	return env, nil
}
