package testutil

import (
	"os"
	"strconv"

	"github.com/pthm/irisql/internal/cli"
)

// DefaultImage is the IRIS image started when no database is configured.
const DefaultImage = "intersystemsdc/iris-community:latest"

// DatabaseConfig holds configuration for connecting to an IRIS instance.
type DatabaseConfig struct {
	URL            string
	Image          string
	User           string
	Password       string
	Namespace      string
	MaxConnections int
}

// GetDatabaseConfig reads database configuration from environment variables.
// If IRISQL_TEST_URL is set, it returns configuration for a remote instance.
// Otherwise the credentials describe the container testcontainers starts.
func GetDatabaseConfig() DatabaseConfig {
	cfg := DatabaseConfig{
		URL:            os.Getenv("IRISQL_TEST_URL"),
		Image:          getEnv("IRIS_IMAGE", DefaultImage),
		User:           getEnv("IRIS_USERNAME", "_SYSTEM"),
		Password:       getEnv("IRIS_PASSWORD", "SYS"),
		Namespace:      getEnv("IRIS_NAMESPACE", "USER"),
		MaxConnections: getEnvInt("IRISQL_TEST_MAX_CONNS", 10),
	}

	// Check for individual components
	if host := os.Getenv("IRISQL_TEST_HOST"); host != "" && cfg.URL == "" {
		cfg.URL, _ = cfg.DSN(host, getEnvInt("IRISQL_TEST_PORT", 1972))
	}
	return cfg
}

// DSN builds the connection string for host and port with the configured
// credentials and namespace.
func (c DatabaseConfig) DSN(host string, port int) (string, error) {
	return c.dsnFor(host, port, c.Namespace)
}

func (c DatabaseConfig) dsnFor(host string, port int, namespace string) (string, error) {
	conf := cli.Config{Database: cli.DatabaseConfig{
		Host:      host,
		Port:      port,
		Namespace: namespace,
		User:      c.User,
		Password:  c.Password,
	}}
	return conf.DSN()
}

// getEnv gets an environment variable with a fallback default value.
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt gets an integer environment variable with a fallback default value.
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}
