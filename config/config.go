package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	AWS      AWSConfig
	ASR      ASRConfig
	Dynamo   DynamoConfig
}

// ServerConfig holds HTTP/TLS server settings.
type ServerConfig struct {
	Port        string
	CORSOrigins string // comma-separated allowlist, or "*" for all
	SSLCertPath string // optional; if set alongside SSLKeyPath, a parallel TLS listener is started
	SSLKeyPath  string
}

// AWSConfig holds the region used for every AWS SDK v2 client (Transcribe
// Streaming, Translate, Polly, DynamoDB). Credentials are resolved through
// the SDK's default chain, not read here.
type AWSConfig struct {
	Region string
}

// ASRConfig selects and configures the streaming recognizer backend.
type ASRConfig struct {
	Provider      string // "deepgram" or "aws"
	DeepgramAPIKey string
}

// DynamoConfig names the meeting-metadata table. If TableName is empty, the
// process falls back to an in-memory Store.
type DynamoConfig struct {
	TableName string
}

// Load reads configuration from the environment, with an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "3001"),
			CORSOrigins: getEnv("CORS_ORIGIN", "*"),
			SSLCertPath: getEnv("SSL_CERT_PATH", ""),
			SSLKeyPath:  getEnv("SSL_KEY_PATH", ""),
		},
		AWS: AWSConfig{
			Region: getEnv("AWS_REGION", "us-east-1"),
		},
		ASR: ASRConfig{
			Provider:       getEnv("ASR_PROVIDER", "deepgram"),
			DeepgramAPIKey: getEnv("DEEPGRAM_API_KEY", ""),
		},
		Dynamo: DynamoConfig{
			TableName: getEnv("DYNAMODB_TABLE_NAME", ""),
		},
	}
	return cfg, nil
}

// ParsedCORSOrigins splits the configured comma-separated allowlist. A single "*"
// entry (the default) means allow all origins.
func (c ServerConfig) ParsedCORSOrigins() []string {
	return splitTrim(c.CORSOrigins, ",")
}

// TLSEnabled reports whether both cert and key paths are configured.
func (c ServerConfig) TLSEnabled() bool {
	return c.SSLCertPath != "" && c.SSLKeyPath != ""
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
