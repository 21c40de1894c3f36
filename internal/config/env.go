package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// FromEnv overlays IMSGX_* environment variables onto cfg. A .env file in
// the working directory is loaded first; already-exported variables win over
// file entries, which is godotenv's default.
func FromEnv(cfg *Config) {
	_ = godotenv.Load()

	cfg.SourcePath = getEnvString("IMSGX_SOURCE", cfg.SourcePath)
	cfg.ExportPath = getEnvString("IMSGX_EXPORT", cfg.ExportPath)
	cfg.Format = getEnvString("IMSGX_FORMAT", cfg.Format)
	cfg.Platform = getEnvString("IMSGX_PLATFORM", cfg.Platform)
	cfg.StartDate = getEnvString("IMSGX_START", cfg.StartDate)
	cfg.EndDate = getEnvString("IMSGX_END", cfg.EndDate)
	cfg.CopyMode = getEnvString("IMSGX_COPY", cfg.CopyMode)
	cfg.AttachmentRoot = getEnvString("IMSGX_ATTACHMENT_ROOT", cfg.AttachmentRoot)
	cfg.SelfName = getEnvString("IMSGX_SELF_NAME", cfg.SelfName)
	cfg.Conversation = getEnvString("IMSGX_CONVERSATION", cfg.Conversation)
	cfg.Diagnostics = getEnvBool("IMSGX_DIAGNOSTICS", cfg.Diagnostics)
	cfg.Quiet = getEnvBool("IMSGX_QUIET", cfg.Quiet)
}

func getEnvString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
