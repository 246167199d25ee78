package config

import (
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_PATH", "OUTPUT_PATH", "UPLOAD_PATH", "CORS_ORIGINS", "MAX_UPLOAD_MB",
		"TRANSLATE_ENGINE", "SOURCE_LANG", "PARSE_POLICY", "TRANSLATE_CONCURRENCY", "OPENAI_API_KEY"} {
		t.Setenv(k, "")
	}
	t.Setenv("DATA_PATH", "/srv/srt")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := Load()
	if cfg.Port != 8080 || cfg.JWTSecret != "s3cret" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.DBPath != filepath.Join("/srv/srt", "srtstudio.db") || cfg.OutputPath != filepath.Join("/srv/srt", "outputs") {
		t.Errorf("paths = %s, %s", cfg.DBPath, cfg.OutputPath)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("cors = %v", cfg.CORSOrigins)
	}
	if cfg.MaxUploadBytes() != 16<<20 || cfg.Translation.Concurrency != 1 {
		t.Errorf("limits = %d, %d", cfg.MaxUploadBytes(), cfg.Translation.Concurrency)
	}
	if tr := cfg.Translation; tr.Engine != "openai" || tr.SourceLang != "ko" || tr.ParsePolicy != "abort" {
		t.Errorf("translation = %+v", tr)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("MAX_UPLOAD_MB", "4")
	t.Setenv("TRANSLATE_CONCURRENCY", "-2")
	t.Setenv("PARSE_POLICY", "skip")

	cfg := Load()
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors = %v", cfg.CORSOrigins)
	}
	if cfg.MaxUploadMB != 4 {
		t.Errorf("max upload = %d", cfg.MaxUploadMB)
	}
	if cfg.Translation.Concurrency != 1 {
		t.Errorf("invalid concurrency should fall back, got %d", cfg.Translation.Concurrency)
	}
	if cfg.Translation.ParsePolicy != "skip" {
		t.Errorf("policy = %s", cfg.Translation.ParsePolicy)
	}
}
