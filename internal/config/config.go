package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Port          int
	DataPath      string
	DBPath        string
	OutputPath    string
	UploadPath    string
	JWTSecret     string
	AdminUsername string
	AdminPassword string
	CORSOrigins   []string
	MaxUploadMB   int64
	Translation   Translation
}

// Translation holds the settings shared by the server and the CLI
type Translation struct {
	OpenAIKey   string
	GeminiKey   string
	DeepLKey    string
	Engine      string
	SourceLang  string
	ParsePolicy string
	Concurrency int // languages translated at once
}

// LoadTranslation reads the translation settings from the environment
func LoadTranslation() Translation {
	return Translation{
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		GeminiKey:   os.Getenv("GEMINI_API_KEY"),
		DeepLKey:    os.Getenv("DEEPL_API_KEY"),
		Engine:      getEnv("TRANSLATE_ENGINE", "openai"),
		SourceLang:  getEnv("SOURCE_LANG", "ko"),
		ParsePolicy: getEnv("PARSE_POLICY", "abort"),
		Concurrency: getEnvInt("TRANSLATE_CONCURRENCY", 1),
	}
}

func Load() *Config {
	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	dataPath := getEnv("DATA_PATH", "/data")

	// JWT secret: require explicit setting or generate random
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			log.Fatalf("Failed to generate random JWT secret: %v", err)
		}
		jwtSecret = hex.EncodeToString(b)
		log.Println("WARNING: JWT_SECRET not set, using random secret. Sessions will not survive restarts. Set JWT_SECRET env var for persistent sessions.")
	}

	// CORS origins: comma-separated list or "*" (default)
	corsOrigins := splitList(os.Getenv("CORS_ORIGINS"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	return &Config{
		Port:          port,
		DataPath:      dataPath,
		DBPath:        getEnv("DB_PATH", filepath.Join(dataPath, "srtstudio.db")),
		OutputPath:    getEnv("OUTPUT_PATH", filepath.Join(dataPath, "outputs")),
		UploadPath:    getEnv("UPLOAD_PATH", filepath.Join(dataPath, "uploads")),
		JWTSecret:     jwtSecret,
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		CORSOrigins:   corsOrigins,
		MaxUploadMB:   int64(getEnvInt("MAX_UPLOAD_MB", 16)),
		Translation:   LoadTranslation(),
	}
}

// MaxUploadBytes is MaxUploadMB in bytes
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("WARNING: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
