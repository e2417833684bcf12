package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env     string
	Server  ServerConfig
	Editor  EditorConfig
	Redis   RedisConfig
	Storage StorageConfig
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

type EditorConfig struct {
	CropMinSize     int
	MaxPixels       int
	ResampleFilter  string
	DefaultQuality  float64
	DefaultFilename string
	IdleTimeout     time.Duration
	SmartSeed       bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	MaxFileSize   int64
	CacheDuration time.Duration
	CacheSize     int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the process environment only.
func FromEnv() *Config {
	return &Config{
		Env: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			ReadTimeout:    getDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Editor: EditorConfig{
			CropMinSize:     getEnvAsInt("CROP_MIN_SIZE", 10),
			MaxPixels:       getEnvAsInt("MAX_PIXELS", 50_000_000),
			ResampleFilter:  getEnv("RESAMPLE_FILTER", "lanczos"),
			DefaultQuality:  getEnvAsFloat("DEFAULT_QUALITY", 0.9),
			DefaultFilename: getEnv("DEFAULT_FILENAME", "resized-image"),
			IdleTimeout:     getDuration("EDITOR_IDLE_TIMEOUT", 30*time.Minute),
			SmartSeed:       getEnvAsBool("SMART_SEED", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			MaxFileSize:   getEnvAsInt64("MAX_FILE_SIZE", 30*1024*1024), // 30MB
			CacheDuration: getDuration("CACHE_DURATION", 10*time.Minute),
			CacheSize:     getEnvAsInt("CACHE_SIZE", 64),
		},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsList(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
