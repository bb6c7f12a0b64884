package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	MaxUploadMB       int    `mapstructure:"MAX_UPLOAD_MB"`
	AllowedOrigins    string `mapstructure:"ALLOWED_ORIGINS"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// Seed the sample records when the store is empty.
	SeedSampleData bool `mapstructure:"SEED_SAMPLE_DATA"`

	// Fee API the view talks to. Empty means this process.
	FeeAPIURL        string `mapstructure:"FEE_API_URL"`
	SearchDebounceMS int    `mapstructure:"SEARCH_DEBOUNCE_MS"`

	// Browser sessions idle this long are dropped.
	SessionIdleMinutes int `mapstructure:"SESSION_IDLE_MINUTES"`
}

var AppConfig Config

// LoadConfig fills AppConfig from .env, the environment and defaults
func LoadConfig() {
	// .env values land in the process environment before viper reads it.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 600)
	viper.SetDefault("MAX_UPLOAD_MB", 16)
	viper.SetDefault("ALLOWED_ORIGINS", "*")
	viper.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 8)
	viper.SetDefault("SEED_SAMPLE_DATA", true)
	viper.SetDefault("FEE_API_URL", "")
	viper.SetDefault("SEARCH_DEBOUNCE_MS", 300)
	viper.SetDefault("SESSION_IDLE_MINUTES", 30)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Origins splits ALLOWED_ORIGINS on commas
func Origins() []string {
	var out []string
	for _, o := range strings.Split(AppConfig.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
