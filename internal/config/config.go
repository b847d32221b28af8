package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Ollama   OllamaConfig   `mapstructure:"ollama"`
	Groq     GroqConfig     `mapstructure:"groq"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	AI       AIConfig       `mapstructure:"ai"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Guest    GuestConfig    `mapstructure:"guest"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	ExposeHeaders    []string `mapstructure:"expose_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type OllamaConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type GroqConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// AIConfig drives provider selection. Provider is an explicit override
// ("ollama", "groq" or "gemini"); when empty the production flag and the
// presence of a Groq credential decide.
type AIConfig struct {
	Provider   string `mapstructure:"provider"`
	Production bool   `mapstructure:"production"`
}

type JWTConfig struct {
	SecretKey   string        `mapstructure:"secret_key"`
	ExpiryHours time.Duration `mapstructure:"expiry_hours"`
}

type GuestConfig struct {
	Limit int `mapstructure:"limit"`
}

func LoadConfig(configPath string, envPath string) (*Config, error) {
	// .env is optional; deployments that configure through real environment
	// variables run without one.
	if err := godotenv.Load(envPath); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		log.Printf("no env file at %s, using process environment", envPath)
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	bindEnvKeys()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	return &config, nil
}

// bindEnvKeys maps the environment names the deployment scripts use onto the
// config tree so either source works.
func bindEnvKeys() {
	_ = viper.BindEnv("ollama.base_url", "OLLAMA_BASE_URL")
	_ = viper.BindEnv("groq.api_key", "GROQ_API_KEY")
	_ = viper.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	_ = viper.BindEnv("ai.provider", "AI_PROVIDER")
	_ = viper.BindEnv("database.url", "DATABASE_URL")
	_ = viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.JWT.ExpiryHours == 0 {
		cfg.JWT.ExpiryHours = 24
	}
	if cfg.Guest.Limit == 0 {
		cfg.Guest.Limit = 10
	}
	if os.Getenv("APP_ENV") == "production" {
		cfg.AI.Production = true
	}
}
