package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

// Config holds everything injected at deploy time. Secrets stay opaque here;
// nothing in this struct is ever logged.
type Config struct {
	Port              string `envconfig:"PORT" default:"8080"`
	BaseURL           string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	AllowedOrigin     string `envconfig:"ALLOWED_ORIGIN" default:"http://localhost:5173"`
	AllowRegistration bool   `envconfig:"ALLOW_REGISTRATION" default:"false"`

	DatabaseDSN string `envconfig:"DB_DSN" required:"true"`
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`

	RazorpayKeyID     string `envconfig:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `envconfig:"RAZORPAY_KEY_SECRET"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	SMTPHost     string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	EmailUser    string `envconfig:"EMAIL_USER"`
	EmailPass    string `envconfig:"EMAIL_PASS"`
	ContactInbox string `envconfig:"CONTACT_INBOX"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using process environment")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if cfg.ContactInbox == "" {
		cfg.ContactInbox = cfg.EmailUser
	}
	return &cfg, nil
}
