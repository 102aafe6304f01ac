package util

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the static configuration of the server, loaded once at startup.
// Every value comes from the .env file, with a plain environment variable
// fallback when the file is absent (the container path).
type Config struct {
	// Server
	ServerAddr string
	BaseURL    string // Public base URL, used to build Stripe redirect URLs

	// Storage
	MongoURI  string
	DbName    string
	RedisAddr string

	// Auth
	SecretKey       []byte
	TokenExpiration time.Duration

	// Stripe
	StripeSecretKey string

	// Cloudinary
	CloudName   string
	CloudKey    string
	CloudSecret string

	// Platform email and its app password, used for attendee notifications
	Email       string
	AppPassword string
}

// LoadConfig reads the .env file at path. A missing file is not fatal: the
// values are still resolved from the process environment.
func LoadConfig(path string) *Config {
	if err := godotenv.Load(path); err != nil {
		LOGGER.Warn("No .env file found, falling back to environment", "path", path)
	}

	tokenExpiration := 24 * time.Hour
	if raw := os.Getenv("TOKEN_EXPIRATION"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			tokenExpiration = parsed
		} else {
			LOGGER.Warn("Invalid TOKEN_EXPIRATION, using default", "value", raw)
		}
	}

	return &Config{
		ServerAddr:      getEnv("SERVER_ADDR", ":8080"),
		BaseURL:         getEnv("BASE_URL", "http://localhost:8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		DbName:          getEnv("DB_NAME", "events_api"),
		RedisAddr:       getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		SecretKey:       []byte(os.Getenv("SECRET_KEY")),
		TokenExpiration: tokenExpiration,
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		CloudName:       os.Getenv("CLOUD_NAME"),
		CloudKey:        os.Getenv("CLOUD_KEY"),
		CloudSecret:     os.Getenv("CLOUD_SECRET"),
		Email:           os.Getenv("PLATFORM_EMAIL"),
		AppPassword:     os.Getenv("PLATFORM_EMAIL_APP_PASSWORD"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
