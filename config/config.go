// config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Case store backends
const (
	StoreMongo     = "mongo"
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

type Config struct {
	Environment string
	Port        string
	DatabaseURL string
	RedisURL    string

	// CaseStore selects the backend for cases and profiles
	CaseStore string

	// Firebase Config
	FirebaseCredentials string
	FirebaseProjectID   string
	PushTopic           string

	// Twilio Config
	TwilioAccountSID      string
	TwilioAuthToken       string
	TwilioPhoneNumber     string
	SMSDefaultTo          string
	SMSDefaultCountryCode string
	SMSRetryAttempts      int
	SMSRetryDelay         time.Duration
	NotifyTimeout         time.Duration

	// Geocoding
	GeocoderURL       string
	GeocoderUserAgent string
	GeocoderTimeout   time.Duration
	GeocodeCacheTTL   time.Duration

	// Places
	GoogleMapsAPIKey string
	PlacesURL        string

	// Symptom checker
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	AdminJWTSecret string
	HospitalsCSV   string
	AllowedOrigins []string

	// Escalation
	EscalationInterval time.Duration
	EscalationAfter    time.Duration

	// App Settings
	RateLimitRequest int
	RateLimitWindow  int // minutes
}

func Load() *Config {
	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "5000"),
		DatabaseURL: getEnv("DATABASE_URL", "mongodb://localhost:27017/lifeline"),
		RedisURL:    getEnv("REDIS_URL", ""),
		CaseStore:   strings.ToLower(getEnv("CASE_STORE", StoreMongo)),

		// Firebase
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		FirebaseProjectID:   getEnv("FIREBASE_PROJECT_ID", ""),
		PushTopic:           getEnv("PUSH_TOPIC", "triage"),

		// Twilio
		TwilioAccountSID:      getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:       getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber:     getEnv("TWILIO_PHONE_NUMBER", ""),
		SMSDefaultTo:          getEnv("SMS_DEFAULT_TO", ""),
		SMSDefaultCountryCode: getEnv("SMS_DEFAULT_COUNTRY_CODE", "91"),
		SMSRetryAttempts:      getEnvAsInt("SMS_RETRY_ATTEMPTS", 3),
		SMSRetryDelay:         getEnvAsDuration("SMS_RETRY_DELAY", 500*time.Millisecond),
		NotifyTimeout:         getEnvAsDuration("NOTIFY_TIMEOUT", 60*time.Second),

		// Geocoding
		GeocoderURL:       getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: getEnv("GEOCODER_USER_AGENT", "lifeline-sos/1.0"),
		GeocoderTimeout:   getEnvAsDuration("GEOCODER_TIMEOUT", 5*time.Second),
		GeocodeCacheTTL:   getEnvAsDuration("GEOCODE_CACHE_TTL", 24*time.Hour),

		// Places
		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		PlacesURL:        getEnv("PLACES_URL", "https://maps.googleapis.com/maps/api/place"),

		// LLM
		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMBaseURL: getEnv("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:   getEnv("LLM_MODEL", "gemini-1.5-flash"),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		HospitalsCSV:   getEnv("HOSPITALS_CSV", ""),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		EscalationInterval: getEnvAsDuration("ESCALATION_INTERVAL", 30*time.Second),
		EscalationAfter:    getEnvAsDuration("ESCALATION_AFTER", 5*time.Minute),

		// App Settings
		RateLimitRequest: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:  getEnvAsInt("RATE_LIMIT_WINDOW_MINUTES", 1),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// InitRedis returns nil when no Redis URL is configured. Callers treat a nil
// client as "single instance, no cache".
func InitRedis(cfg *Config) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Warnf("Invalid REDIS_URL, falling back to localhost: %v", err)
		opt = &redis.Options{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}
	}

	client := redis.NewClient(opt)
	return client
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("500ms") or bare seconds ("30").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	logrus.Warnf("Ignoring invalid duration %s=%q", key, value)
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
