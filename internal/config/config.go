package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingStore is returned by Validate when the document store is not
// configured. No data operation can run without it.
var ErrMissingStore = errors.New("missing MongoDB env. Add MONGODB_URI and MONGODB_DATABASE to .env and restart the server")

type Config struct {
	HTTPAddr       string
	ServiceName    string
	CORSOrigins    []string
	RequestTimeout time.Duration

	MongoURI      string
	MongoDatabase string
	MongoTimeout  time.Duration
	EnsureIndexes bool

	RedisAddr string
	CacheTTL  time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	LogLevel  string
	LogFormat string
}

func Load() Config {
	return Config{
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		ServiceName:    getenv("SERVICE_NAME", "marketplace-catalog"),
		CORSOrigins:    splitCSV(getenv("CORS_ORIGINS", "http://localhost:3000")),
		RequestTimeout: getduration("REQUEST_TIMEOUT", 10*time.Second),

		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: os.Getenv("MONGODB_DATABASE"),
		MongoTimeout:  getduration("MONGODB_TIMEOUT", 30*time.Second),
		EnsureIndexes: getbool("MONGODB_ENSURE_INDEXES", true),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		CacheTTL:  getduration("CACHE_TTL", 5*time.Minute),

		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "catalog.changes"),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    getenv("CLOUDINARY_FOLDER", "marketplace/products"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "text"),
	}
}

// Validate reports configuration the process cannot start without.
func (c Config) Validate() error {
	if c.MongoURI == "" || c.MongoDatabase == "" {
		return ErrMissingStore
	}
	return nil
}

func (c Config) CacheEnabled() bool { return c.RedisAddr != "" }

func (c Config) EventsEnabled() bool { return len(c.KafkaBrokers) > 0 }

func (c Config) UploadsEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return d
	}
	return def
}

func getbool(k string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(k)); err == nil {
		return b
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
