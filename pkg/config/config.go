package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	Auth        AuthConfig
	CORS        CORSConfig
	Log         LogConfig
	Classroom   ClassroomConfig
	Screenshots ScreenshotsConfig
	Moodle      MoodleConfig
	Suggestions SuggestionsConfig
	Snapshot    SnapshotConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig secures the group-management endpoints.
type AuthConfig struct {
	AdminPasswordHash string
	JWTSecret         string
	JWTExpiration     time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ClassroomConfig describes the physical room being tracked.
// LessonsSchedule is a comma-separated list of "HH:MM-HH:MM" slots; slot 0 is
// the pre-lesson homeroom window and slots 1..N are the daily lessons.
type ClassroomConfig struct {
	ID              string
	SeatCount       int
	LessonsSchedule string
}

// ScreenshotsConfig tunes the retention engine.
type ScreenshotsConfig struct {
	StorageDir        string
	RecentKeep        int
	ThinInterval      time.Duration
	MaxAge            time.Duration
	CompressThreshold int64
	JPEGQuality       int
	AsyncRetention    bool
	WorkerConcurrency int
}

// MoodleConfig points at the external LMS userkey webservice.
type MoodleConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// SuggestionsConfig drives the frequent-occupant lookup on login kiosks.
type SuggestionsConfig struct {
	Lookback time.Duration
	Limit    int
	CacheTTL time.Duration
}

// SnapshotConfig governs room-snapshot caching.
type SnapshotConfig struct {
	CacheTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTExpiration:     parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Classroom = ClassroomConfig{
		ID:              v.GetString("CLASSROOM_ID"),
		SeatCount:       v.GetInt("CLASSROOM_SEAT_COUNT"),
		LessonsSchedule: v.GetString("LESSONS_SCHEDULE"),
	}

	cfg.Screenshots = ScreenshotsConfig{
		StorageDir:        v.GetString("SCREENSHOTS_STORAGE_DIR"),
		RecentKeep:        v.GetInt("SCREENSHOTS_RECENT_KEEP"),
		ThinInterval:      parseDuration(v.GetString("SCREENSHOTS_THIN_INTERVAL"), 15*time.Minute),
		MaxAge:            parseDuration(v.GetString("SCREENSHOTS_MAX_AGE"), 365*24*time.Hour),
		CompressThreshold: v.GetInt64("SCREENSHOTS_COMPRESS_THRESHOLD"),
		JPEGQuality:       v.GetInt("SCREENSHOTS_JPEG_QUALITY"),
		AsyncRetention:    v.GetBool("SCREENSHOTS_ASYNC_RETENTION"),
		WorkerConcurrency: v.GetInt("SCREENSHOTS_WORKER_CONCURRENCY"),
	}

	cfg.Moodle = MoodleConfig{
		BaseURL: v.GetString("MOODLE_URL"),
		Token:   v.GetString("MOODLE_TOKEN"),
		Timeout: parseDuration(v.GetString("MOODLE_TIMEOUT"), 10*time.Second),
	}

	cfg.Suggestions = SuggestionsConfig{
		Lookback: parseDuration(v.GetString("SUGGESTIONS_LOOKBACK"), 90*24*time.Hour),
		Limit:    v.GetInt("SUGGESTIONS_LIMIT"),
		CacheTTL: parseDuration(v.GetString("SUGGESTIONS_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Snapshot = SnapshotConfig{
		CacheTTL: parseDuration(v.GetString("SNAPSHOT_CACHE_TTL"), 30*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "roster")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CLASSROOM_ID", "329")
	v.SetDefault("CLASSROOM_SEAT_COUNT", 18)
	v.SetDefault("LESSONS_SCHEDULE",
		"08:00-08:30,09:00-09:45,09:55-10:40,10:50-11:35,11:55-12:40,13:00-13:45,13:55-14:40,14:50-15:35,15:45-16:30")

	v.SetDefault("SCREENSHOTS_STORAGE_DIR", "./data/screenshots")
	v.SetDefault("SCREENSHOTS_RECENT_KEEP", 100)
	v.SetDefault("SCREENSHOTS_THIN_INTERVAL", "15m")
	v.SetDefault("SCREENSHOTS_MAX_AGE", "8760h")
	v.SetDefault("SCREENSHOTS_COMPRESS_THRESHOLD", 50*1024)
	v.SetDefault("SCREENSHOTS_JPEG_QUALITY", 85)
	v.SetDefault("SCREENSHOTS_ASYNC_RETENTION", false)
	v.SetDefault("SCREENSHOTS_WORKER_CONCURRENCY", 1)

	v.SetDefault("MOODLE_URL", "")
	v.SetDefault("MOODLE_TOKEN", "")
	v.SetDefault("MOODLE_TIMEOUT", "10s")

	v.SetDefault("SUGGESTIONS_LOOKBACK", "2160h")
	v.SetDefault("SUGGESTIONS_LIMIT", 3)
	v.SetDefault("SUGGESTIONS_CACHE_TTL", "10m")

	v.SetDefault("SNAPSHOT_CACHE_TTL", "30s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
