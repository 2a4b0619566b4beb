package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Snapshot backends understood by SnapshotConfig.Backend.
const (
	SnapshotBackendFile   = "file"
	SnapshotBackendRedis  = "redis"
	SnapshotBackendMemory = "memory"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Directory DirectoryConfig
	Messaging MessagingConfig
	Snapshot  SnapshotConfig
	Uploads   UploadsConfig
	Exams     ExamsConfig
	Export    ExportConfig
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

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DirectoryConfig toggles the student/teacher/admin CRUD endpoints (requires Postgres).
type DirectoryConfig struct {
	Enabled bool
}

// MessagingConfig toggles the messages and notifications endpoints (requires Postgres).
type MessagingConfig struct {
	Enabled bool
}

// SnapshotConfig selects where timetable, exam and report snapshots are kept between restarts.
type SnapshotConfig struct {
	Backend   string
	Dir       string
	KeyPrefix string
}

// UploadsConfig controls message attachment storage.
type UploadsConfig struct {
	Dir              string
	MaxFileSizeBytes int64
}

// ExamsConfig tunes exam result seeding and aggregation defaults.
type ExamsConfig struct {
	PassThreshold float64
	FixturePath   string
}

// ExportConfig tunes tabular exports.
type ExportConfig struct {
	CSVDelimiter rune
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
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

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Directory = DirectoryConfig{Enabled: v.GetBool("ENABLE_DIRECTORY")}
	cfg.Messaging = MessagingConfig{Enabled: v.GetBool("ENABLE_MESSAGING")}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("SNAPSHOT_BACKEND")))
	switch backend {
	case SnapshotBackendFile, SnapshotBackendRedis, SnapshotBackendMemory:
	default:
		return nil, errors.New("SNAPSHOT_BACKEND must be one of file, redis, memory")
	}
	cfg.Snapshot = SnapshotConfig{
		Backend:   backend,
		Dir:       v.GetString("SNAPSHOT_DIR"),
		KeyPrefix: v.GetString("SNAPSHOT_KEY_PREFIX"),
	}

	maxUpload := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUpload <= 0 {
		maxUpload = 10 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		Dir:              v.GetString("UPLOADS_DIR"),
		MaxFileSizeBytes: maxUpload,
	}

	cfg.Exams = ExamsConfig{
		PassThreshold: v.GetFloat64("EXAMS_PASS_THRESHOLD"),
		FixturePath:   v.GetString("EXAMS_FIXTURE_PATH"),
	}

	cfg.Export = ExportConfig{CSVDelimiter: parseDelimiter(v.GetString("EXPORT_CSV_DELIMITER"))}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "smart_education")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_DIRECTORY", false)
	v.SetDefault("ENABLE_MESSAGING", false)

	v.SetDefault("SNAPSHOT_BACKEND", SnapshotBackendFile)
	v.SetDefault("SNAPSHOT_DIR", "./snapshots")
	v.SetDefault("SNAPSHOT_KEY_PREFIX", "smartedu:snapshot:")

	v.SetDefault("UPLOADS_DIR", "./uploads")
	v.SetDefault("UPLOADS_MAX_FILE_SIZE", 10*1024*1024)

	v.SetDefault("EXAMS_PASS_THRESHOLD", 50)
	v.SetDefault("EXAMS_FIXTURE_PATH", "")

	v.SetDefault("EXPORT_CSV_DELIMITER", ",")
}

func parseDelimiter(raw string) rune {
	switch raw {
	case "", ",":
		return ','
	case "tab", `\t`:
		return '\t'
	}
	return []rune(raw)[0]
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
