package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort     string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Upload storage
	UploadDir       string
	UploadMaxSizeMB int
	// Session tokens
	TokenTTLHours int
	// Rate limiting on the auth group
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Redis for signup anti-abuse counters
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Signup anti-abuse
	SignupMaxPerIPPerDay        int
	SignupAttemptCooldownSec    int
	SignupFailedMaxPerIPPerHour int
	SignupTempBanMinutes        int
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// loadJSONConfig reads a flat JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // missing file is fine
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	setString := func(key string, dst *string) {
		if v, ok := raw[key].(string); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := raw[key].(float64); ok {
			*dst = int(v)
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := raw[key].(bool); ok {
			*dst = v
		}
	}

	setString("app_port", &out.AppPort)
	setString("database_uri", &out.DatabaseURI)
	setString("db_host", &out.DBHost)
	setString("db_port", &out.DBPort)
	setString("db_user", &out.DBUser)
	setString("db_password", &out.DBPassword)
	setString("db_name", &out.DBName)
	setString("upload_dir", &out.UploadDir)
	setInt("upload_max_size_mb", &out.UploadMaxSizeMB)
	setInt("token_ttl_hours", &out.TokenTTLHours)
	setInt("rate_limit_per_minute", &out.RateLimitPerMinute)
	setString("gin_mode", &out.GinMode)
	setString("gin_path", &out.GinPath)
	setString("redis_host", &out.RedisHost)
	setInt("redis_port", &out.RedisPort)
	setInt("redis_db", &out.RedisDB)
	setString("redis_password", &out.RedisPassword)
	setString("log_level", &out.LogLevel)
	setString("log_path", &out.LogPath)
	setInt("log_max_size_mb", &out.LogMaxSizeMB)
	setInt("log_max_backups", &out.LogMaxBackups)
	setInt("log_max_age_days", &out.LogMaxAgeDays)
	setBool("log_compress", &out.LogCompress)
	setInt("signup_max_per_ip_per_day", &out.SignupMaxPerIPPerDay)
	setInt("signup_attempt_cooldown_sec", &out.SignupAttemptCooldownSec)
	setInt("signup_failed_max_per_ip_per_hour", &out.SignupFailedMaxPerIPPerHour)
	setInt("signup_temp_ban_minutes", &out.SignupTempBanMinutes)

	if v, ok := raw["allowed_origins"].([]any); ok {
		var origins []string
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				origins = append(origins, strings.TrimSpace(s))
			}
		}
		if len(origins) > 0 {
			out.AllowedOrigins = origins
		}
	}

	return nil
}

func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "3000"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "gallery"
	}
	if c.DBName == "" {
		c.DBName = "gallery"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.UploadMaxSizeMB <= 0 {
		c.UploadMaxSizeMB = 50
	}
	if c.TokenTTLHours <= 0 {
		c.TokenTTLHours = 24
	}
	if c.RateLimitPerMinute <= 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = filepath.Join("logs", "gin.log")
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogPath == "" {
		c.LogPath = filepath.Join("logs", "app.log")
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.SignupAttemptCooldownSec == 0 {
		c.SignupAttemptCooldownSec = 5
	}
	if c.SignupFailedMaxPerIPPerHour == 0 {
		c.SignupFailedMaxPerIPPerHour = 20
	}
	if c.SignupTempBanMinutes == 0 {
		c.SignupTempBanMinutes = 60
	}
}

func applyEnvOverrides(c *AppConfig) {
	c.AppPort = getEnv("APP_PORT", c.AppPort)
	c.DatabaseURI = getEnv("DATABASE_URI", c.DatabaseURI)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.UploadDir = getEnv("UPLOAD_DIR", c.UploadDir)
	c.UploadMaxSizeMB = getEnvInt("UPLOAD_MAX_SIZE_MB", c.UploadMaxSizeMB)
	c.TokenTTLHours = getEnvInt("TOKEN_TTL_HOURS", c.TokenTTLHours)
	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
	c.AllowedOrigins = readListEnv("ALLOWED_ORIGINS", c.AllowedOrigins)
	c.GinMode = getEnv("GIN_MODE", c.GinMode)
	c.GinPath = getEnv("GIN_PATH", c.GinPath)
	c.RedisHost = getEnv("REDIS_HOST", c.RedisHost)
	c.RedisPort = getEnvInt("REDIS_PORT", c.RedisPort)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogPath = getEnv("LOG_PATH", c.LogPath)
	c.LogMaxSizeMB = getEnvInt("LOG_MAX_SIZE_MB", c.LogMaxSizeMB)
	c.LogMaxBackups = getEnvInt("LOG_MAX_BACKUPS", c.LogMaxBackups)
	c.LogMaxAgeDays = getEnvInt("LOG_MAX_AGE_DAYS", c.LogMaxAgeDays)
	c.LogCompress = getEnvBool("LOG_COMPRESS", c.LogCompress)
	c.SignupMaxPerIPPerDay = getEnvInt("SIGNUP_MAX_PER_IP_PER_DAY", c.SignupMaxPerIPPerDay)
	c.SignupAttemptCooldownSec = getEnvInt("SIGNUP_ATTEMPT_COOLDOWN_SEC", c.SignupAttemptCooldownSec)
	c.SignupFailedMaxPerIPPerHour = getEnvInt("SIGNUP_FAILED_MAX_PER_IP_PER_HOUR", c.SignupFailedMaxPerIPPerHour)
	c.SignupTempBanMinutes = getEnvInt("SIGNUP_TEMP_BAN_MINUTES", c.SignupTempBanMinutes)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func readListEnv(key string, defaults []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaults
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaults
	}
	return out
}
