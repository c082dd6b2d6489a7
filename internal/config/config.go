package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Classifier ClassifierConfig
	OAuth      OAuthConfig
	Mail       MailConfig
	Uploads    UploadConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret          string
	JWTIssuer          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	VerifyTokenTTL     time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
}

// ClassifierConfig configures the external text classifier. Temperature is
// kept near zero and the timeout short: a slow or dead endpoint must degrade
// to the keyword fallback, not stall expense creation.
type ClassifierConfig struct {
	BaseURL            string
	Model              string
	Timeout            time.Duration
	Temperature        float64
	TopP               float64
	RateLimitPerMinute int
	RateLimitBurst     int
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	RedirectURL        string
}

type MailConfig struct {
	SMTPHost      string
	SMTPPort      int
	Username      string
	Password      string
	From          string
	VerifyURLBase string
}

type UploadConfig struct {
	Dir string
}

// Load reads the application configuration from the environment and .env.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	serverPort, err := parseIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return cfg, err
	}

	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:         getEnv("SERVER_HOST", "0.0.0.0"),
		Port:         serverPort,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	dbPort, err := parseIntEnv("DB_PORT", 5432)
	if err != nil {
		return cfg, err
	}

	maxOpenConns, err := parseIntEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return cfg, err
	}

	maxIdleConns, err := parseIntEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return cfg, err
	}

	connMaxIdleTime, err := parseDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute)
	if err != nil {
		return cfg, err
	}

	connMaxLifetime, err := parseDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return cfg, err
	}

	cfg.Database = DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "splitmyexpenses"),
		Password:        getEnv("DB_PASSWORD", "splitmyexpenses"),
		Name:            getEnv("DB_NAME", "splitmyexpenses"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxIdleTime: connMaxIdleTime,
		ConnMaxLifetime: connMaxLifetime,
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return cfg, err
	}

	refreshTTL, err := parseDurationEnv("JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return cfg, err
	}

	verifyTTL, err := parseDurationEnv("JWT_VERIFY_TTL", 48*time.Hour)
	if err != nil {
		return cfg, err
	}

	rateLimitPerMinute, err := parseIntEnv("AUTH_RATE_LIMIT_PER_MINUTE", 60)
	if err != nil {
		return cfg, err
	}

	rateLimitBurst, err := parseIntEnv("AUTH_RATE_LIMIT_BURST", 10)
	if err != nil {
		return cfg, err
	}

	cfg.Auth = AuthConfig{
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "splitmyexpenses"),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
		VerifyTokenTTL:     verifyTTL,
		RateLimitPerMinute: rateLimitPerMinute,
		RateLimitBurst:     rateLimitBurst,
	}

	classifierTimeout, err := parseDurationEnv("CLASSIFIER_TIMEOUT", 10*time.Second)
	if err != nil {
		return cfg, err
	}

	temperature, err := parseFloatEnv("CLASSIFIER_TEMPERATURE", 0.1)
	if err != nil {
		return cfg, err
	}

	topP, err := parseFloatEnv("CLASSIFIER_TOP_P", 0.9)
	if err != nil {
		return cfg, err
	}

	classifierRateLimitPerMinute, err := parseIntEnv("CLASSIFIER_RATE_LIMIT_PER_MINUTE", 30)
	if err != nil {
		return cfg, err
	}

	classifierRateLimitBurst, err := parseIntEnv("CLASSIFIER_RATE_LIMIT_BURST", 10)
	if err != nil {
		return cfg, err
	}

	cfg.Classifier = ClassifierConfig{
		BaseURL:            getEnv("CLASSIFIER_BASE_URL", "http://localhost:11434"),
		Model:              getEnv("CLASSIFIER_MODEL", "llama3.2"),
		Timeout:            classifierTimeout,
		Temperature:        temperature,
		TopP:               topP,
		RateLimitPerMinute: classifierRateLimitPerMinute,
		RateLimitBurst:     classifierRateLimitBurst,
	}

	cfg.OAuth = OAuthConfig{
		GoogleClientID:     getEnv("GOOGLE_OAUTH_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_OAUTH_CLIENT_SECRET", ""),
		RedirectURL:        getEnv("GOOGLE_OAUTH_REDIRECT_URL", ""),
	}

	smtpPort, err := parseIntEnv("SMTP_PORT", 587)
	if err != nil {
		return cfg, err
	}

	cfg.Mail = MailConfig{
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      smtpPort,
		Username:      getEnv("SMTP_USERNAME", ""),
		Password:      getEnv("SMTP_PASSWORD", ""),
		From:          getEnv("MAIL_FROM", "no-reply@splitmyexpenses.local"),
		VerifyURLBase: getEnv("MAIL_VERIFY_URL_BASE", "http://localhost:3000/verify-email"),
	}

	cfg.Uploads = UploadConfig{
		Dir: getEnv("UPLOAD_DIR", "uploads"),
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	user := url.UserPassword(c.User, c.Password)
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	return dsn.String() + "?" + query.Encode()
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be greater than 0")
	}

	if c.Auth.RefreshTokenTTL <= 0 {
		return fmt.Errorf("JWT_REFRESH_TTL must be greater than 0")
	}

	if c.Auth.RateLimitPerMinute <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT_PER_MINUTE must be greater than 0")
	}

	if c.Auth.RateLimitBurst <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT_BURST must be greater than 0")
	}

	if c.Classifier.BaseURL == "" {
		return fmt.Errorf("CLASSIFIER_BASE_URL is required")
	}

	if c.Classifier.Model == "" {
		return fmt.Errorf("CLASSIFIER_MODEL is required")
	}

	if c.Classifier.Timeout <= 0 {
		return fmt.Errorf("CLASSIFIER_TIMEOUT must be greater than 0")
	}

	if c.Classifier.Temperature < 0 || c.Classifier.Temperature > 1 {
		return fmt.Errorf("CLASSIFIER_TEMPERATURE must be within [0, 1]")
	}

	if c.Classifier.TopP <= 0 || c.Classifier.TopP > 1 {
		return fmt.Errorf("CLASSIFIER_TOP_P must be within (0, 1]")
	}

	if c.Classifier.RateLimitPerMinute <= 0 {
		return fmt.Errorf("CLASSIFIER_RATE_LIMIT_PER_MINUTE must be greater than 0")
	}

	if c.Classifier.RateLimitBurst <= 0 {
		return fmt.Errorf("CLASSIFIER_RATE_LIMIT_BURST must be greater than 0")
	}

	if c.Uploads.Dir == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseFloatEnv(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
