package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"employee-records/internal/auth"
)

const (
	minBcryptCost = 4
	maxBcryptCost = 31
)

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerReadTimeout       time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration
	DatabaseURL             string
	DBMaxConns              int32
	DBMinConns              int32
	AutoMigrate             bool
	JWTSecret               string
	JWTIssuer               string
	JWTAudience             string
	JWTExpiry               time.Duration
	CookieName              string
	CookieSecure            bool
	BcryptCost              int
	CORSOrigins             []string
	TrustedProxies          []netip.Prefix
	RateLimitRPM            int
	LoginRateLimitRPM       int
	LogLevel                string
	LogFormat               string
	MetricsEnabled          bool

	trustedProxiesErr error
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	cfg := Parse()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse reads the configuration without validating it. Maintenance
// commands use it together with ValidateDatabase.
func Parse() *Config {
	_ = godotenv.Load()

	proxies, proxiesErr := parsePrefixes(splitCSV(os.Getenv("TRUSTED_PROXIES")))

	return &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 5*time.Second),
		ServerReadTimeout:       getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:              int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:              int32(getInt("DB_MIN_CONNS", 1)),
		AutoMigrate:             getBool("AUTO_MIGRATE", false),
		JWTSecret:               strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:               getEnv("JWT_ISSUER", "employee-records"),
		JWTAudience:             getEnv("JWT_AUDIENCE", "employee-records-web"),
		JWTExpiry:               tokenExpiry(),
		CookieName:              getEnv("COOKIE_NAME", auth.DefaultCookieName),
		CookieSecure:            !getBool("COOKIE_INSECURE", false),
		BcryptCost:              getInt("BCRYPT_COST", 10),
		CORSOrigins:             splitCSV(os.Getenv("CORS_ORIGINS")),
		TrustedProxies:          proxies,
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 300),
		LoginRateLimitRPM:       getInt("LOGIN_RATE_LIMIT_RPM", 10),
		LogLevel:                strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:               strings.ToLower(getEnv("LOG_FORMAT", "pretty")),
		MetricsEnabled:          getBool("METRICS_ENABLED", true),
		trustedProxiesErr:       proxiesErr,
	}
}

func (c *Config) ValidateDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.BcryptCost < minBcryptCost || c.BcryptCost > maxBcryptCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", minBcryptCost, maxBcryptCost)
	}

	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if strings.TrimSpace(c.JWTIssuer) == "" || strings.TrimSpace(c.JWTAudience) == "" {
		return fmt.Errorf("JWT_ISSUER and JWT_AUDIENCE cannot be empty")
	}

	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive")
	}

	if err := c.ValidateDatabase(); err != nil {
		return err
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.LogFormat != "pretty" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be pretty or json")
	}

	if c.trustedProxiesErr != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", c.trustedProxiesErr)
	}

	return nil
}

func (c *Config) TokenConfig() auth.TokenConfig {
	return auth.TokenConfig{
		SigningKey: c.JWTSecret,
		Issuer:     c.JWTIssuer,
		Audience:   c.JWTAudience,
		TTL:        c.JWTExpiry,
	}
}

// tokenExpiry prefers JWT_EXPIRY and falls back to whole days from
// JWT_EXPIRE_DAYS.
func tokenExpiry() time.Duration {
	if raw := strings.TrimSpace(os.Getenv("JWT_EXPIRY")); raw != "" {
		return getDuration("JWT_EXPIRY", 0)
	}

	if days := getInt("JWT_EXPIRE_DAYS", 0); days > 0 {
		return time.Duration(days) * 24 * time.Hour
	}

	return 24 * time.Hour
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}

// parsePrefixes accepts bare addresses and CIDR ranges.
func parsePrefixes(values []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(values))
	for _, value := range values {
		if strings.Contains(value, "/") {
			prefix, err := netip.ParsePrefix(value)
			if err != nil {
				return nil, err
			}
			out = append(out, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(value)
		if err != nil {
			return nil, err
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return out, nil
}
