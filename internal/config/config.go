package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr  string `yaml:"http_addr"`
	PublicURL string `yaml:"public_url"`

	DBDriver string `yaml:"db_driver"`
	DBDSN    string `yaml:"db_dsn"`

	ResultsDriver string `yaml:"results_driver"` // sql|mongo|memory
	MongoURI      string `yaml:"mongo_uri"`
	MongoDB       string `yaml:"mongo_db"`

	RedisAddr    string        `yaml:"redis_addr"` // empty disables the question-set cache
	BankCacheTTL time.Duration `yaml:"bank_cache_ttl"`

	AuthHMACSecret string `yaml:"auth_hmac_secret"`
	AdminUser      string `yaml:"admin_user"`
	AdminPassHash  string `yaml:"admin_pass_hash"` // bcrypt

	CORSOrigins []string `yaml:"cors_origins"`
	AssetsDir   string   `yaml:"assets_dir"` // question images

	DefaultPassingScore float64 `yaml:"default_passing_score"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // json|text
}

func defaults() Config {
	return Config{
		HTTPAddr:            ":8080",
		DBDriver:            "sqlite",
		ResultsDriver:       "sql",
		MongoURI:            "mongodb://localhost:27017",
		MongoDB:             "examdumps",
		BankCacheTTL:        10 * time.Minute,
		AuthHMACSecret:      "supersecret-dev-key",
		AdminUser:           "admin",
		AdminPassHash:       "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji",
		CORSOrigins:         []string{"http://localhost:3000"},
		AssetsDir:           "./data/images",
		DefaultPassingScore: 70,
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// Load builds the config from defaults, then the YAML file named by
// CONFIG_FILE if set, then the environment. Later sources win.
func Load() (Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func applyEnv(c *Config) {
	c.HTTPAddr = envOr("HTTP_ADDR", c.HTTPAddr)
	c.PublicURL = envOr("PUBLIC_URL", c.PublicURL)
	c.DBDriver = envOr("DB_DRIVER", c.DBDriver)
	c.DBDSN = envOr("DB_DSN", c.DBDSN)
	c.ResultsDriver = envOr("RESULTS_DRIVER", c.ResultsDriver)
	c.MongoURI = envOr("MONGO_URI", c.MongoURI)
	c.MongoDB = envOr("MONGO_DB", c.MongoDB)
	c.RedisAddr = envOr("REDIS_ADDR", c.RedisAddr)
	if v := os.Getenv("BANK_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.BankCacheTTL = d
		}
	}
	c.AuthHMACSecret = envOr("AUTH_HMAC_SECRET", c.AuthHMACSecret)
	c.AdminUser = envOr("ADMIN_USER", c.AdminUser)
	c.AdminPassHash = envOr("ADMIN_PASS_HASH", c.AdminPassHash)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = csv(v)
	}
	c.AssetsDir = envOr("ASSETS_DIR", c.AssetsDir)
	if v := os.Getenv("DEFAULT_PASSING_SCORE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.DefaultPassingScore = f
		}
	}
	c.LogLevel = envOr("LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOr("LOG_FORMAT", c.LogFormat)
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	switch c.ResultsDriver {
	case "sql", "mongo", "memory":
	default:
		return fmt.Errorf("unsupported results_driver %q", c.ResultsDriver)
	}
	if c.DefaultPassingScore < 0 || c.DefaultPassingScore > 100 {
		return fmt.Errorf("default_passing_score %.2f out of range 0..100", c.DefaultPassingScore)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SetupLogging configures the package-level logrus logger.
func (c Config) SetupLogging() {
	if lvl, err := log.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if strings.EqualFold(c.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func csv(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
