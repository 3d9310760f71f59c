package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenSecret keeps local development working without setup. Never
// run with it in production.
const DefaultTokenSecret = "dev-secret"

type Config struct {
	Host string `env:"HOST,default=0.0.0.0"`
	Port uint   `env:"PORT,default=3000"`
	Addr string

	DBDriver string `env:"DB_DRIVER,default=sqlite3"`
	DBUrl    string `env:"DB_URL,default=waterlily.sqlite"`
	SeedDemo bool   `env:"SEED_DEMO,default=true"`

	TokenSecret string        `env:"JWT_SECRET,default=dev-secret"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,default=2h"`
	BcryptCost  int           `env:"BCRYPT_COST,default=10"`

	// RecordRespondent stores the authenticated user id on each response
	// instead of the anonymous placeholder.
	RecordRespondent bool `env:"RECORD_RESPONDENT,default=false"`

	CORSOrigins   string `env:"CORS_ALLOWED_ORIGINS,default=*"`
	AuthRateLimit int    `env:"AUTH_RATE_LIMIT,default=20"` // requests per minute per client IP

	// TrustProxy takes the client address from X-Forwarded-For and friends.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool `env:"TRUST_PROXY,default=false"`

	Debug bool `env:"DEBUG,default=false"`
}

// Load reads an optional .env file, then the environment, then the command
// line flags in args; each source overrides the previous one.
func Load(args []string) (cfg Config, err error) {
	err = godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("config.dotenv: %w", err)
	}

	err = envdecode.Decode(&cfg)
	if err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("config.env: %w", err)
	}

	fs := flag.NewFlagSet("waterlily", flag.ContinueOnError)
	fs.StringVar(&cfg.Host, "host", cfg.Host, "listen host name")
	fs.UintVar(&cfg.Port, "port", cfg.Port, "listen port number")
	fs.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "database driver: sqlite3 or postgres")
	fs.StringVar(&cfg.DBUrl, "db-url", cfg.DBUrl, "path to SQLite3 DB file, or postgres connection URL")
	fs.BoolVar(&cfg.SeedDemo, "seed-demo", cfg.SeedDemo, "create the demo survey when the database is empty")
	fs.StringVar(&cfg.TokenSecret, "token-secret", cfg.TokenSecret, "secret key for signing bearer tokens")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "bearer token lifetime")
	fs.IntVar(&cfg.BcryptCost, "bcrypt-cost", cfg.BcryptCost, "bcrypt cost for password hashes")
	fs.BoolVar(&cfg.RecordRespondent, "record-respondent", cfg.RecordRespondent, "store the authenticated user id on responses")
	fs.StringVar(&cfg.CORSOrigins, "cors-origins", cfg.CORSOrigins, "comma separated list of allowed CORS origins")
	fs.IntVar(&cfg.AuthRateLimit, "auth-rate-limit", cfg.AuthRateLimit, "auth requests per minute per client IP (0 disables)")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", cfg.TrustProxy, "take the client IP from proxy headers")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "log at DEBUG level")
	err = fs.Parse(args)
	if err != nil {
		return cfg, err
	}

	cfg.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port)))

	return cfg, cfg.validate()
}

func (cfg Config) validate() error {
	switch cfg.DBDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
	if cfg.DBUrl == "" {
		return errors.New("missing parameter -db-url")
	}
	if cfg.TokenSecret == "" {
		return errors.New("missing parameter -token-secret")
	}
	if cfg.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.AuthRateLimit < 0 {
		return errors.New("auth rate limit cannot be negative")
	}
	return nil
}

// InsecureSecret reports whether tokens are signed with the built-in secret.
func (cfg Config) InsecureSecret() bool {
	return cfg.TokenSecret == DefaultTokenSecret
}

func (cfg Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(cfg.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
