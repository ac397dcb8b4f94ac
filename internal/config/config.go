package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env         string `mapstructure:"APP_ENV"`
	Port        string `mapstructure:"PORT"`
	BaseURL     string `mapstructure:"BASE_URL"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// "postgres" ou "memory"
	StoreDriver string `mapstructure:"STORE_DRIVER"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	ScyllaHosts          string        `mapstructure:"SCYLLA_HOSTS"`
	ScyllaOrdersKeyspace string        `mapstructure:"SCYLLA_KS_ORDERS_KEYSPACE"`
	ScyllaUsername       string        `mapstructure:"SCYLLA_KS_ORDERS_ROLE"`
	ScyllaPassword       string        `mapstructure:"SCYLLA_KS_ORDERS_PASSWORD"`
	ScyllaTimeout        time.Duration `mapstructure:"SCYLLA_TIMEOUT"`

	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	ElasticURL      string `mapstructure:"ELASTIC_URL"`
	ElasticUser     string `mapstructure:"ELASTIC_USER"`
	ElasticPassword string `mapstructure:"ELASTIC_PASSWORD"`
	ElasticIndex    string `mapstructure:"ELASTIC_INDEX"`

	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	AccessTokenTTL time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	SessionSecret  string        `mapstructure:"SESSION_SECRET"`
	SessionMaxAge  time.Duration `mapstructure:"SESSION_MAX_AGE"`

	GoogleClientID       string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	FacebookClientID     string `mapstructure:"FACEBOOK_CLIENT_ID"`
	FacebookClientSecret string `mapstructure:"FACEBOOK_CLIENT_SECRET"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`
}

var defaults = map[string]any{
	"APP_ENV":                   "development",
	"PORT":                      "8080",
	"BASE_URL":                  "http://localhost:8080",
	"FRONTEND_URL":              "http://localhost:3000",
	"LOG_LEVEL":                 "info",
	"STORE_DRIVER":              "postgres",
	"DATABASE_URL":              "",
	"SCYLLA_HOSTS":              "",
	"SCYLLA_KS_ORDERS_KEYSPACE": "storefront_orders",
	"SCYLLA_KS_ORDERS_ROLE":     "",
	"SCYLLA_KS_ORDERS_PASSWORD": "",
	"SCYLLA_TIMEOUT":            "5s",
	"REDIS_HOST":                "",
	"REDIS_PASSWORD":            "",
	"ELASTIC_URL":               "",
	"ELASTIC_USER":              "",
	"ELASTIC_PASSWORD":          "",
	"ELASTIC_INDEX":             "products",
	"JWT_SECRET":                "",
	"ACCESS_TOKEN_TTL":          "1h",
	"SESSION_SECRET":            "",
	"SESSION_MAX_AGE":           "720h",
	"GOOGLE_CLIENT_ID":          "",
	"GOOGLE_CLIENT_SECRET":      "",
	"FACEBOOK_CLIENT_ID":        "",
	"FACEBOOK_CLIENT_SECRET":    "",
	"SMTP_HOST":                 "",
	"SMTP_PORT":                 587,
	"SMTP_USERNAME":             "",
	"SMTP_PASSWORD":             "",
	"MAIL_FROM":                 "noreply@storefront.local",
}

// Load charge le fichier .env s'il existe puis lit la configuration depuis l'environnement.
// Retourne aussi un indicateur pour savoir si le .env a été trouvé, le logger n'existe pas encore.
func Load(envFiles ...string) (*Config, bool, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	envLoaded := godotenv.Load(envFiles...) == nil

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, envLoaded, fmt.Errorf("lecture configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, envLoaded, err
	}
	return cfg, envLoaded, nil
}

// Validate vérifie les clés indispensables selon le driver choisi
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL manquant pour STORE_DRIVER=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("STORE_DRIVER inconnu: %q", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET manquant")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET manquant")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL invalide: %s", c.AccessTokenTTL)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ScyllaHostList découpe SCYLLA_HOSTS ("h1:9042,h2:9042")
func (c *Config) ScyllaHostList() []string {
	var hosts []string
	for _, h := range strings.Split(c.ScyllaHosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// AllowedOrigins retourne les origines autorisées pour CORS et le websocket panier
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
