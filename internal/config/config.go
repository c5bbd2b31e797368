package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	REST        RESTConf
	Upstream    UpstreamConf
	Storage     StorageConf
	DB          DBConf
	RateLimiter RateLimiterConf `mapstructure:"rate_limiter"`
	Content     ContentConf
	Markdown    MarkdownConf
	Log         LogConf
}

type RESTConf struct {
	Host         string
	Port         string        `validate:"required"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// UpstreamConf points at the knowledge-base API the panel talks to.
type UpstreamConf struct {
	BaseURL  string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout  time.Duration `validate:"gte=0"`
	GRPCHost string        `mapstructure:"grpc_host"`
	GRPCPort string        `mapstructure:"grpc_port"`
}

type StorageConf struct {
	Driver  string `validate:"oneof=file postgres"`
	Path    string `validate:"required_if=Driver file"`
	Profile string `validate:"required"`
}

type DBConf struct {
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxIdleTime  time.Duration `mapstructure:"max_idle_time"`
}

type RateLimiterConf struct {
	Limit   int `validate:"gte=0"`
	Enabled bool
}

type ContentConf struct {
	URLPrefix string `mapstructure:"url_prefix"`
	Dir       string
}

type MarkdownConf struct {
	Style   string
	Classes bool
}

type LogConf struct {
	Level  string `validate:"omitempty,oneof=debug info warn warning error"`
	Format string `validate:"omitempty,oneof=text json"`
}

// setDefaults registers every key: AutomaticEnv only overrides keys viper
// already knows.
func setDefaults(v *viper.Viper) {
	v.SetDefault("rest.host", "localhost")
	v.SetDefault("rest.port", "8080")
	v.SetDefault("rest.idle_timeout", time.Minute)
	v.SetDefault("rest.read_timeout", 10*time.Second)
	v.SetDefault("rest.write_timeout", 30*time.Second)
	v.SetDefault("upstream.base_url", "")
	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("upstream.grpc_host", "")
	v.SetDefault("upstream.grpc_port", "")
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "kbpanel-storage.json")
	v.SetDefault("storage.profile", "default")
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.max_open_conns", 4)
	v.SetDefault("db.max_idle_conns", 0)
	v.SetDefault("db.max_idle_time", 15*time.Minute)
	v.SetDefault("rate_limiter.limit", 20)
	v.SetDefault("rate_limiter.enabled", false)
	v.SetDefault("content.url_prefix", "/static/")
	v.SetDefault("content.dir", "")
	v.SetDefault("markdown.style", "github")
	v.SetDefault("markdown.classes", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads the TOML file at path, applies KBPANEL_* environment
// overrides and validates the result. An empty path loads defaults only.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		err := v.ReadInConfig()
		if err != nil {
			return Config{}, fmt.Errorf("failed reading config: %w", err)
		}
	}
	v.SetEnvPrefix("kbpanel")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	err := v.Unmarshal(&config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	err = validator.New(validator.WithRequiredStructEnabled()).Struct(config)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}
