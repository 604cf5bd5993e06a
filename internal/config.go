package internal

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type NovaDocConfig struct {
	AppName string `mapstructure:"app_name"`

	Storage struct {
		URI      string `mapstructure:"uri"`
		Format   string `mapstructure:"format"` // json | bson
		Pretty   bool   `mapstructure:"pretty"`
		AutoSave bool   `mapstructure:"auto_save"`
	} `mapstructure:"storage"`

	S3 struct {
		Region    string `mapstructure:"region"`
		Endpoint  string `mapstructure:"endpoint"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"s3"`

	Git struct {
		AuthorName  string `mapstructure:"author_name"`
		AuthorEmail string `mapstructure:"author_email"`
	} `mapstructure:"git"`

	Server struct {
		Addr           string `mapstructure:"addr"`
		Debug          bool   `mapstructure:"debug"`
		StatementCache int    `mapstructure:"statement_cache"`
	} `mapstructure:"server"`

	Auth struct {
		Enabled   bool   `mapstructure:"enabled"`
		JWTSecret string `mapstructure:"jwt_secret"`
		Issuer    string `mapstructure:"issuer"`
	} `mapstructure:"auth"`

	Log LogConfig `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // text | json
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "novadoc")

	v.SetDefault("storage.uri", "file://./data/novadoc.json")
	v.SetDefault("storage.format", "json")
	v.SetDefault("storage.pretty", true)
	v.SetDefault("storage.auto_save", true)

	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")

	v.SetDefault("git.author_name", "novadoc")
	v.SetDefault("git.author_email", "novadoc@localhost")

	v.SetDefault("server.addr", "127.0.0.1:8866")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.statement_cache", 256)

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "novadoc")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads a YAML config file. An empty path uses defaults only.
// Every key can be overridden from the environment, e.g. NOVADOC_STORAGE_URI.
func LoadConfig(path string) (*NovaDocConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("NOVADOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg NovaDocConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("config: auth.enabled requires auth.jwt_secret")
	}
	return &cfg, nil
}
