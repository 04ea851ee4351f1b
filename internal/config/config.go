package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Storage StorageConfig `mapstructure:"storage"`
	Cleanup CleanupConfig `mapstructure:"cleanup"`
	Addr    string        `mapstructure:"addr"`
}

type DBConfig struct {
	Source string `mapstructure:"source"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type StorageConfig struct {
	Backend        string   `mapstructure:"backend"`
	Path           string   `mapstructure:"path"`
	QuotaBytes     int64    `mapstructure:"quota_bytes"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
	S3             S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type CleanupConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	BatchSize   int           `mapstructure:"batch_size"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

func Load() (*Config, error) {
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/configs")
	viper.SetConfigName("settings")
	viper.SetConfigType("yml")

	viper.SetDefault("addr", ":8080")
	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("storage.path", "./data")
	viper.SetDefault("storage.quota_bytes", int64(1<<30))
	viper.SetDefault("storage.max_upload_bytes", int64(1<<30))
	viper.SetDefault("cleanup.interval", "30s")
	viper.SetDefault("cleanup.batch_size", 100)
	viper.SetDefault("cleanup.max_attempts", 5)

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
