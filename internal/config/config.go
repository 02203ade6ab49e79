package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port        string `mapstructure:"port"`
		MetricsPort string `mapstructure:"metrics_port"`
		Environment string `mapstructure:"environment"`
		LogLevel    string `mapstructure:"log_level"`
	} `mapstructure:"server"`
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	JWT struct {
		Secret   string `mapstructure:"secret"`
		Issuer   string `mapstructure:"issuer"`
		Audience string `mapstructure:"audience"`
		TTLHours int    `mapstructure:"ttl_hours"`
	} `mapstructure:"jwt"`
	Dashboard struct {
		// Trailing window (minutes) within which a session counts as active.
		ActiveWindowMinutes int `mapstructure:"active_window_minutes"`
	} `mapstructure:"dashboard"`
	Web struct {
		Port       string `mapstructure:"port"`
		APIBaseURL string `mapstructure:"api_base_url"`
	} `mapstructure:"web"`
}

func Load() *Config {
	viper.SetEnvPrefix("CROWDQR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Register keys
	viper.BindEnv("server.port")
	viper.BindEnv("server.metrics_port")
	viper.BindEnv("server.environment")
	viper.BindEnv("server.log_level")

	viper.BindEnv("database.host")
	viper.BindEnv("database.port")
	viper.BindEnv("database.user")
	viper.BindEnv("database.password")
	viper.BindEnv("database.name")

	viper.BindEnv("jwt.secret")
	viper.BindEnv("jwt.issuer")
	viper.BindEnv("jwt.audience")
	viper.BindEnv("jwt.ttl_hours")

	viper.BindEnv("dashboard.active_window_minutes")

	viper.BindEnv("web.port")
	viper.BindEnv("web.api_base_url")

	// Defaults
	viper.SetDefault("server.port", ":8080")
	viper.SetDefault("server.metrics_port", ":9091")
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("server.log_level", "info")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "crowdqr")
	viper.SetDefault("database.name", "crowdqr")

	viper.SetDefault("jwt.issuer", "crowdqr")
	viper.SetDefault("jwt.audience", "crowdqr")
	viper.SetDefault("jwt.ttl_hours", 24)

	viper.SetDefault("dashboard.active_window_minutes", 15)

	viper.SetDefault("web.port", ":8081")
	viper.SetDefault("web.api_base_url", "http://localhost:8080")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Config error: %s", err)
		} else {
			log.Println("Info: config.yaml not found, using Environment Variables only.")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	return &cfg
}
