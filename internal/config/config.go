package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CustomerServiceURL string
	PropertyServiceURL string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "5003"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	customerURL := viper.GetString("CUSTOMER_SERVICE_URL")
	if customerURL == "" {
		customerURL = "http://localhost:5001"
	}
	propertyURL := viper.GetString("PROPERTY_SERVICE_URL")
	if propertyURL == "" {
		propertyURL = "http://localhost:5002"
	}

	return &Config{
		Env:                env,
		Port:               port,
		DatabaseURL:        viper.GetString("DATABASE_URL"),
		RedisURL:           viper.GetString("REDIS_URL"),
		CustomerServiceURL: customerURL,
		PropertyServiceURL: propertyURL,
	}, nil
}
