package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API
	Transport
	TokenCache
	Retry
}

type API struct {
	URL          string
	ClientID     string
	ClientSecret string
}

type Transport struct {
	Timeout               time.Duration
	MaxConnections        int
	MaxIdleTime           time.Duration
	MaxLifeTime           time.Duration
	PendingAcquireTimeout time.Duration
}

// TokenCache selects where access tokens are kept. An empty Addr keeps them
// in process memory.
type TokenCache struct {
	Addr     string
	Password string
	DB       int
}

type Retry struct {
	Enabled     bool
	MaxAttempts int
}

// Load reads the given .env files, or .env in the working directory when
// none are given, into the process environment. Variables that are already
// set are not overridden and a missing default .env is not an error.
func Load(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && len(files) == 0 && errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}

func NewConfig() *Config {
	return &Config{
		API: API{
			URL:          getEnvString("BLINKPAY_DEBIT_URL", "https://sandbox.debit.blinkpay.co.nz"),
			ClientID:     getEnvString("BLINKPAY_CLIENT_ID", ""),
			ClientSecret: getEnvString("BLINKPAY_CLIENT_SECRET", ""),
		},
		Transport: Transport{
			Timeout:               getEnvDuration("BLINKPAY_TIMEOUT", 10*time.Second),
			MaxConnections:        getEnvInt("BLINKPAY_MAX_CONNECTIONS", 10),
			MaxIdleTime:           getEnvDuration("BLINKPAY_MAX_IDLE_TIME", 20*time.Second),
			MaxLifeTime:           getEnvDuration("BLINKPAY_MAX_LIFE_TIME", 60*time.Second),
			PendingAcquireTimeout: getEnvDuration("BLINKPAY_PENDING_ACQUIRE_TIMEOUT", 10*time.Second),
		},
		TokenCache: TokenCache{
			Addr:     getEnvString("BLINKPAY_TOKEN_CACHE_ADDR", ""),
			Password: getEnvString("BLINKPAY_TOKEN_CACHE_PASSWORD", ""),
			DB:       getEnvInt("BLINKPAY_TOKEN_CACHE_DB", 0),
		},
		Retry: Retry{
			Enabled:     getEnvBool("BLINKPAY_RETRY_ENABLED", true),
			MaxAttempts: getEnvInt("BLINKPAY_RETRY_MAX_ATTEMPTS", 5),
		},
	}
}

func getEnvString(key string, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// getEnvDuration accepts Go durations ("45s") and bare seconds ("45").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}
