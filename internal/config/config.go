package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	RedisAddr     string
	RedisPassword string

	FetchTimeoutSeconds int
	CacheTTLSeconds     int
	TaskMaxRetries      int
	BatchWorkers        int
	BatchLinkLimit      int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Load() Config {
	cfg := Config{
		AppEnv:        getenv("APP_ENV", "development"),
		HTTPAddr:      getenv("HTTP_ADDR", ":8090"),
		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		FetchTimeoutSeconds: getenvInt("FETCH_TIMEOUT_SECONDS", 30),
		CacheTTLSeconds:     getenvInt("CACHE_TTL_SECONDS", 900),
		TaskMaxRetries:      getenvInt("TASK_MAX_RETRIES", 3),
		BatchWorkers:        getenvInt("BATCH_WORKERS", 5),
		BatchLinkLimit:      getenvInt("BATCH_LINK_LIMIT", 25),
	}
	if cfg.RedisAddr == "" {
		panic(fmt.Errorf("REDIS_ADDR is required"))
	}
	return cfg
}
