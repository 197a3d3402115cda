// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server, the document store,
// the dedup store, and the publish endpoint.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	PublishTopic   string
	PublishTimeout time.Duration

	TxnMaxAttempts int

	ListLimitDefault int
	ListLimitMax     int

	// DedupBackend selects "memory" or "bolt"; DedupPath is the bolt
	// database file.
	DedupBackend string
	DedupPath    string

	// PublisherBackend selects "memory" or "sns".
	PublisherBackend string
	AWSRegion        string
	SNSAccountID     string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout:  durenvs("SHUTDOWN_TIMEOUT", 15),
		PublishTopic:     getenv("PUBLISH_TOPIC", "items-events"),
		PublishTimeout:   durenvs("PUBLISH_TIMEOUT", 10),
		TxnMaxAttempts:   atoienv("TXN_MAX_ATTEMPTS", 5),
		ListLimitDefault: atoienv("LIST_LIMIT_DEFAULT", 10),
		ListLimitMax:     atoienv("LIST_LIMIT_MAX", 100),
		DedupBackend:     getenv("DEDUP_BACKEND", "memory"),
		DedupPath:        getenv("DEDUP_PATH", "dedup.db"),
		PublisherBackend: getenv("PUBLISHER_BACKEND", "memory"),
		AWSRegion:        getenv("AWS_REGION", "us-east-1"),
		SNSAccountID:     getenv("SNS_ACCOUNT_ID", ""),
	}
}
