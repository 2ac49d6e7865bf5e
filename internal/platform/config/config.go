package config

import (
	"os"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	DecisionCacheTTL   time.Duration
	AuditRelayInterval time.Duration
	AuditRelayBatch    int

	EnableAuditRelay            bool
	EnablePolicyChangedConsumer bool
	EnableSchemaAutoBuild       bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "quarry"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: brokers,

		DecisionCacheTTL:   envDuration("DECISION_CACHE_TTL", 5*time.Minute),
		AuditRelayInterval: envDuration("AUDIT_RELAY_INTERVAL", 5*time.Second),
		AuditRelayBatch:    100,

		EnableAuditRelay:            envBool("ENABLE_AUDIT_RELAY", true),
		EnablePolicyChangedConsumer: envBool("ENABLE_POLICY_CHANGED_CONSUMER", true),
		EnableSchemaAutoBuild:       envBool("ENABLE_SCHEMA_AUTO_BUILD", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
