package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Built once at startup; never
// mutated afterwards.
type Server struct {
	Addr string

	// CallbackEndpoint is the public URL provers submit proofs to. Embedded
	// in every session descriptor.
	CallbackEndpoint string

	// APIKeyHash is the bcrypt hash of the relier API key for POST /session.
	// Empty disables the check.
	APIKeyHash string

	// ReceiptSigningKey signs verification receipts (HS256).
	ReceiptSigningKey string
	ReceiptTTL        time.Duration

	// DevProofChecker enables the insecure development proof checker. Must
	// stay false in any real deployment; the process refuses to start
	// without a checker otherwise.
	DevProofChecker bool

	// VerifyDeadline bounds the cryptographic check per submission.
	VerifyDeadline time.Duration

	Policy   Policy
	Redis    RedisConfig
	Profile  ProfileConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
}

// Policy holds the deployment's default disclosure policy.
type Policy struct {
	MinimumAge        int // 0 means no age rule
	ExcludedCountries []string
	SanctionsScreen   bool
	AttestationKinds  []string
}

// RedisConfig configures the replay-prevention store. Empty URL selects the
// in-memory store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ProfileConfig configures the enrichment cache.
type ProfileConfig struct {
	UpstreamURL  string
	CacheTTL     time.Duration
	FetchTimeout time.Duration
}

// PostgresConfig configures the audit store. Empty URL selects the in-memory
// store.
type PostgresConfig struct {
	URL string
}

// KafkaConfig configures the optional audit event stream.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:              envOr("PROOFGATE_ADDR", ":8080"),
		CallbackEndpoint:  os.Getenv("PROOFGATE_CALLBACK_ENDPOINT"),
		APIKeyHash:        os.Getenv("PROOFGATE_API_KEY_HASH"),
		ReceiptSigningKey: envOr("PROOFGATE_RECEIPT_KEY", "dev-secret-key-change-in-production"),
		ReceiptTTL:        envDuration("PROOFGATE_RECEIPT_TTL", 10*time.Minute),
		DevProofChecker:   os.Getenv("PROOFGATE_DEV_PROOF_CHECKER") == "true",
		VerifyDeadline:    envDuration("PROOFGATE_VERIFY_DEADLINE", 10*time.Second),
		Policy: Policy{
			MinimumAge:        envInt("PROOFGATE_POLICY_MINIMUM_AGE", 18),
			ExcludedCountries: envList("PROOFGATE_POLICY_EXCLUDED_COUNTRIES"),
			SanctionsScreen:   os.Getenv("PROOFGATE_POLICY_SANCTIONS_SCREEN") != "false",
			AttestationKinds:  envList("PROOFGATE_POLICY_ATTESTATION_KINDS"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("PROOFGATE_REDIS_URL"),
			PoolSize:     envInt("PROOFGATE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("PROOFGATE_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("PROOFGATE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("PROOFGATE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("PROOFGATE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Profile: ProfileConfig{
			UpstreamURL:  os.Getenv("PROOFGATE_PROFILE_UPSTREAM_URL"),
			CacheTTL:     envDuration("PROOFGATE_PROFILE_CACHE_TTL", 5*time.Minute),
			FetchTimeout: envDuration("PROOFGATE_PROFILE_FETCH_TIMEOUT", 5*time.Second),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("PROOFGATE_POSTGRES_URL"),
		},
		Kafka: KafkaConfig{
			Brokers: envList("PROOFGATE_KAFKA_BROKERS"),
			Topic:   envOr("PROOFGATE_KAFKA_AUDIT_TOPIC", "proofgate.audit"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
