// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting for the service. All values come
// from environment variables with sensible defaults; a .env file is
// loaded first when present.
type Config struct {
	Port        string
	MetricsAddr string

	// Provider selection and endpoints
	STTProvider string // mock, whisper
	TTSProvider string // mock, piper
	WhisperURL  string
	PiperURL    string
	PiperVoice  string

	// Stage timeouts
	STTTimeout    time.Duration
	TTSTimeout    time.Duration
	IntentTimeout time.Duration

	// Pipeline behavior
	ConfidenceThreshold float64
	PrivacyModeDefault  bool
	MaxAudioBytes       int64
	DebugReasoning      bool

	// Health registry
	HealthPollInterval time.Duration

	// Kafka event publishing
	Kafka KafkaConfig
}

// KafkaConfig holds event publisher settings.
type KafkaConfig struct {
	Enabled        bool
	Brokers        []string
	TopicCompleted string
	TopicErrored   string
	Principal      string
}

// Load reads the configuration from the environment.
func Load() *Config {
	// Best effort: absence of a .env file is the normal production case.
	_ = godotenv.Load()

	return &Config{
		Port:        envOrDefault("HTTP_PORT", "8000"),
		MetricsAddr: envOrDefault("METRICS_ADDR", ":9090"),

		STTProvider: envOrDefault("STT_PROVIDER", "mock"),
		TTSProvider: envOrDefault("TTS_PROVIDER", "mock"),
		WhisperURL:  envOrDefault("WHISPER_URL", "http://localhost:8080"),
		PiperURL:    envOrDefault("PIPER_URL", "http://localhost:5000"),
		PiperVoice:  envOrDefault("PIPER_VOICE", "en_US-lessac-medium"),

		STTTimeout:    envDuration("STT_TIMEOUT_MS", 30*time.Second),
		TTSTimeout:    envDuration("TTS_TIMEOUT_MS", 15*time.Second),
		IntentTimeout: envDuration("INTENT_TIMEOUT_MS", 5*time.Second),

		ConfidenceThreshold: envFloat("INTENT_CONFIDENCE_THRESHOLD", 0.6),
		PrivacyModeDefault:  envBool("PRIVACY_MODE", true),
		MaxAudioBytes:       envInt64("MAX_AUDIO_BYTES", 10*1024*1024),
		DebugReasoning:      envBool("DEBUG_REASONING", false),

		HealthPollInterval: envDuration("HEALTH_POLL_INTERVAL_MS", 15*time.Second),

		Kafka: KafkaConfig{
			Enabled:        envBool("KAFKA_ENABLED", false),
			Brokers:        envList("KAFKA_BROKERS"),
			TopicCompleted: envOrDefault("KAFKA_TOPIC_COMPLETED", "interaction.pipeline.completed"),
			TopicErrored:   envOrDefault("KAFKA_TOPIC_ERRORED", "interaction.pipeline.errored"),
			Principal:      envOrDefault("KAFKA_PRINCIPAL", "svc-voice-console"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
