// Package app wires the service's components together.
package app

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"frontoffice-voice-console/internal/config"
	"frontoffice-voice-console/internal/events"
	"frontoffice-voice-console/internal/health"
	"frontoffice-voice-console/internal/observability/logging"
	"frontoffice-voice-console/internal/observability/metrics"
	"frontoffice-voice-console/internal/service/intent"
	"frontoffice-voice-console/internal/service/pipeline"
	"frontoffice-voice-console/internal/service/stt"
	sttmock "frontoffice-voice-console/internal/service/stt/mock"
	"frontoffice-voice-console/internal/service/stt/whisper"
	"frontoffice-voice-console/internal/service/tts"
	ttsmock "frontoffice-voice-console/internal/service/tts/mock"
	"frontoffice-voice-console/internal/service/tts/piper"
)

// Application holds process-wide state for the service.
type Application struct {
	StartupTime  time.Time
	Logger       zerolog.Logger
	Cfg          *config.Config
	Orchestrator *pipeline.Orchestrator
	Registry     *health.Registry
	Publisher    *events.Publisher

	pollCancel context.CancelFunc
}

// New constructs the Application: provider adapters per configuration,
// classifier, event publisher, health registry and orchestrator.
func New(cfg *config.Config) (*Application, error) {
	a := &Application{Cfg: cfg}
	a.setupLogger()

	appLogger := a.Logger.With().Str("method", "New").Logger()

	speech := buildSTT(cfg)
	voice := buildTTS(cfg)
	classifier := buildClassifier(cfg)

	publisher, err := events.New(&events.Config{
		Enabled:        cfg.Kafka.Enabled,
		Brokers:        cfg.Kafka.Brokers,
		TopicCompleted: cfg.Kafka.TopicCompleted,
		TopicErrored:   cfg.Kafka.TopicErrored,
		Principal:      cfg.Kafka.Principal,
	})
	if err != nil {
		return nil, err
	}
	a.Publisher = publisher

	a.Registry = health.NewRegistry(metrics.DefaultMetrics)
	a.Registry.Register(health.RoleTranscription, speech.Ready)
	a.Registry.Register(health.RoleSynthesis, voice.Ready)
	// The classifier runs in-process with no external dependency; its probe
	// only confirms the process can still serve it.
	a.Registry.Register(health.RoleClassification, func(ctx context.Context) bool {
		return ctx.Err() == nil
	})

	a.Orchestrator = pipeline.New(
		pipeline.Config{
			STTTimeout:    cfg.STTTimeout,
			TTSTimeout:    cfg.TTSTimeout,
			IntentTimeout: cfg.IntentTimeout,
			Voice:         cfg.PiperVoice,
			MaxAudioBytes: cfg.MaxAudioBytes,
		},
		speech,
		voice,
		classifier,
		publisher,
		metrics.DefaultMetrics,
	)

	appLogger.Info().
		Str("sttProvider", cfg.STTProvider).
		Str("ttsProvider", cfg.TTSProvider).
		Bool("privacyModeDefault", cfg.PrivacyModeDefault).
		Msg("Voice console application created")
	return a, nil
}

// setupLogger configures the global zerolog logger and the application's
// component logger.
func (a *Application) setupLogger() {
	logCfg := logging.DefaultConfig()
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		logCfg.Level = level
	}
	if os.Getenv("ENV") == "dev" {
		logCfg.Format = "console"
	}
	logging.Init(logCfg)

	a.Logger = logging.WithComponent("application")
	a.Logger.Info().
		Str("logLevel", logCfg.Level).
		Str("environment", os.Getenv("ENV")).
		Msg("Logger setup completed")
}

// Start begins background work: the health registry starts polling the
// providers.
func (a *Application) Start() error {
	startLogger := a.Logger.With().Str("method", "Start").Logger()

	a.StartupTime = time.Now().UTC()

	pollCtx, cancel := context.WithCancel(context.Background())
	a.pollCancel = cancel
	go a.Registry.Poll(pollCtx, a.Cfg.HealthPollInterval)

	startLogger.Info().
		Time("startupTime", a.StartupTime).
		Msg("Voice console service starting")
	return nil
}

// Shutdown performs a best-effort cleanup before process exit.
func (a *Application) Shutdown() {
	shutdownLogger := a.Logger.With().Str("method", "Shutdown").Logger()

	if a.pollCancel != nil {
		a.pollCancel()
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			shutdownLogger.Error().Err(err).Msg("Error closing event publisher")
		}
	}

	shutdownLogger.Info().Msg("Voice console service shutting down")
}

func buildSTT(cfg *config.Config) stt.Adapter {
	switch cfg.STTProvider {
	case "whisper":
		return whisper.New(cfg.WhisperURL)
	default:
		return sttmock.New()
	}
}

func buildTTS(cfg *config.Config) tts.Adapter {
	switch cfg.TTSProvider {
	case "piper":
		return piper.New(cfg.PiperURL, cfg.PiperVoice)
	default:
		return ttsmock.New()
	}
}

func buildClassifier(cfg *config.Config) *intent.Classifier {
	opts := []intent.Option{intent.WithThreshold(cfg.ConfidenceThreshold)}
	if cfg.DebugReasoning {
		opts = append(opts, intent.WithReasoning())
	}
	return intent.New(opts...)
}
