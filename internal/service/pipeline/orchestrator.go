package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"frontoffice-voice-console/internal/models"
	"frontoffice-voice-console/internal/observability/logging"
	"frontoffice-voice-console/internal/observability/metrics"
	"frontoffice-voice-console/internal/service/entity"
	"frontoffice-voice-console/internal/service/intent"
	"frontoffice-voice-console/internal/service/redact"
	"frontoffice-voice-console/internal/service/stt"
	"frontoffice-voice-console/internal/service/tts"
	"frontoffice-voice-console/internal/wav"
)

// fallbackSilenceMS is the length of the silent WAV served when synthesis
// fails but the rest of the run succeeded.
const fallbackSilenceMS = 500

// EventSink receives lifecycle events for completed and aborted runs.
// Publishing is best effort; a sink failure never fails the run.
type EventSink interface {
	PublishCompleted(ctx context.Context, event models.PipelineCompleted) error
	PublishErrored(ctx context.Context, event models.PipelineErrored) error
}

// Config holds the orchestrator's stage budgets and synthesis defaults.
type Config struct {
	STTTimeout    time.Duration
	TTSTimeout    time.Duration
	IntentTimeout time.Duration

	Voice         string
	Speed         float64
	MaxAudioBytes int64
}

// Orchestrator runs the full voice pipeline: transcription, redaction,
// classification, synthesis. Each networked stage gets its own timeout
// budget; one slow provider cannot consume another stage's budget.
type Orchestrator struct {
	cfg        Config
	stt        stt.Adapter
	tts        tts.Adapter
	classifier *intent.Classifier
	events     EventSink
	metrics    *metrics.Metrics
	now        func() time.Time
}

// New creates an Orchestrator. sink may be nil when event publishing is
// not wired.
func New(cfg Config, sttAdapter stt.Adapter, ttsAdapter tts.Adapter, classifier *intent.Classifier, sink EventSink, m *metrics.Metrics) *Orchestrator {
	if cfg.STTTimeout <= 0 {
		cfg.STTTimeout = 30 * time.Second
	}
	if cfg.TTSTimeout <= 0 {
		cfg.TTSTimeout = 15 * time.Second
	}
	if cfg.IntentTimeout <= 0 {
		cfg.IntentTimeout = 5 * time.Second
	}
	if cfg.Speed <= 0 {
		cfg.Speed = 1.0
	}
	if cfg.Voice == "" {
		cfg.Voice = "en_US-lessac-medium"
	}
	if cfg.MaxAudioBytes <= 0 {
		cfg.MaxAudioBytes = 10 * 1024 * 1024
	}
	return &Orchestrator{
		cfg:        cfg,
		stt:        sttAdapter,
		tts:        ttsAdapter,
		classifier: classifier,
		events:     sink,
		metrics:    m,
		now:        time.Now,
	}
}

// Process runs one utterance end to end and returns the assembled result.
// The returned error, when non-nil, is always a *StageError carrying the
// correlation id and the stage that failed. A synthesis failure does not
// abort the run: the result carries silent fallback audio with
// AudioDegraded set instead.
func (o *Orchestrator) Process(ctx context.Context, audio []byte, privacyMode bool) (*models.PipelineResult, error) {
	rc := models.NewRequestContext(privacyMode)
	logger := logging.WithRequest(rc.ID)
	start := o.now()

	if err := o.validateAudio(audio); err != nil {
		return nil, &StageError{RequestID: rc.ID, Stage: StageValidation, Err: err}
	}

	o.metrics.RecordPipelineStart()
	run := NewLifecycle(rc.ID)
	logger.Info().
		Bool("privacyMode", privacyMode).
		Int("audioBytes", len(audio)).
		Msg("Pipeline run started")

	// Transcription
	o.enter(run, StateTranscribing)
	sttStart := o.now()
	heard, err := o.transcribe(ctx, audio)
	o.metrics.RecordStage(StageTranscription, o.now().Sub(sttStart).Seconds())
	if err != nil {
		return nil, o.abort(ctx, run, rc.ID, StageTranscription, err, start)
	}

	// Redaction
	o.enter(run, StateRedacting)
	transcription := models.TranscriptionResult{
		Text:       heard.Text,
		Confidence: heard.Confidence,
		DurationMS: heard.DurationMS,
	}
	if heard.Language != "" {
		lang := heard.Language
		transcription.Language = &lang
	}
	if privacyMode {
		redStart := o.now()
		findings := redact.Entities(heard.Text)
		masked, matches := redact.Redact(heard.Text)
		o.metrics.RecordStage(StageRedaction, o.now().Sub(redStart).Seconds())
		o.metrics.RecordRedactions(matches)
		if matches > 0 {
			transcription.RedactedText = &masked
		}
		// Audit trail carries categories only. Matched values stay out of
		// the logs, which is the point of redacting in the first place.
		categories := make([]string, len(findings))
		for i, f := range findings {
			categories[i] = f.Category
		}
		logger.Debug().
			Int("redactionMatches", matches).
			Strs("redactedCategories", categories).
			Msg("Redaction applied")
	}

	// Classification. Entities come from the raw transcript so that the
	// phone detector sees the digits redaction would have masked.
	o.enter(run, StateClassifying)
	clsStart := o.now()
	routed, err := o.classify(ctx, heard.Text)
	o.metrics.RecordStage(StageClassification, o.now().Sub(clsStart).Seconds())
	if err != nil {
		return nil, o.abort(ctx, run, rc.ID, StageClassification, err, start)
	}
	o.metrics.RecordIntent(string(routed.Intent), routed.HandoffRecommended)

	// Synthesis. A failure here degrades the response instead of aborting:
	// the caller still gets the transcript and routing decision.
	o.enter(run, StateSynthesizing)
	synthStart := o.now()
	spoken, err := o.synthesize(ctx, routed.ResponseText, o.cfg.Voice, o.cfg.Speed)
	o.metrics.RecordStage(StageSynthesis, o.now().Sub(synthStart).Seconds())
	degraded := false
	if err != nil {
		degraded = true
		o.metrics.RecordStageError(StageSynthesis, errorType(err))
		o.metrics.RecordSynthesisFallback()
		stageLogger := logging.WithStage(rc.ID, StageSynthesis)
		stageLogger.Warn().
			Err(err).
			Msg("Synthesis failed, serving silent fallback audio")
		spoken = wav.Silence(fallbackSilenceMS)
	}

	o.enter(run, StateComplete)
	elapsed := o.now().Sub(start)
	result := &models.PipelineResult{
		RequestID:     rc.ID,
		PrivacyMode:   privacyMode,
		Transcription: transcription,
		Intent:        routed,
		Audio:         spoken,
		AudioDegraded: degraded,
		DurationMS:    elapsed.Milliseconds(),
	}
	o.metrics.RecordPipelineEnd("", elapsed.Seconds())
	logger.Info().
		Str("intent", string(routed.Intent)).
		Float64("confidence", routed.Confidence).
		Bool("handoff", routed.HandoffRecommended).
		Bool("audioDegraded", degraded).
		Dur("elapsed", elapsed).
		Msg("Pipeline run completed")

	o.publishCompleted(ctx, result)
	return result, nil
}

// RouteIntent classifies text directly, skipping the audio stages. Returns
// the result and the correlation id assigned to the request.
func (o *Orchestrator) RouteIntent(ctx context.Context, text string) (models.IntentResult, string, error) {
	rc := models.NewRequestContext(false)

	if strings.TrimSpace(text) == "" {
		return models.IntentResult{}, rc.ID, &StageError{
			RequestID: rc.ID,
			Stage:     StageValidation,
			Err:       fmt.Errorf("%w: empty text", ErrInvalidInput),
		}
	}

	routed, err := o.classify(ctx, text)
	if err != nil {
		o.metrics.RecordStageError(StageClassification, errorType(err))
		return models.IntentResult{}, rc.ID, &StageError{RequestID: rc.ID, Stage: StageClassification, Err: err}
	}

	o.metrics.RecordIntent(string(routed.Intent), routed.HandoffRecommended)
	logger := logging.WithRequest(rc.ID)
	logger.Info().
		Str("intent", string(routed.Intent)).
		Float64("confidence", routed.Confidence).
		Bool("handoff", routed.HandoffRecommended).
		Msg("Intent routed")
	return routed, rc.ID, nil
}

// Transcribe runs the transcription and redaction stages standalone.
func (o *Orchestrator) Transcribe(ctx context.Context, audio []byte, privacyMode bool) (models.TranscriptionResult, string, error) {
	rc := models.NewRequestContext(privacyMode)

	if err := o.validateAudio(audio); err != nil {
		return models.TranscriptionResult{}, rc.ID, &StageError{RequestID: rc.ID, Stage: StageValidation, Err: err}
	}

	heard, err := o.transcribe(ctx, audio)
	if err != nil {
		o.metrics.RecordStageError(StageTranscription, errorType(err))
		return models.TranscriptionResult{}, rc.ID, &StageError{RequestID: rc.ID, Stage: StageTranscription, Err: err}
	}

	result := models.TranscriptionResult{
		Text:       heard.Text,
		Confidence: heard.Confidence,
		DurationMS: heard.DurationMS,
	}
	if heard.Language != "" {
		lang := heard.Language
		result.Language = &lang
	}
	if privacyMode {
		masked, matches := redact.Redact(heard.Text)
		o.metrics.RecordRedactions(matches)
		if matches > 0 {
			result.RedactedText = &masked
		}
	}
	return result, rc.ID, nil
}

// Speak runs the synthesis stage standalone. Unlike Process, a synthesis
// failure here surfaces as an error: the caller asked for audio and
// nothing else.
func (o *Orchestrator) Speak(ctx context.Context, text, voice string, speed float64) ([]byte, string, error) {
	rc := models.NewRequestContext(false)

	if strings.TrimSpace(text) == "" {
		return nil, rc.ID, &StageError{
			RequestID: rc.ID,
			Stage:     StageValidation,
			Err:       fmt.Errorf("%w: empty text", ErrInvalidInput),
		}
	}
	if voice == "" {
		voice = o.cfg.Voice
	}
	if speed == 0 {
		speed = o.cfg.Speed
	}

	audio, err := o.synthesize(ctx, text, voice, tts.ClampSpeed(speed))
	if err != nil {
		o.metrics.RecordStageError(StageSynthesis, errorType(err))
		return nil, rc.ID, &StageError{RequestID: rc.ID, Stage: StageSynthesis, Err: err}
	}
	return audio, rc.ID, nil
}

func (o *Orchestrator) validateAudio(audio []byte) error {
	if len(audio) == 0 {
		return fmt.Errorf("%w: empty audio payload", ErrInvalidInput)
	}
	if int64(len(audio)) > o.cfg.MaxAudioBytes {
		return fmt.Errorf("%w: audio payload of %d bytes exceeds limit of %d", ErrInvalidInput, len(audio), o.cfg.MaxAudioBytes)
	}
	return nil
}

// transcribe calls the STT provider under the transcription stage budget.
func (o *Orchestrator) transcribe(ctx context.Context, audio []byte) (*stt.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.STTTimeout)
	defer cancel()

	type outcome struct {
		result *stt.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := o.stt.Transcribe(ctx, audio, "wav")
		done <- outcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, stageCtxError(ctx)
	case out := <-done:
		if out.err != nil {
			return nil, providerError(out.err)
		}
		return out.result, nil
	}
}

// classify extracts entities and scores the text under the classification
// stage budget. The classifier is pure and total, so the recover is a
// defensive bucket rather than an expected path.
func (o *Orchestrator) classify(ctx context.Context, text string) (models.IntentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.IntentTimeout)
	defer cancel()

	type outcome struct {
		result models.IntentResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: %v", ErrInternalClassification, r)}
			}
		}()
		entities := entity.Extract(text, o.now())
		done <- outcome{result: o.classifier.Classify(text, entities)}
	}()

	select {
	case <-ctx.Done():
		return models.IntentResult{}, stageCtxError(ctx)
	case out := <-done:
		return out.result, out.err
	}
}

// synthesize calls the TTS provider under the synthesis stage budget.
func (o *Orchestrator) synthesize(ctx context.Context, text, voice string, speed float64) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.TTSTimeout)
	defer cancel()

	type outcome struct {
		audio []byte
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		audio, err := o.tts.Synthesize(ctx, text, voice, speed)
		done <- outcome{audio: audio, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, stageCtxError(ctx)
	case out := <-done:
		if out.err != nil {
			return nil, providerError(out.err)
		}
		return out.audio, nil
	}
}

// abort records a failed run and builds its StageError.
func (o *Orchestrator) abort(ctx context.Context, run *Lifecycle, requestID, stage string, err error, start time.Time) error {
	run.Fail()
	elapsed := o.now().Sub(start)
	o.metrics.RecordStageError(stage, errorType(err))
	o.metrics.RecordPipelineEnd(stage, elapsed.Seconds())
	stageLogger := logging.WithStage(requestID, stage)
	stageLogger.Error().
		Err(err).
		Dur("elapsed", elapsed).
		Msg("Pipeline run aborted")

	o.publishErrored(ctx, requestID, stage, err)
	return &StageError{RequestID: requestID, Stage: stage, Err: err}
}

// enter advances the lifecycle. Transitions follow the fixed stage order,
// so a failure here is a programming error worth a log line, not a run
// abort.
func (o *Orchestrator) enter(run *Lifecycle, next State) {
	if err := run.Advance(next); err != nil {
		logger := logging.WithRequest(run.RequestID())
		logger.Error().
			Err(err).
			Str("state", next.String()).
			Msg("Invalid lifecycle transition")
		return
	}
	stageLogger := logging.WithStage(run.RequestID(), next.String())
	stageLogger.Debug().Msg("Stage entered")
}

func (o *Orchestrator) publishCompleted(ctx context.Context, result *models.PipelineResult) {
	if o.events == nil {
		return
	}
	event := models.PipelineCompleted{
		EventType:     "pipeline.completed",
		RequestID:     result.RequestID,
		Timestamp:     o.now().UnixMilli(),
		Intent:        string(result.Intent.Intent),
		Confidence:    result.Intent.Confidence,
		Handoff:       result.Intent.HandoffRecommended,
		AudioDegraded: result.AudioDegraded,
		DurationMS:    result.DurationMS,
	}
	if err := o.events.PublishCompleted(context.WithoutCancel(ctx), event); err != nil {
		logger := logging.WithRequest(result.RequestID)
		logger.Warn().Err(err).Msg("Completed event publish failed")
	}
}

func (o *Orchestrator) publishErrored(ctx context.Context, requestID, stage string, cause error) {
	if o.events == nil {
		return
	}
	event := models.PipelineErrored{
		EventType: "pipeline.errored",
		RequestID: requestID,
		Timestamp: o.now().UnixMilli(),
		Stage:     stage,
		Reason:    cause.Error(),
	}
	if err := o.events.PublishErrored(context.WithoutCancel(ctx), event); err != nil {
		logger := logging.WithRequest(requestID)
		logger.Warn().Err(err).Msg("Errored event publish failed")
	}
}

// stageCtxError maps a done stage context to the failure taxonomy.
func stageCtxError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrProviderTimeout
	}
	return ctx.Err()
}

// providerError wraps a provider error, preserving timeouts the provider
// detected itself. The original error stays in the chain so callers can
// still branch on provider sentinels like tts.ErrInvalidVoice.
func providerError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrProviderTimeout
	}
	return fmt.Errorf("%w: %w", ErrProviderFailure, err)
}
