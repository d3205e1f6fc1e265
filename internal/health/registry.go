// Package health tracks the readiness of the swappable capability
// providers (transcription, classification, synthesis) for the readiness
// endpoint.
package health

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"frontoffice-voice-console/internal/models"
	"frontoffice-voice-console/internal/observability/logging"
	"frontoffice-voice-console/internal/observability/metrics"
)

// Role names one capability slot in the registry.
type Role string

const (
	RoleTranscription  Role = "transcription"
	RoleClassification Role = "classification"
	RoleSynthesis      Role = "synthesis"
)

// Probe reports whether a provider can currently serve requests.
type Probe func(ctx context.Context) bool

// Registry is the process-wide readiness state. All writes go through
// Update; reads take the shared lock only briefly, and a status one poll
// interval old is an accepted staleness bound, not a correctness issue.
type Registry struct {
	mu       sync.RWMutex
	statuses map[Role]models.ProviderStatus
	probes   map[Role]Probe
	metrics  *metrics.Metrics
}

// NewRegistry creates a registry with every role marked not-ready until
// its first probe.
func NewRegistry(m *metrics.Metrics) *Registry {
	statuses := make(map[Role]models.ProviderStatus, 3)
	for _, role := range []Role{RoleTranscription, RoleClassification, RoleSynthesis} {
		statuses[role] = models.ProviderStatus{Ready: false}
	}
	return &Registry{
		statuses: statuses,
		probes:   make(map[Role]Probe, 3),
		metrics:  m,
	}
}

// Register attaches the probe for a role. Must be called before Poll.
func (r *Registry) Register(role Role, probe Probe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probes[role] = probe
}

// Update is the single write path for readiness state.
func (r *Registry) Update(role Role, ready bool) {
	r.mu.Lock()
	r.statuses[role] = models.ProviderStatus{Ready: ready, LastChecked: time.Now().UTC()}
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.RecordProviderProbe(string(role), ready)
	}
}

// Status returns one role's last known state.
func (r *Registry) Status(role Role) models.ProviderStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.statuses[role]
}

// Snapshot returns a copy of the full readiness state.
func (r *Registry) Snapshot() map[Role]models.ProviderStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Role]models.ProviderStatus, len(r.statuses))
	for role, st := range r.statuses {
		out[role] = st
	}
	return out
}

// AllReady reports whether every role passed its last probe.
func (r *Registry) AllReady() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, st := range r.statuses {
		if !st.Ready {
			return false
		}
	}
	return true
}

// CheckNow runs every registered probe once and updates the registry.
func (r *Registry) CheckNow(ctx context.Context) {
	r.mu.RLock()
	probes := make(map[Role]Probe, len(r.probes))
	for role, p := range r.probes {
		probes[role] = p
	}
	r.mu.RUnlock()

	for role, probe := range probes {
		r.Update(role, probe(ctx))
	}
}

// Poll probes all providers at the given interval until ctx is cancelled.
// Meant to run in its own goroutine; the request path never mutates the
// registry.
func (r *Registry) Poll(ctx context.Context, interval time.Duration) {
	logger := logging.WithComponent("health-registry")
	logger.Info().Dur("interval", interval).Msg("Health polling started")

	r.CheckNow(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Health polling stopped")
			return
		case <-ticker.C:
			r.CheckNow(ctx)
		}
	}
}

// WaitReady blocks until every provider reports ready, retrying probes
// with exponential backoff, or until ctx is cancelled. Used as a startup
// gate so the service does not advertise readiness before its providers
// answer.
func (r *Registry) WaitReady(ctx context.Context) error {
	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)

	return backoff.Retry(func() error {
		r.CheckNow(ctx)
		if !r.AllReady() {
			return errNotReady
		}
		return nil
	}, policy)
}

var errNotReady = errors.New("providers not ready")
