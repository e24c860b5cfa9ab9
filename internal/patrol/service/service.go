// Package service holds the live roster and serializes every mutation
// through the validator. It is the single source of truth while a roster is
// being edited; gateways and observers only ever see snapshots of it, so
// nothing outside this package aliases the live state.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"patrolboard/internal/audit"
	"patrolboard/internal/patrol/diagnostics"
	"patrolboard/internal/patrol/metrics"
	"patrolboard/internal/patrol/models"
	id "patrolboard/pkg/domain"
	"patrolboard/pkg/requestcontext"
)

// Gateway is the persistence boundary. Load and Regenerate replace the
// roster wholesale; the balanced-assignment heuristic behind Regenerate
// lives entirely on the other side of this interface.
type Gateway interface {
	Load(ctx context.Context, tournamentID id.TournamentID) (*models.Roster, error)
	Save(ctx context.Context, tournamentID id.TournamentID, roster *models.Roster) error
	Regenerate(ctx context.Context, tournamentID id.TournamentID) (*models.Roster, error)
}

// DraftCache stores dirty rosters between saves so a crashed session can
// recover unsaved edits. All calls are best-effort from the service's point
// of view.
type DraftCache interface {
	Put(ctx context.Context, tournamentID id.TournamentID, roster *models.Roster) error
	Get(ctx context.Context, tournamentID id.TournamentID) (*models.Roster, error)
	Delete(ctx context.Context, tournamentID id.TournamentID) error
}

// AuditPublisher receives roster edit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// EventKind names a roster lifecycle event delivered to subscribers.
type EventKind string

const (
	EventLoaded      EventKind = "loaded"
	EventMoved       EventKind = "moved"
	EventRoleChanged EventKind = "role-changed"
	EventSaved       EventKind = "saved"
	EventRegenerated EventKind = "regenerated"
)

// RosterEvent is pushed to subscribers after a mutation commits. The
// snapshot is an independent copy; observers may hold it indefinitely.
type RosterEvent struct {
	Kind     EventKind
	Snapshot Snapshot
}

// Snapshot is a point-in-time copy of the editing state.
type Snapshot struct {
	Roster   *models.Roster     `json:"roster"`
	Warnings []models.Warning   `json:"warnings"`
	Stats    models.PatrolStats `json:"stats"`
	Dirty    bool               `json:"dirty"`
}

// MoveResult is the outcome of a move request: either a rejection with a
// reason for transient display, or acceptance with the validator's
// advisories and the recomputed warning list.
type MoveResult struct {
	Accepted   bool             `json:"accepted"`
	Reason     string           `json:"reason,omitempty"`
	Advisories []string         `json:"advisories,omitempty"`
	Warnings   []models.Warning `json:"warnings,omitempty"`
}

// RosterService orchestrates roster editing for a single tournament
// session. Mutations are serialized through one mutex; gateway I/O runs
// outside it so the editing surface stays responsive during saves.
type RosterService struct {
	gateway        Gateway
	drafts         DraftCache
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer

	mu           sync.Mutex
	tournamentID id.TournamentID
	roster       *models.Roster
	warnings     []models.Warning
	stats        models.PatrolStats
	dirty        bool
	// generation counts accepted mutations; Save clears dirty only when no
	// mutation landed while its gateway call was in flight.
	generation   uint64
	regenerating bool
	subscribers  []func(RosterEvent)
}

type Option func(s *RosterService)

func WithLogger(logger *slog.Logger) Option {
	return func(s *RosterService) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *RosterService) { s.auditPublisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *RosterService) { s.metrics = m }
}

func WithDraftCache(cache DraftCache) Option {
	return func(s *RosterService) { s.drafts = cache }
}

// New constructs a RosterService around a persistence gateway.
func New(gateway Gateway, opts ...Option) *RosterService {
	s := &RosterService{
		gateway: gateway,
		logger:  slog.Default(),
		tracer:  otel.Tracer("patrolboard/patrol"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers an observer for roster events. Callbacks run
// synchronously after the mutation commits, outside the service lock.
func (s *RosterService) Subscribe(fn func(RosterEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Snapshot returns an independent copy of the current editing state.
func (s *RosterService) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roster == nil {
		return Snapshot{}, errNoRoster()
	}
	return s.snapshotLocked(), nil
}

// Warnings returns a copy of the current warning list.
func (s *RosterService) Warnings() ([]models.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roster == nil {
		return nil, errNoRoster()
	}
	return slices.Clone(s.warnings), nil
}

// Stats returns the quality snapshot. The stored snapshot is only refreshed
// on load/regenerate; pass recompute to derive fresh numbers from the
// current state.
func (s *RosterService) Stats(recompute bool) (models.PatrolStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roster == nil {
		return models.PatrolStats{}, errNoRoster()
	}
	if recompute {
		return diagnostics.ComputeStats(s.roster), nil
	}
	return s.stats, nil
}

// LoadedTournament reports which tournament the service is editing.
func (s *RosterService) LoadedTournament() (id.TournamentID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tournamentID, s.roster != nil
}

// Dirty reports whether the roster has unsaved changes.
func (s *RosterService) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// snapshotLocked must be called with the lock held.
func (s *RosterService) snapshotLocked() Snapshot {
	return Snapshot{
		Roster:   s.roster.Clone(),
		Warnings: slices.Clone(s.warnings),
		Stats:    s.stats,
		Dirty:    s.dirty,
	}
}

// recomputeLocked refreshes warnings after a mutation. Stats are
// deliberately not refreshed here; see Stats.
func (s *RosterService) recomputeLocked() {
	s.warnings = diagnostics.RecomputeWarnings(s.roster)
	if s.metrics != nil {
		counts := map[models.Severity]int{}
		for _, w := range s.warnings {
			counts[w.Severity]++
		}
		for _, sev := range []models.Severity{models.SeverityError, models.SeverityWarning, models.SeverityInfo} {
			s.metrics.Warnings.WithLabelValues(string(sev)).Set(float64(counts[sev]))
		}
	}
}

// notify delivers an event to subscribers. Call without the lock held.
func (s *RosterService) notify(kind EventKind, snap Snapshot, subscribers []func(RosterEvent)) {
	for _, fn := range subscribers {
		fn(RosterEvent{Kind: kind, Snapshot: snap})
	}
}

// writeDraft persists the dirty roster for crash recovery. Best-effort: a
// cache failure is logged and the mutation stands.
func (s *RosterService) writeDraft(ctx context.Context, snap Snapshot) {
	if s.drafts == nil {
		return
	}
	if err := s.drafts.Put(ctx, snap.Roster.TournamentID, snap.Roster); err != nil {
		s.logger.WarnContext(ctx, "draft write failed",
			"tournament_id", snap.Roster.TournamentID,
			"error", err,
		)
	}
}

// clearDraft removes the recovery draft after a successful save or
// regenerate. Best-effort.
func (s *RosterService) clearDraft(ctx context.Context, tournamentID id.TournamentID) {
	if s.drafts == nil {
		return
	}
	if err := s.drafts.Delete(ctx, tournamentID); err != nil {
		s.logger.WarnContext(ctx, "draft delete failed",
			"tournament_id", tournamentID,
			"error", err,
		)
	}
}

// emitAudit records a roster edit. Best-effort: the audit trail never fails
// an operation.
func (s *RosterService) emitAudit(ctx context.Context, action audit.Action, tournamentID id.TournamentID, attrs ...func(*audit.Event)) {
	if s.auditPublisher == nil {
		return
	}
	event := audit.Event{
		Timestamp:    requestcontext.Now(ctx),
		Action:       action,
		TournamentID: tournamentID.String(),
		ActorIP:      requestcontext.ClientIP(ctx),
		RequestID:    requestcontext.RequestID(ctx),
	}
	for _, apply := range attrs {
		apply(&event)
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", string(action), "error", err)
	}
}

func withPatrol(patrolID id.PatrolID) func(*audit.Event) {
	return func(e *audit.Event) { e.PatrolID = patrolID.String() }
}

func withMember(memberID id.ParticipantID) func(*audit.Event) {
	return func(e *audit.Event) { e.MemberID = memberID.String() }
}

func withDetail(detail string) func(*audit.Event) {
	return func(e *audit.Event) { e.Detail = detail }
}
