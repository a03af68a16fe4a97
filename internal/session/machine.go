// Package session is the client-side runtime for one practice sitting: it
// holds the attempt lifecycle state machine, the crash-recovery snapshot
// store, and the HTTP client for the paper API.
package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/talenthub/abacus-api/internal/dto"
	"github.com/talenthub/abacus-api/internal/generator"
	"github.com/talenthub/abacus-api/internal/grading"
)

// State is the lifecycle position of the current sitting.
type State int

const (
	StateIdle State = iota
	StateStarted
	StateInProgress
	StateCompleted
	StateAborted
	StateRecovered
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarted:
		return "started"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	case StateRecovered:
		return "recovered"
	default:
		return "unknown"
	}
}

const (
	// DefaultSnapshotMaxAge bounds how old a snapshot may be before recovery
	// discards it without asking the server.
	DefaultSnapshotMaxAge = 30 * time.Minute

	presetLoadTimeout = 10 * time.Second
)

// Machine drives one attempt at a time. All state transitions happen under
// the mutex; the in-flight flags are set before any network call so a second
// caller is rejected immediately rather than racing the first.
type Machine struct {
	client         Client
	store          *SnapshotStore
	snapshotMaxAge time.Duration

	mu             sync.Mutex
	state          State
	attemptID      uint
	paper          dto.AttemptCreateDTO
	answers        map[string]string
	startedAt      time.Time
	startInFlight  bool
	submitInFlight bool
	presetCancel   context.CancelFunc
	presetGen      uint64
	autosaveStop   chan struct{}
}

func NewMachine(client Client, store *SnapshotStore) *Machine {
	return &Machine{
		client:         client,
		store:          store,
		snapshotMaxAge: DefaultSnapshotMaxAge,
		state:          StateIdle,
		answers:        make(map[string]string),
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// AttemptID returns the live attempt id, zero when none. The id lives here
// and nowhere else; display code must read it through the machine.
func (m *Machine) AttemptID() uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attemptID
}

// LoadPresets fetches the preset blocks for a level. A newer call cancels
// the previous one, so a slow response for a superseded level selection is
// discarded instead of overwriting the newer choice.
func (m *Machine) LoadPresets(ctx context.Context, level string) ([]generator.BlockConfig, error) {
	m.mu.Lock()
	if m.presetCancel != nil {
		m.presetCancel()
	}
	loadCtx, cancel := context.WithTimeout(ctx, presetLoadTimeout)
	m.presetCancel = cancel
	m.presetGen++
	gen := m.presetGen
	m.mu.Unlock()

	// Release this call's timer on return; the generation check keeps a
	// finished call from clobbering the cancel func a newer call installed.
	defer func() {
		cancel()
		m.mu.Lock()
		if m.presetGen == gen {
			m.presetCancel = nil
		}
		m.mu.Unlock()
	}()

	blocks, err := m.client.PresetBlocks(loadCtx, level)
	if loadCtx.Err() != nil {
		return nil, loadCtx.Err()
	}
	return blocks, err
}

// Compile previews the paper server-side and parks the compiled triple in
// the handoff slot so attempt creation can pick it up, even across a crash.
func (m *Machine) Compile(ctx context.Context, cfg dto.PaperConfigDTO) (*dto.PreviewResponseDTO, error) {
	preview, err := m.client.Preview(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pending := &PendingPaper{
		Request: dto.AttemptCreateDTO{
			PaperTitle: cfg.Title,
			PaperLevel: cfg.Level,
			PaperConfig: generator.PaperConfig{
				Title:       cfg.Title,
				Level:       cfg.Level,
				Blocks:      cfg.Blocks,
				Orientation: cfg.Orientation,
			},
			GeneratedBlocks: preview.Blocks,
			Seed:            preview.Seed,
		},
	}
	if err := m.store.SaveHandoff(pending); err != nil {
		return nil, err
	}
	return preview, nil
}

// Start creates a new attempt from the parked compiled paper. The handoff is
// consumed only after the server accepted the attempt; a failure keeps the
// compiled set for a retry.
func (m *Machine) Start(ctx context.Context) (*dto.AttemptResponseDTO, error) {
	m.mu.Lock()
	if m.startInFlight {
		m.mu.Unlock()
		return nil, ErrStartInFlight
	}
	m.startInFlight = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.startInFlight = false
		m.mu.Unlock()
	}()

	pending, err := m.store.PeekHandoff()
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, errors.New("no compiled paper to start")
	}

	resp, err := m.client.StartAttempt(ctx, pending.Request)
	if err != nil {
		return nil, err
	}

	if _, err := m.store.TakeHandoff(); err != nil {
		log.Warn().Err(err).Msg("Failed to consume pending paper after attempt creation")
	}

	m.mu.Lock()
	m.attemptID = resp.ID
	m.paper = pending.Request
	m.answers = make(map[string]string)
	m.startedAt = time.Time{}
	m.state = StateStarted
	m.mu.Unlock()

	m.saveSnapshot(false)
	return resp, nil
}

// Begin starts the local clock. It is a pure client-side transition and
// fails closed when no attempt id exists yet.
func (m *Machine) Begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attemptID == 0 {
		return ErrNoActiveAttempt
	}
	m.startedAt = time.Now()
	m.state = StateInProgress
	return nil
}

// SetAnswer records one answer and persists the snapshot. Writes after
// completion are dropped.
func (m *Machine) SetAnswer(questionID int, value string) {
	m.mu.Lock()
	if m.attemptID == 0 || m.state == StateCompleted || m.state == StateAborted {
		m.mu.Unlock()
		return
	}
	m.answers[strconv.Itoa(questionID)] = value
	m.mu.Unlock()

	m.saveSnapshot(false)
}

// Review grades the current answers locally for display while the student is
// still working. Server grading stays authoritative; this only reuses the
// same comparison policy so the review pane agrees with the final result.
func (m *Machine) Review() grading.Summary {
	m.mu.Lock()
	blocks := m.paper.GeneratedBlocks
	answers := make(map[string]string, len(m.answers))
	for k, v := range m.answers {
		answers[k] = v
	}
	m.mu.Unlock()

	return grading.GradeBlocks(blocks, answers, grading.DefaultTolerance)
}

// Answers returns a copy of the answers recorded so far.
func (m *Machine) Answers() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.answers))
	for k, v := range m.answers {
		out[k] = v
	}
	return out
}

// Submit finalizes the attempt. Protocol: status discovery first (another
// delivery may already have landed), then the actual submit with the locally
// measured duration, then on transport failure one more discovery before
// surfacing a retryable error. The in-flight guard is released on every exit.
// A walked-away session cannot submit; it has to pass through Resume or
// ReAttempt first.
func (m *Machine) Submit(ctx context.Context) (*dto.AttemptResponseDTO, error) {
	m.mu.Lock()
	if m.submitInFlight {
		m.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if m.attemptID == 0 || m.state == StateAborted {
		m.mu.Unlock()
		return nil, ErrNoActiveAttempt
	}
	m.submitInFlight = true
	attemptID := m.attemptID
	answers := make(map[string]string, len(m.answers))
	for k, v := range m.answers {
		answers[k] = v
	}
	var timeTaken float64
	if !m.startedAt.IsZero() {
		timeTaken = time.Since(m.startedAt).Seconds()
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.submitInFlight = false
		m.mu.Unlock()
	}()

	// Pre-flight discovery: an earlier delivery may already have completed
	// this attempt, and the stored result is then the real outcome.
	if detail, err := m.client.GetAttempt(ctx, attemptID); err == nil && detail.CompletedAt != nil {
		m.finalize(attemptID)
		return &detail.AttemptResponseDTO, nil
	}

	resp, err := m.client.SubmitAttempt(ctx, attemptID, dto.AttemptSubmitDTO{
		Answers:   answers,
		TimeTaken: timeTaken,
	})
	if err == nil {
		m.finalize(attemptID)
		return resp, nil
	}

	var terr *TransportError
	if errors.As(err, &terr) {
		// The submit may have landed before the connection broke; ask before
		// handing the caller a retryable error.
		if detail, derr := m.client.GetAttempt(ctx, attemptID); derr == nil && detail.CompletedAt != nil {
			m.finalize(attemptID)
			return &detail.AttemptResponseDTO, nil
		}
		return nil, terr
	}
	if errors.Is(err, ErrAlreadyCompleted) {
		detail, derr := m.client.GetAttempt(ctx, attemptID)
		m.finalize(attemptID)
		if derr == nil {
			return &detail.AttemptResponseDTO, nil
		}
		return nil, ErrAlreadyCompleted
	}
	return nil, err
}

// Abort keeps the snapshot but marks it, so a later visit can tell a
// deliberate walk-away from a finished or crashed session.
func (m *Machine) Abort() {
	m.mu.Lock()
	m.state = StateAborted
	m.mu.Unlock()

	m.stopAutosave()
	m.saveSnapshot(true)
}

// Recover checks for a resumable session. It never resumes by itself: a
// valid snapshot is returned as an offer and the caller decides. Anything
// stale, finished or unknown is discarded silently. A deliberately aborted
// session is still offered, with Aborted set, so the caller can tell a
// walk-away from a crash; it stays in the store until it is resumed,
// declined or overwritten.
func (m *Machine) Recover(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return nil, nil
	}
	m.mu.Unlock()

	snap, err := m.store.Restore()
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, nil
	}
	if snap.AttemptID == 0 {
		return nil, m.store.Clear()
	}

	// Local staleness first: no network for a snapshot that is too old to
	// be worth resuming.
	if time.Since(snap.SavedAt) > m.snapshotMaxAge {
		return nil, m.store.Clear()
	}

	validity, err := m.client.ValidateAttempt(ctx, snap.AttemptID)
	if err != nil || !validity.Valid {
		if err != nil {
			log.Debug().Err(err).Uint("attemptID", snap.AttemptID).Msg("Recovery liveness check failed, discarding snapshot")
		}
		return nil, m.store.Clear()
	}
	return snap, nil
}

// Resume accepts a recovery offer returned by Recover.
func (m *Machine) Resume(snap *Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attemptID = snap.AttemptID
	m.paper = dto.AttemptCreateDTO{
		PaperTitle:      snap.PaperConfig.Title,
		PaperLevel:      snap.PaperConfig.Level,
		PaperConfig:     snap.PaperConfig,
		GeneratedBlocks: snap.GeneratedBlocks,
		Seed:            snap.Seed,
	}
	m.answers = make(map[string]string, len(snap.Answers))
	for k, v := range snap.Answers {
		m.answers[k] = v
	}
	m.startedAt = snap.StartedAt
	m.state = StateRecovered
}

// DiscardRecovery declines a recovery offer and drops the snapshot.
func (m *Machine) DiscardRecovery() error {
	return m.store.Clear()
}

// ReAttempt starts a fresh attempt over the same compiled question set. The
// server hands out a new id; ids are never reused.
func (m *Machine) ReAttempt(ctx context.Context) (*dto.AttemptResponseDTO, error) {
	m.mu.Lock()
	if m.startInFlight {
		m.mu.Unlock()
		return nil, ErrStartInFlight
	}
	if m.paper.Seed == 0 && len(m.paper.GeneratedBlocks) == 0 {
		m.mu.Unlock()
		return nil, errors.New("no compiled paper to re-attempt")
	}
	m.startInFlight = true
	req := m.paper
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.startInFlight = false
		m.mu.Unlock()
	}()

	resp, err := m.client.StartAttempt(ctx, req)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.attemptID = resp.ID
	m.answers = make(map[string]string)
	m.startedAt = time.Time{}
	m.state = StateStarted
	m.mu.Unlock()

	m.saveSnapshot(false)
	return resp, nil
}

// StartAutosave persists the snapshot on a fixed interval until the attempt
// finishes or Abort stops it.
func (m *Machine) StartAutosave(interval time.Duration) {
	m.mu.Lock()
	if m.autosaveStop != nil {
		m.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	m.autosaveStop = stop
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.saveSnapshot(false)
			case <-stop:
				return
			}
		}
	}()
}

func (m *Machine) stopAutosave() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.autosaveStop != nil {
		close(m.autosaveStop)
		m.autosaveStop = nil
	}
}

// finalize is the single success path out of a submit: it invalidates the
// attempt id, clears the snapshot and stops autosaving. A stale finalize for
// an id the machine has already moved past leaves the new attempt alone.
func (m *Machine) finalize(attemptID uint) {
	m.mu.Lock()
	if m.attemptID == attemptID {
		m.attemptID = 0
		m.state = StateCompleted
	}
	m.mu.Unlock()

	m.stopAutosave()
	if err := m.store.Clear(); err != nil {
		log.Warn().Err(err).Msg("Failed to clear snapshot after completion")
	}
}

// saveSnapshot persists the current state. Never writes before an attempt id
// exists or after the attempt completed.
func (m *Machine) saveSnapshot(aborted bool) {
	m.mu.Lock()
	if m.attemptID == 0 || m.state == StateCompleted {
		m.mu.Unlock()
		return
	}
	snap := &Snapshot{
		AttemptID:       m.attemptID,
		PaperConfig:     m.paper.PaperConfig,
		GeneratedBlocks: m.paper.GeneratedBlocks,
		Seed:            m.paper.Seed,
		Answers:         make(map[string]string, len(m.answers)),
		StartedAt:       m.startedAt,
		Aborted:         aborted,
	}
	for k, v := range m.answers {
		snap.Answers[k] = v
	}
	m.mu.Unlock()

	if err := m.store.Save(snap); err != nil {
		log.Warn().Err(err).Msg("Failed to save session snapshot")
	}
}
