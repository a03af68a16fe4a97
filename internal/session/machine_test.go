package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/talenthub/abacus-api/internal/dto"
	"github.com/talenthub/abacus-api/internal/generator"
)

// fakeClient scripts the server's side of the protocol.
type fakeClient struct {
	mu sync.Mutex

	submitCalls int
	startCalls  int
	nextID      uint

	completedAt *time.Time
	submitErr   error
	// completeOnSubmit simulates a submit whose write landed even though the
	// response was lost.
	completeOnSubmit bool

	validity dto.AttemptValidityDTO

	presetHold chan struct{}
	presetCtx  context.Context
}

func (f *fakeClient) Preview(_ context.Context, req dto.PaperConfigDTO) (*dto.PreviewResponseDTO, error) {
	return &dto.PreviewResponseDTO{
		Blocks: []generator.GeneratedBlock{{Questions: []generator.Question{{ID: 1, Answer: "42"}}}},
		Seed:   12345,
	}, nil
}

func (f *fakeClient) PresetBlocks(ctx context.Context, level string) ([]generator.BlockConfig, error) {
	f.mu.Lock()
	f.presetCtx = ctx
	f.mu.Unlock()
	// Only the first level's load is held back, simulating a slow response
	// for a selection the user has already moved past.
	if f.presetHold != nil && level == "AB-1" {
		select {
		case <-f.presetHold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []generator.BlockConfig{{ID: level, Type: "addition", Count: 5}}, nil
}

func (f *fakeClient) StartAttempt(_ context.Context, req dto.AttemptCreateDTO) (*dto.AttemptResponseDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	f.nextID++
	return &dto.AttemptResponseDTO{ID: f.nextID, Seed: req.Seed, PaperTitle: req.PaperTitle}, nil
}

func (f *fakeClient) SubmitAttempt(_ context.Context, attemptID uint, req dto.AttemptSubmitDTO) (*dto.AttemptResponseDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitCalls++
	if f.completedAt != nil {
		return nil, ErrAlreadyCompleted
	}
	if f.submitErr != nil {
		if f.completeOnSubmit {
			now := time.Now()
			f.completedAt = &now
		}
		return nil, f.submitErr
	}
	now := time.Now()
	f.completedAt = &now
	return &dto.AttemptResponseDTO{ID: attemptID, CompletedAt: f.completedAt}, nil
}

func (f *fakeClient) GetAttempt(_ context.Context, attemptID uint) (*dto.AttemptDetailResponseDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dto.AttemptDetailResponseDTO{
		AttemptResponseDTO: dto.AttemptResponseDTO{ID: attemptID, CompletedAt: f.completedAt},
	}, nil
}

func (f *fakeClient) ValidateAttempt(_ context.Context, _ uint) (*dto.AttemptValidityDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &f.validity, nil
}

func (f *fakeClient) AttemptCount(_ context.Context, _ int64, _ string) (*dto.AttemptCountDTO, error) {
	return &dto.AttemptCountDTO{Count: 0, CanReattempt: true, MaxAttempts: 2}, nil
}

func newTestMachine(t *testing.T, client Client) (*Machine, *SnapshotStore) {
	t.Helper()
	store, err := NewSnapshotStore(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewMachine(client, store), store
}

func startAttempt(t *testing.T, m *Machine) {
	t.Helper()
	ctx := context.Background()
	if _, err := m.Compile(ctx, dto.PaperConfigDTO{Title: "Drill", Level: "Custom"}); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
}

func TestBeginFailsClosedWithoutAttempt(t *testing.T) {
	m, _ := newTestMachine(t, &fakeClient{})
	if err := m.Begin(); !errors.Is(err, ErrNoActiveAttempt) {
		t.Fatalf("Begin without attempt = %v, want ErrNoActiveAttempt", err)
	}
	if m.State() != StateIdle {
		t.Fatalf("state = %v, want idle", m.State())
	}
}

func TestSubmitExactlyOnceUnderConcurrency(t *testing.T) {
	fake := &fakeClient{}
	m, _ := newTestMachine(t, fake)
	startAttempt(t, m)
	m.SetAnswer(1, "42")

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Submit(context.Background())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		if !errors.Is(err, ErrSubmitInFlight) && !errors.Is(err, ErrNoActiveAttempt) {
			t.Errorf("unexpected submit error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("successful submits = %d, want exactly 1", successes)
	}
	if fake.submitCalls != 1 {
		t.Fatalf("server submit calls = %d, want exactly 1", fake.submitCalls)
	}
	if m.State() != StateCompleted {
		t.Fatalf("state = %v, want completed", m.State())
	}
	if m.AttemptID() != 0 {
		t.Fatalf("attempt id = %d, want invalidated", m.AttemptID())
	}
}

func TestSubmitDiscoveryAfterTransportFailure(t *testing.T) {
	fake := &fakeClient{
		submitErr:        &TransportError{Op: "PUT", Err: errors.New("connection reset")},
		completeOnSubmit: true,
	}
	m, store := newTestMachine(t, fake)
	startAttempt(t, m)

	resp, err := m.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit = %v, want success via discovery", err)
	}
	if resp.CompletedAt == nil {
		t.Fatal("discovered result should carry completed_at")
	}
	if fake.submitCalls != 1 {
		t.Fatalf("server submit calls = %d, want 1", fake.submitCalls)
	}

	snap, err := store.Restore()
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if snap != nil {
		t.Fatal("snapshot should be cleared after completion")
	}
}

func TestSubmitTransportErrorReleasesGuard(t *testing.T) {
	fake := &fakeClient{
		submitErr: &TransportError{Op: "PUT", Err: errors.New("timeout")},
	}
	m, _ := newTestMachine(t, fake)
	startAttempt(t, m)

	var terr *TransportError
	if _, err := m.Submit(context.Background()); !errors.As(err, &terr) {
		t.Fatalf("Submit = %v, want TransportError", err)
	}
	if m.AttemptID() == 0 {
		t.Fatal("attempt id must survive a retryable failure")
	}

	// Guard must be released: a retry reaches the server again.
	fake.mu.Lock()
	fake.submitErr = nil
	fake.mu.Unlock()
	if _, err := m.Submit(context.Background()); err != nil {
		t.Fatalf("retry after transport failure = %v, want success", err)
	}
	if fake.submitCalls != 2 {
		t.Fatalf("server submit calls = %d, want 2", fake.submitCalls)
	}
}

func TestRecoveryOfferNotAutoResumed(t *testing.T) {
	fake := &fakeClient{validity: dto.AttemptValidityDTO{Valid: true}}
	m, store := newTestMachine(t, fake)

	err := store.Save(&Snapshot{
		AttemptID:   7,
		PaperConfig: generator.PaperConfig{Title: "Drill", Level: "AB-3"},
		Seed:        99,
		Answers:     map[string]string{"1": "12"},
		StartedAt:   time.Now().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	snap, err := m.Recover(context.Background())
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if snap == nil {
		t.Fatal("expected a recovery offer")
	}
	if m.State() != StateIdle {
		t.Fatalf("state after offer = %v, want idle (never auto-resume)", m.State())
	}

	m.Resume(snap)
	if m.State() != StateRecovered {
		t.Fatalf("state after Resume = %v, want recovered", m.State())
	}
	if m.AttemptID() != 7 {
		t.Fatalf("attempt id = %d, want 7", m.AttemptID())
	}
	if got := m.Answers()["1"]; got != "12" {
		t.Fatalf("restored answer = %q, want %q", got, "12")
	}
}

func TestRecoveryDiscardsStaleSnapshotWithoutNetwork(t *testing.T) {
	fake := &fakeClient{validity: dto.AttemptValidityDTO{Valid: true}}
	m, store := newTestMachine(t, fake)
	m.snapshotMaxAge = time.Millisecond

	if err := store.Save(&Snapshot{AttemptID: 7}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	snap, err := m.Recover(context.Background())
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if snap != nil {
		t.Fatal("stale snapshot must be discarded")
	}
	if remaining, _ := store.Restore(); remaining != nil {
		t.Fatal("stale snapshot must be cleared from the store")
	}
}

func TestRecoveryDiscardsServerRejectedSnapshot(t *testing.T) {
	for _, reason := range []string{"not_found", "completed", "expired"} {
		t.Run(reason, func(t *testing.T) {
			fake := &fakeClient{validity: dto.AttemptValidityDTO{Valid: false, Reason: reason}}
			m, store := newTestMachine(t, fake)

			if err := store.Save(&Snapshot{AttemptID: 7}); err != nil {
				t.Fatalf("Save: %v", err)
			}
			snap, err := m.Recover(context.Background())
			if err != nil {
				t.Fatalf("Recover: %v", err)
			}
			if snap != nil {
				t.Fatalf("snapshot rejected with %q must not be offered", reason)
			}
			if remaining, _ := store.Restore(); remaining != nil {
				t.Fatal("rejected snapshot must be cleared")
			}
		})
	}
}

func TestRecoveryOffersAbortedSnapshot(t *testing.T) {
	fake := &fakeClient{validity: dto.AttemptValidityDTO{Valid: true}}
	m, store := newTestMachine(t, fake)
	startAttempt(t, m)
	m.SetAnswer(1, "42")
	m.Abort()

	// A later visit sees the walk-away marker, not a silent discard.
	m2 := NewMachine(fake, store)
	snap, err := m2.Recover(context.Background())
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if snap == nil {
		t.Fatal("aborted session must still be offered for recovery")
	}
	if !snap.Aborted {
		t.Fatal("offer must carry the aborted marker")
	}
	if got := snap.Answers["1"]; got != "42" {
		t.Fatalf("restored answer = %q, want %q", got, "42")
	}

	// The snapshot survives the offer; it leaves the store only on an
	// explicit decision or a new session overwriting it.
	remaining, err := store.Restore()
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if remaining == nil || !remaining.Aborted {
		t.Fatal("aborted snapshot must stay in the store after Recover")
	}

	m2.Resume(snap)
	if m2.State() != StateRecovered {
		t.Fatalf("state after Resume = %v, want recovered", m2.State())
	}
}

func TestSubmitRejectedAfterAbort(t *testing.T) {
	fake := &fakeClient{}
	m, _ := newTestMachine(t, fake)
	startAttempt(t, m)
	m.Abort()

	if _, err := m.Submit(context.Background()); !errors.Is(err, ErrNoActiveAttempt) {
		t.Fatalf("Submit after Abort = %v, want ErrNoActiveAttempt", err)
	}
	if fake.submitCalls != 0 {
		t.Fatalf("server submit calls = %d, want 0", fake.submitCalls)
	}
}

func TestReAttemptGetsFreshID(t *testing.T) {
	fake := &fakeClient{}
	m, _ := newTestMachine(t, fake)
	startAttempt(t, m)
	firstID := m.AttemptID()

	if _, err := m.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	fake.mu.Lock()
	fake.completedAt = nil
	fake.mu.Unlock()

	resp, err := m.ReAttempt(context.Background())
	if err != nil {
		t.Fatalf("ReAttempt: %v", err)
	}
	if resp.ID == firstID {
		t.Fatalf("re-attempt reused id %d", resp.ID)
	}
	if m.State() != StateStarted {
		t.Fatalf("state = %v, want started", m.State())
	}
	if len(m.Answers()) != 0 {
		t.Fatal("re-attempt must start with empty answers")
	}
}

func TestReviewGradesLocally(t *testing.T) {
	fake := &fakeClient{}
	m, _ := newTestMachine(t, fake)
	startAttempt(t, m)

	m.SetAnswer(1, "42")
	summary := m.Review()
	if summary.CorrectAnswers != 1 || summary.WrongAnswers != 0 {
		t.Fatalf("Review = %+v, want 1 correct", summary)
	}

	m.SetAnswer(1, "41")
	if summary := m.Review(); summary.WrongAnswers != 1 {
		t.Fatalf("Review = %+v, want 1 wrong", summary)
	}
}

func TestPresetLoadSupersededIsDiscarded(t *testing.T) {
	hold := make(chan struct{})
	fake := &fakeClient{presetHold: hold}
	m, _ := newTestMachine(t, fake)

	firstErr := make(chan error, 1)
	go func() {
		_, err := m.LoadPresets(context.Background(), "AB-1")
		firstErr <- err
	}()

	// Give the first load time to install its cancel func.
	time.Sleep(20 * time.Millisecond)

	blocks, err := m.LoadPresets(context.Background(), "AB-2")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if blocks[0].ID != "AB-2" {
		t.Fatalf("second load returned %q, want AB-2", blocks[0].ID)
	}

	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("superseded load = %v, want context.Canceled", err)
	}
	close(hold)
}

func TestPresetLoadReleasesItsContext(t *testing.T) {
	fake := &fakeClient{}
	m, _ := newTestMachine(t, fake)

	if _, err := m.LoadPresets(context.Background(), "AB-2"); err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}

	fake.mu.Lock()
	loadCtx := fake.presetCtx
	fake.mu.Unlock()
	if loadCtx.Err() == nil {
		t.Fatal("completed load must cancel its timeout context on return")
	}

	// And the released context must not poison the next load.
	if _, err := m.LoadPresets(context.Background(), "AB-3"); err != nil {
		t.Fatalf("follow-up load: %v", err)
	}
}
