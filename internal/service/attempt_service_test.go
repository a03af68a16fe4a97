package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/talenthub/abacus-api/config"
	"github.com/talenthub/abacus-api/internal/dto"
	"github.com/talenthub/abacus-api/internal/generator"
	"github.com/talenthub/abacus-api/internal/model"
	"gorm.io/gorm"
)

// fakeAttemptRepo keeps a single attempt row in memory and mirrors the real
// repository's finalize contract: the first finalize of an incomplete attempt
// wins, any later one writes nothing and reports false.
type fakeAttemptRepo struct {
	mu      sync.Mutex
	attempt model.PaperAttempt
	// rivalResult, when set, completes the row out from under the caller so
	// every finalize loses, simulating a concurrent delivery that committed
	// between the caller's read and its write.
	rivalResult *model.PaperAttempt
}

func (f *fakeAttemptRepo) Create(attempt *model.PaperAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	attempt.ID = 1
	f.attempt = *attempt
	return nil
}

func (f *fakeAttemptRepo) Update(attempt *model.PaperAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempt = *attempt
	return nil
}

func (f *fakeAttemptRepo) FindByIDAndUser(id, userID uint) (*model.PaperAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attempt.ID != id || f.attempt.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	row := f.attempt
	return &row, nil
}

func (f *fakeAttemptRepo) FindAllByUser(_ uint, _ int) ([]model.PaperAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return []model.PaperAttempt{f.attempt}, nil
}

func (f *fakeAttemptRepo) CountBySeedAndTitle(_ uint, _ int64, _ string) (int64, error) {
	return 0, nil
}

func (f *fakeAttemptRepo) FindStaleIncomplete(_ time.Time, _ *uint) ([]model.PaperAttempt, error) {
	return nil, nil
}

func (f *fakeAttemptRepo) FinalizeWithCredit(attempt *model.PaperAttempt, credit func(tx *gorm.DB) error) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rivalResult != nil && f.attempt.CompletedAt == nil {
		f.attempt = *f.rivalResult
	}
	if f.attempt.CompletedAt != nil {
		return false, nil
	}
	f.attempt = *attempt
	if err := credit(nil); err != nil {
		return false, err
	}
	return true, nil
}

type fakeUserRepo struct {
	mu            sync.Mutex
	creditCalls   int
	totalCredited int
}

func (f *fakeUserRepo) FindByID(id uint) (*model.User, error) {
	return &model.User{ID: id}, nil
}

func (f *fakeUserRepo) AddPoints(_ *gorm.DB, _ uint, points int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creditCalls++
	f.totalCredited += points
	return nil
}

func newSubmitFixture(t *testing.T) (*fakeAttemptRepo, *fakeUserRepo, AttemptService) {
	t.Helper()
	attemptRepo := &fakeAttemptRepo{
		attempt: model.PaperAttempt{
			ID:         1,
			UserID:     4,
			PaperTitle: "Drill - Custom",
			Seed:       12345,
			GeneratedBlocks: model.GeneratedBlocksJSON{
				{Questions: []generator.Question{{ID: 1, Answer: "42"}, {ID: 2, Answer: "7"}}},
			},
			TotalQuestions: 2,
			StartedAt:      time.Now().Add(-time.Minute),
		},
	}
	userRepo := &fakeUserRepo{}
	cfg := &config.Config{Practice: config.Practice{
		AttemptTimeout:   time.Hour,
		MaxAttempts:      2,
		GradingTolerance: 0.01,
		SubmitGrace:      2 * time.Second,
	}}
	return attemptRepo, userRepo, NewAttemptService(attemptRepo, userRepo, cfg)
}

func TestSubmitConcurrentDeliveriesCreditOnce(t *testing.T) {
	attemptRepo, userRepo, svc := newSubmitFixture(t)

	// One correct, one wrong: 2 attempted + 5x1 correct = 7 points.
	req := dto.AttemptSubmitDTO{Answers: map[string]string{"1": "42", "2": "9"}, TimeTaken: 30}

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan *dto.AttemptResponseDTO, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.Submit(1, 4, req)
			results <- resp
			errs <- err
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Submit: %v", err)
		}
	}
	for resp := range results {
		if resp == nil {
			continue
		}
		if resp.CorrectAnswers != 1 || resp.PointsEarned != 7 {
			t.Fatalf("result = %+v, want 1 correct / 7 points", resp)
		}
	}
	if userRepo.creditCalls != 1 {
		t.Fatalf("points credited %d times, want exactly once", userRepo.creditCalls)
	}
	if userRepo.totalCredited != 7 {
		t.Fatalf("total credited = %d, want 7", userRepo.totalCredited)
	}
	if attemptRepo.attempt.CompletedAt == nil {
		t.Fatal("attempt must be completed after submit")
	}
}

func TestSubmitLostFinalizeRaceReturnsStoredResult(t *testing.T) {
	attemptRepo, userRepo, svc := newSubmitFixture(t)

	now := time.Now()
	rival := attemptRepo.attempt
	rival.CorrectAnswers = 2
	rival.WrongAnswers = 0
	rival.Accuracy = 100
	rival.Score = 2
	rival.PointsEarned = 12
	rival.CompletedAt = &now
	attemptRepo.rivalResult = &rival

	resp, err := svc.Submit(1, 4, dto.AttemptSubmitDTO{Answers: map[string]string{"1": "41"}})
	if err != nil {
		t.Fatalf("Submit = %v, want the rival's stored result", err)
	}
	if resp.CorrectAnswers != 2 || resp.PointsEarned != 12 {
		t.Fatalf("result = %+v, want the rival's grading", resp)
	}
	if userRepo.creditCalls != 0 {
		t.Fatal("loser of the finalize race must not credit points")
	}
}

func TestSubmitDuplicateInsideGraceReturnsStoredResult(t *testing.T) {
	attemptRepo, userRepo, svc := newSubmitFixture(t)
	done := time.Now().Add(-500 * time.Millisecond)
	attemptRepo.attempt.CompletedAt = &done
	attemptRepo.attempt.PointsEarned = 9

	resp, err := svc.Submit(1, 4, dto.AttemptSubmitDTO{Answers: map[string]string{"1": "42"}})
	if err != nil {
		t.Fatalf("Submit = %v, want stored result", err)
	}
	if resp.PointsEarned != 9 {
		t.Fatalf("points = %d, want stored 9", resp.PointsEarned)
	}
	if userRepo.creditCalls != 0 {
		t.Fatal("duplicate delivery must not credit points again")
	}
}

func TestSubmitAfterGraceWindowRejected(t *testing.T) {
	attemptRepo, userRepo, svc := newSubmitFixture(t)
	done := time.Now().Add(-3 * time.Second)
	attemptRepo.attempt.CompletedAt = &done

	_, err := svc.Submit(1, 4, dto.AttemptSubmitDTO{Answers: map[string]string{"1": "42"}})
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("Submit = %v, want ErrAlreadyCompleted", err)
	}
	if userRepo.creditCalls != 0 {
		t.Fatal("rejected submit must not credit points")
	}
}
