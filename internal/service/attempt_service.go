package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/talenthub/abacus-api/config"
	"github.com/talenthub/abacus-api/internal/dto"
	"github.com/talenthub/abacus-api/internal/generator"
	"github.com/talenthub/abacus-api/internal/grading"
	"github.com/talenthub/abacus-api/internal/model"
	"github.com/talenthub/abacus-api/internal/repository"
	"gorm.io/gorm"
)

// AttemptService drives the attempt lifecycle: start, submit, review,
// liveness checks and stale cleanup.
type AttemptService interface {
	Start(userID uint, req dto.AttemptCreateDTO) (*dto.AttemptResponseDTO, error)
	Submit(attemptID, userID uint, req dto.AttemptSubmitDTO) (*dto.AttemptResponseDTO, error)
	Get(attemptID, userID uint) (*dto.AttemptDetailResponseDTO, error)
	Validate(attemptID, userID uint) (*dto.AttemptValidityDTO, error)
	Count(userID uint, seed int64, paperTitle string) (*dto.AttemptCountDTO, error)
	History(userID uint) ([]dto.AttemptResponseDTO, error)
	SweepStale(userID *uint) (int, error)
}

type attemptService struct {
	attemptRepo repository.PaperAttemptRepository
	userRepo    repository.UserRepository
	cfg         config.Practice
}

func NewAttemptService(
	attemptRepo repository.PaperAttemptRepository,
	userRepo repository.UserRepository,
	cfg *config.Config,
) AttemptService {
	return &attemptService{
		attemptRepo: attemptRepo,
		userRepo:    userRepo,
		cfg:         cfg.Practice,
	}
}

// Start creates a new incomplete attempt from an already compiled paper. The
// (seed, title) pair identifies one compiled paper, and the quota is per user
// per paper, counting completed and incomplete attempts alike.
func (s *attemptService) Start(userID uint, req dto.AttemptCreateDTO) (*dto.AttemptResponseDTO, error) {
	count, err := s.attemptRepo.CountBySeedAndTitle(userID, req.Seed, req.PaperTitle)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Start: attempt count lookup failed")
		return nil, err
	}
	if count >= int64(s.cfg.MaxAttempts) {
		log.Warn().Uint("userID", userID).Int64("seed", req.Seed).
			Str("paperTitle", req.PaperTitle).Msg("Start: attempt quota exhausted")
		return nil, ErrMaxAttempts
	}

	total := 0
	for _, block := range req.GeneratedBlocks {
		total += len(block.Questions)
	}

	attempt := model.PaperAttempt{
		UserID:          userID,
		PaperTitle:      req.PaperTitle,
		PaperLevel:      req.PaperLevel,
		PaperConfig:     model.PaperConfigJSON(req.PaperConfig),
		GeneratedBlocks: model.GeneratedBlocksJSON(req.GeneratedBlocks),
		Seed:            req.Seed,
		TotalQuestions:  total,
		Answers:         model.AnswersJSON(req.Answers),
	}
	if err := s.attemptRepo.Create(&attempt); err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Start: failed to create attempt")
		return nil, err
	}

	log.Info().Uint("attemptID", attempt.ID).Uint("userID", userID).
		Int64("seed", attempt.Seed).Int("questions", total).Msg("Attempt started")
	return attemptToDTO(&attempt)
}

// Submit grades the answers against the frozen blocks and finalizes the
// attempt. A second delivery of the same submission inside the grace window
// returns the stored result instead of an error; anything later is rejected.
// The grading write and the points credit commit in one transaction, guarded
// so two concurrent deliveries can never both grade or double-credit points.
func (s *attemptService) Submit(attemptID, userID uint, req dto.AttemptSubmitDTO) (*dto.AttemptResponseDTO, error) {
	attempt, err := s.attemptRepo.FindByIDAndUser(attemptID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("Submit: lookup failed")
		return nil, err
	}

	if attempt.CompletedAt != nil {
		return s.storedResult(attempt)
	}

	summary := grading.GradeBlocks(attempt.GeneratedBlocks, req.Answers, s.cfg.GradingTolerance)

	now := time.Now()
	attempt.Answers = model.AnswersJSON(req.Answers)
	attempt.CorrectAnswers = summary.CorrectAnswers
	attempt.WrongAnswers = summary.WrongAnswers
	attempt.Accuracy = summary.Accuracy
	attempt.Score = summary.Score
	attempt.TimeTaken = &req.TimeTaken
	attempt.PointsEarned = summary.PointsEarned
	attempt.CompletedAt = &now

	won, err := s.attemptRepo.FinalizeWithCredit(attempt, func(tx *gorm.DB) error {
		if err := s.userRepo.AddPoints(tx, userID, summary.PointsEarned); err != nil {
			return fmt.Errorf("failed to credit points: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("Submit: transaction failed")
		return nil, err
	}
	if !won {
		// Another delivery finalized the attempt between our read and the
		// guarded write. Its stored result is the outcome of record.
		attempt, err = s.attemptRepo.FindByIDAndUser(attemptID, userID)
		if err != nil {
			log.Error().Err(err).Uint("attemptID", attemptID).Msg("Submit: lookup after lost finalize race failed")
			return nil, err
		}
		if attempt.CompletedAt == nil {
			return nil, ErrAlreadyCompleted
		}
		return s.storedResult(attempt)
	}

	log.Info().Uint("attemptID", attemptID).Uint("userID", userID).
		Int("correct", summary.CorrectAnswers).Int("wrong", summary.WrongAnswers).
		Int("points", summary.PointsEarned).Msg("Attempt submitted")
	return attemptToDTO(attempt)
}

// storedResult resolves a submit against an already completed attempt: a
// duplicate delivery inside the grace window gets the stored result back,
// anything later is rejected.
func (s *attemptService) storedResult(attempt *model.PaperAttempt) (*dto.AttemptResponseDTO, error) {
	sinceCompletion := time.Since(*attempt.CompletedAt)
	if sinceCompletion > s.cfg.SubmitGrace {
		log.Warn().Uint("attemptID", attempt.ID).Dur("sinceCompletion", sinceCompletion).
			Msg("Submit: attempt already completed, rejecting")
		return nil, ErrAlreadyCompleted
	}
	log.Info().Uint("attemptID", attempt.ID).Dur("sinceCompletion", sinceCompletion).
		Msg("Submit: duplicate delivery inside grace window, returning stored result")
	return attemptToDTO(attempt)
}

// Get returns the full attempt payload for review. An incomplete attempt that
// outlived the timeout is marked abandoned on the way out.
func (s *attemptService) Get(attemptID, userID uint) (*dto.AttemptDetailResponseDTO, error) {
	attempt, err := s.attemptRepo.FindByIDAndUser(attemptID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("Get: lookup failed")
		return nil, err
	}

	if attempt.CompletedAt == nil && time.Since(attempt.StartedAt) > s.cfg.AttemptTimeout {
		s.markAbandoned(attempt)
		if err := s.attemptRepo.Update(attempt); err != nil {
			log.Error().Err(err).Uint("attemptID", attemptID).Msg("Get: failed to mark attempt abandoned")
			return nil, err
		}
		log.Info().Uint("attemptID", attemptID).Msg("Marked stale attempt abandoned on access")
	}

	var resp dto.AttemptDetailResponseDTO
	if err := copier.Copy(&resp, attempt); err != nil {
		log.Error().Err(err).Msg("Error copying attempt to detail DTO")
		return nil, fmt.Errorf("error preparing response: %w", err)
	}
	resp.PaperConfig = generator.PaperConfig(attempt.PaperConfig)
	resp.GeneratedBlocks = attempt.GeneratedBlocks
	resp.Answers = attempt.Answers
	return &resp, nil
}

// Validate is the liveness probe used before resuming a recovered session.
func (s *attemptService) Validate(attemptID, userID uint) (*dto.AttemptValidityDTO, error) {
	attempt, err := s.attemptRepo.FindByIDAndUser(attemptID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.AttemptValidityDTO{Valid: false, Reason: "not_found"}, nil
		}
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("Validate: lookup failed")
		return nil, err
	}

	if attempt.CompletedAt != nil {
		return &dto.AttemptValidityDTO{Valid: false, Reason: "completed"}, nil
	}
	if time.Since(attempt.StartedAt) > s.cfg.AttemptTimeout {
		return &dto.AttemptValidityDTO{Valid: false, Reason: "expired"}, nil
	}

	expiresAt := attempt.StartedAt.Add(s.cfg.AttemptTimeout)
	return &dto.AttemptValidityDTO{Valid: true, ExpiresAt: &expiresAt}, nil
}

func (s *attemptService) Count(userID uint, seed int64, paperTitle string) (*dto.AttemptCountDTO, error) {
	count, err := s.attemptRepo.CountBySeedAndTitle(userID, seed, paperTitle)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Count: lookup failed")
		return nil, err
	}
	return &dto.AttemptCountDTO{
		Count:        count,
		CanReattempt: count < int64(s.cfg.MaxAttempts),
		MaxAttempts:  s.cfg.MaxAttempts,
	}, nil
}

func (s *attemptService) History(userID uint) ([]dto.AttemptResponseDTO, error) {
	attempts, err := s.attemptRepo.FindAllByUser(userID, 10)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("History: lookup failed")
		return nil, err
	}
	dtos := make([]dto.AttemptResponseDTO, 0, len(attempts))
	for i := range attempts {
		d, err := attemptToDTO(&attempts[i])
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *d)
	}
	return dtos, nil
}

// SweepStale marks every incomplete attempt older than the timeout as
// abandoned. With a nil userID it sweeps the whole table (startup); with a
// userID it sweeps just that user's attempts.
func (s *attemptService) SweepStale(userID *uint) (int, error) {
	threshold := time.Now().Add(-s.cfg.AttemptTimeout)
	stale, err := s.attemptRepo.FindStaleIncomplete(threshold, userID)
	if err != nil {
		log.Error().Err(err).Msg("SweepStale: lookup failed")
		return 0, err
	}
	for i := range stale {
		s.markAbandoned(&stale[i])
		if err := s.attemptRepo.Update(&stale[i]); err != nil {
			log.Error().Err(err).Uint("attemptID", stale[i].ID).Msg("SweepStale: failed to mark attempt abandoned")
			return 0, err
		}
	}
	if len(stale) > 0 {
		log.Info().Int("count", len(stale)).Msg("Swept stale incomplete attempts")
	}
	return len(stale), nil
}

// markAbandoned finalizes a timed-out attempt with zeroed results. This is
// the only path besides grading that sets CompletedAt.
func (s *attemptService) markAbandoned(attempt *model.PaperAttempt) {
	now := time.Now()
	attempt.CompletedAt = &now
	attempt.CorrectAnswers = 0
	attempt.WrongAnswers = 0
	attempt.Accuracy = 0
	attempt.Score = 0
	attempt.PointsEarned = 0
}

func attemptToDTO(attempt *model.PaperAttempt) (*dto.AttemptResponseDTO, error) {
	var resp dto.AttemptResponseDTO
	if err := copier.Copy(&resp, attempt); err != nil {
		log.Error().Err(err).Msg("Error copying attempt to DTO")
		return nil, fmt.Errorf("error preparing response: %w", err)
	}
	return &resp, nil
}
