package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/talenthub/abacus-api/internal/dto"
	"github.com/talenthub/abacus-api/internal/middleware"
	"github.com/talenthub/abacus-api/internal/service"
)

// StartAttemptHandler godoc
// @Summary Start a paper attempt
// @Description Freeze a compiled paper (config, blocks, seed) into a new incomplete attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attempt body dto.AttemptCreateDTO true "Compiled paper payload"
// @Success 201 {object} dto.AttemptResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid body or attempt quota reached"
// @Failure 401 {object} dto.ErrorResponse
// @Router /papers/attempt [post]
func (ctrl *Controller) StartAttemptHandler(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
		return
	}

	var req dto.AttemptCreateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind AttemptCreateDTO")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := ctrl.attemptSvc.Start(userID, req)
	if err != nil {
		if errors.Is(err, service.ErrMaxAttempts) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Maximum attempts reached for this paper"})
			return
		}
		log.Error().Err(err).Uint("userID", userID).Msg("Failed to start attempt")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to start attempt"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SubmitAttemptHandler godoc
// @Summary Submit answers for an attempt
// @Description Grade the answers and finalize the attempt; a duplicate delivery inside the grace window returns the stored result
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attempt_id path int true "Attempt ID"
// @Param submission body dto.AttemptSubmitDTO true "Answers and client-measured duration"
// @Success 200 {object} dto.AttemptResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Attempt already completed"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /papers/attempt/{attempt_id} [put]
func (ctrl *Controller) SubmitAttemptHandler(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
		return
	}
	attemptID, err := strconv.ParseUint(c.Param("attempt_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid attempt ID format"})
		return
	}

	var req dto.AttemptSubmitDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind AttemptSubmitDTO")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := ctrl.attemptSvc.Submit(uint(attemptID), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Attempt not found"})
		case errors.Is(err, service.ErrAlreadyCompleted):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Attempt already completed"})
		default:
			log.Error().Err(err).Uint64("attemptID", attemptID).Msg("Failed to submit attempt")
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to submit attempt"})
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetAttemptHandler godoc
// @Summary Get attempt details
// @Description Full attempt payload for review; a timed-out incomplete attempt is marked abandoned on access
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptDetailResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /papers/attempt/{attempt_id} [get]
func (ctrl *Controller) GetAttemptHandler(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
		return
	}
	attemptID, err := strconv.ParseUint(c.Param("attempt_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid attempt ID format"})
		return
	}

	resp, err := ctrl.attemptSvc.Get(uint(attemptID), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Attempt not found"})
			return
		}
		log.Error().Err(err).Uint64("attemptID", attemptID).Msg("Failed to get attempt")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get attempt"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ValidateAttemptHandler godoc
// @Summary Check whether an attempt can be resumed
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptValidityDTO
// @Router /papers/attempt/{attempt_id}/validate [get]
func (ctrl *Controller) ValidateAttemptHandler(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
		return
	}
	attemptID, err := strconv.ParseUint(c.Param("attempt_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid attempt ID format"})
		return
	}

	resp, err := ctrl.attemptSvc.Validate(uint(attemptID), userID)
	if err != nil {
		log.Error().Err(err).Uint64("attemptID", attemptID).Msg("Failed to validate attempt")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to validate attempt"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetAttemptCountHandler godoc
// @Summary Count attempts for one compiled paper
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param seed query int true "Paper seed"
// @Param paper_title query string true "Paper title"
// @Success 200 {object} dto.AttemptCountDTO
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid query params"
// @Router /papers/attempt-count [get]
func (ctrl *Controller) GetAttemptCountHandler(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
		return
	}
	seed, err := strconv.ParseInt(c.Query("seed"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid seed"})
		return
	}
	paperTitle := c.Query("paper_title")
	if paperTitle == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "paper_title is required"})
		return
	}

	resp, err := ctrl.attemptSvc.Count(userID, seed, paperTitle)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Failed to count attempts")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to count attempts"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetAttemptHistoryHandler godoc
// @Summary List the user's recent attempts
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.AttemptResponseDTO
// @Router /papers/attempts [get]
func (ctrl *Controller) GetAttemptHistoryHandler(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
		return
	}

	resp, err := ctrl.attemptSvc.History(userID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Failed to list attempts")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list attempts"})
		return
	}
	c.JSON(http.StatusOK, resp)
}
