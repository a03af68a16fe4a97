package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/talenthub/abacus-api/internal/dto"
	"github.com/talenthub/abacus-api/internal/generator"
	"github.com/talenthub/abacus-api/internal/service"
)

// PreviewPaperHandler godoc
// @Summary Compile a paper preview
// @Description Validate the block configs and compile the full question set under a fresh seed
// @Tags papers
// @Accept json
// @Produce json
// @Param paper body dto.PaperConfigDTO true "Paper configuration"
// @Success 200 {object} dto.PreviewResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 422 {object} dto.ValidationErrorResponse "Constraint violations"
// @Router /papers/preview [post]
func (ctrl *Controller) PreviewPaperHandler(c *gin.Context) {
	var req dto.PaperConfigDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind PaperConfigDTO")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := ctrl.paperSvc.Preview(req)
	if err != nil {
		var verrs generator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, dto.ValidationErrorResponse{
				Message: "paper configuration is invalid",
				Errors:  verrs,
			})
			return
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPresetHandler godoc
// @Summary Get preset blocks for a level
// @Description Return the built-in block configuration for a graded level (AB-1 to AB-10)
// @Tags papers
// @Produce json
// @Param level path string true "Level code, e.g. AB-3"
// @Success 200 {array} generator.BlockConfig
// @Failure 404 {object} dto.ErrorResponse "Unknown level"
// @Router /papers/presets/{level} [get]
func (ctrl *Controller) GetPresetHandler(c *gin.Context) {
	blocks, err := ctrl.paperSvc.PresetBlocks(c.Param("level"))
	if err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, blocks)
}

// CreatePaperHandler godoc
// @Summary Save a paper configuration
// @Tags papers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param paper body dto.PaperConfigDTO true "Paper configuration"
// @Success 201 {object} dto.PaperResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 422 {object} dto.ValidationErrorResponse "Constraint violations"
// @Router /papers/saved [post]
func (ctrl *Controller) CreatePaperHandler(c *gin.Context) {
	var req dto.PaperConfigDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind PaperConfigDTO")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := ctrl.paperSvc.CreatePaper(req)
	if err != nil {
		var verrs generator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, dto.ValidationErrorResponse{
				Message: "paper configuration is invalid",
				Errors:  verrs,
			})
			return
		}
		log.Error().Err(err).Msg("Failed to create paper")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create paper"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetAllPapersHandler godoc
// @Summary List saved papers
// @Tags papers
// @Produce json
// @Success 200 {array} dto.PaperResponseDTO
// @Failure 500 {object} dto.ErrorResponse
// @Router /papers/saved [get]
func (ctrl *Controller) GetAllPapersHandler(c *gin.Context) {
	papers, err := ctrl.paperSvc.ListPapers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list papers")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list papers"})
		return
	}
	c.JSON(http.StatusOK, papers)
}

// GetPaperHandler godoc
// @Summary Get a saved paper
// @Tags papers
// @Produce json
// @Param paper_id path int true "Paper ID"
// @Success 200 {object} dto.PaperResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Paper not found"
// @Router /papers/saved/{paper_id} [get]
func (ctrl *Controller) GetPaperHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("paper_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid paper ID format"})
		return
	}

	paper, err := ctrl.paperSvc.GetPaper(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Paper not found"})
			return
		}
		log.Error().Err(err).Uint64("paperID", id).Msg("Failed to get paper")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get paper"})
		return
	}
	c.JSON(http.StatusOK, paper)
}
