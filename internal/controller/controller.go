package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/talenthub/abacus-api/config"
	"github.com/talenthub/abacus-api/internal/middleware"
	"github.com/talenthub/abacus-api/internal/service"
)

type Controller struct {
	paperSvc   service.PaperService
	attemptSvc service.AttemptService
	cfg        *config.Config
}

func NewController(paperSvc service.PaperService, attemptSvc service.AttemptService, cfg *config.Config) *Controller {
	return &Controller{
		paperSvc:   paperSvc,
		attemptSvc: attemptSvc,
		cfg:        cfg,
	}
}

func (ctrl *Controller) RegisterRoutes(router *gin.Engine) {
	auth := middleware.RequireAuth(ctrl.cfg.Auth.JWTSecret)

	apiV1 := router.Group("/api/v1")
	{
		papers := apiV1.Group("/papers")
		papers.POST("/preview", ctrl.PreviewPaperHandler)
		papers.GET("/presets/:level", ctrl.GetPresetHandler)

		saved := papers.Group("/saved")
		saved.POST("", auth, ctrl.CreatePaperHandler)
		saved.GET("", ctrl.GetAllPapersHandler)
		saved.GET("/:paper_id", ctrl.GetPaperHandler)

		attempt := papers.Group("/attempt", auth)
		attempt.POST("", ctrl.StartAttemptHandler)
		attempt.PUT("/:attempt_id", ctrl.SubmitAttemptHandler)
		attempt.GET("/:attempt_id", ctrl.GetAttemptHandler)
		attempt.GET("/:attempt_id/validate", ctrl.ValidateAttemptHandler)

		papers.GET("/attempt-count", auth, ctrl.GetAttemptCountHandler)
		papers.GET("/attempts", auth, ctrl.GetAttemptHistoryHandler)
	}
}
