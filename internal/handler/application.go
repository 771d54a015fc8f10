package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pressroom/admin-gateway/internal/models"
	"github.com/pressroom/admin-gateway/internal/service"
)

// ApplicationHandler serves the public author-application submission path.
type ApplicationHandler struct {
	service *service.AdminService
}

func NewApplicationHandler(service *service.AdminService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// Handles POST /applications
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req struct {
		ApplicantName  string `json:"applicant_name" binding:"required"`
		ApplicantEmail string `json:"applicant_email" binding:"required,email"`
		PortfolioURL   string `json:"portfolio_url"`
		WritingSample  string `json:"writing_sample" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app := &models.Application{
		ApplicantName:  req.ApplicantName,
		ApplicantEmail: req.ApplicantEmail,
		PortfolioURL:   req.PortfolioURL,
		WritingSample:  req.WritingSample,
		Status:         models.ApplicationPending,
	}

	ctx := c.Request.Context()
	if err := h.service.SubmitApplication(ctx, app); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      app.ID,
		"status":  app.Status,
		"message": "Application received",
	})
}
