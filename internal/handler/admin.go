package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pressroom/admin-gateway/internal/service"
)

type AdminHandler struct {
	service *service.AdminService
}

func NewAdminHandler(service *service.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// Handles GET /admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	stats, err := h.service.DashboardStats(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Handles GET /admin/analytics
func (h *AdminHandler) Analytics(c *gin.Context) {
	limit := 10
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	ctx := c.Request.Context()
	analytics, err := h.service.Analytics(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// Handles GET /admin/articles
func (h *AdminHandler) ListArticles(c *gin.Context) {
	page, pageSize := parsePagination(c)

	ctx := c.Request.Context()
	result, err := h.service.ListArticles(ctx, c.Query("status"), c.Query("category"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Handles PATCH /admin/articles/:id/status
func (h *AdminHandler) UpdateArticleStatus(c *gin.Context) {
	articleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article ID"})
		return
	}

	var req struct {
		Status        string `json:"status" binding:"required"`
		Justification string `json:"justification"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID, ok := adminUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin identity"})
		return
	}

	ctx := c.Request.Context()
	if err := h.service.UpdateArticleStatus(ctx, adminID, articleID, req.Status, req.Justification); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Article status updated"})
}

// Handles GET /admin/applications
func (h *AdminHandler) ListApplications(c *gin.Context) {
	page, pageSize := parsePagination(c)

	ctx := c.Request.Context()
	result, err := h.service.ListApplications(ctx, c.Query("status"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Handles POST /admin/applications/:id/review
func (h *AdminHandler) ReviewApplication(c *gin.Context) {
	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID, ok := adminUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin identity"})
		return
	}

	ctx := c.Request.Context()
	if err := h.service.ReviewApplication(ctx, adminID, appID, req.Status, req.Notes); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Application reviewed"})
}

// Handles GET /admin/authors
func (h *AdminHandler) ListAuthors(c *gin.Context) {
	page, pageSize := parsePagination(c)

	ctx := c.Request.Context()
	result, err := h.service.ListAuthors(ctx, c.Query("status"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Handles PATCH /admin/authors/:id/status
func (h *AdminHandler) UpdateAuthorStatus(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid author ID"})
		return
	}

	var req struct {
		Status        string `json:"status" binding:"required"`
		Justification string `json:"justification"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID, ok := adminUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin identity"})
		return
	}

	ctx := c.Request.Context()
	if err := h.service.UpdateAuthorStatus(ctx, adminID, authorID, req.Status, req.Justification); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Author status updated"})
}

// Handles GET /admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	page, pageSize := parsePagination(c)

	ctx := c.Request.Context()
	result, err := h.service.ListAuditLogs(ctx, c.Query("action_type"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Handles GET /admin/system/cache
func (h *AdminHandler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.CacheStats())
}

func adminUserID(c *gin.Context) (uuid.UUID, bool) {
	idStr, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil, false
	}

	s, ok := idStr.(string)
	if !ok {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}

func parsePagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if sizeStr := c.Query("page_size"); sizeStr != "" {
		if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
			pageSize = s
		}
	}

	return page, pageSize
}
