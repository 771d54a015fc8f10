package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pressroom/admin-gateway/internal/cache"
	"github.com/pressroom/admin-gateway/internal/models"
	"github.com/pressroom/admin-gateway/internal/repository"
)

// AdminService serves the back-office read and mutation paths. Reads are
// memoized through the cache manager; mutations write through, emit audit
// rows and invalidate the affected cache types.
type AdminService struct {
	articles     *repository.ArticleRepository
	authors      *repository.AuthorRepository
	applications *repository.ApplicationRepository
	auditLogs    *repository.AuditLogRepository
	cache        *cache.Manager
	audit        *AuditService
}

func NewAdminService(
	articles *repository.ArticleRepository,
	authors *repository.AuthorRepository,
	applications *repository.ApplicationRepository,
	auditLogs *repository.AuditLogRepository,
	cacheManager *cache.Manager,
	audit *AuditService,
) *AdminService {
	return &AdminService{
		articles:     articles,
		authors:      authors,
		applications: applications,
		auditLogs:    auditLogs,
		cache:        cacheManager,
		audit:        audit,
	}
}

// DashboardStats aggregates the overview counters for the admin dashboard.
func (s *AdminService) DashboardStats(ctx context.Context) (interface{}, error) {
	return s.cache.Through(ctx, "admin_stats", "overview", nil, func(ctx context.Context) (interface{}, error) {
		totalArticles, err := s.articles.CountByStatus(ctx, "")
		if err != nil {
			return nil, err
		}
		published, err := s.articles.CountByStatus(ctx, models.ArticlePublished)
		if err != nil {
			return nil, err
		}
		pendingApps, err := s.applications.CountByStatus(ctx, models.ApplicationPending)
		if err != nil {
			return nil, err
		}
		activeAuthors, err := s.authors.CountByStatus(ctx, models.AuthorActive)
		if err != nil {
			return nil, err
		}
		totalViews, err := s.articles.TotalViews(ctx)
		if err != nil {
			return nil, err
		}
		auditLast24h, err := s.auditLogs.CountSince(ctx, time.Now().Add(-24*time.Hour))
		if err != nil {
			return nil, err
		}

		return map[string]interface{}{
			"total_articles":       totalArticles,
			"published_articles":   published,
			"pending_applications": pendingApps,
			"active_authors":       activeAuthors,
			"total_views":          totalViews,
			"audit_entries_24h":    auditLast24h,
			"generated_at":         time.Now().UTC(),
		}, nil
	})
}

// Analytics reports the most viewed published articles. Cached longest of
// all read paths since it is the most expensive to compute.
func (s *AdminService) Analytics(ctx context.Context, limit int) (interface{}, error) {
	params := map[string]interface{}{"limit": limit}

	return s.cache.Through(ctx, "analytics", "top_articles", params, func(ctx context.Context) (interface{}, error) {
		top, err := s.articles.TopByViews(ctx, limit)
		if err != nil {
			return nil, err
		}

		items := make([]map[string]interface{}, 0, len(top))
		for _, a := range top {
			items = append(items, map[string]interface{}{
				"id":          a.ID,
				"title":       a.Title,
				"category":    a.Category,
				"total_views": a.TotalViews,
				"vote_score":  a.VoteScore,
				"trend_score": a.TrendScore,
			})
		}

		return map[string]interface{}{
			"top_articles": items,
			"generated_at": time.Now().UTC(),
		}, nil
	})
}

func (s *AdminService) ListArticles(ctx context.Context, status, category string, page, pageSize int) (interface{}, error) {
	params := map[string]interface{}{
		"status":    status,
		"category":  category,
		"page":      page,
		"page_size": pageSize,
	}

	return s.cache.Through(ctx, "article_lists", "", params, func(ctx context.Context) (interface{}, error) {
		articles, err := s.articles.List(ctx, status, category, pageSize, (page-1)*pageSize)
		if err != nil {
			return nil, err
		}

		return map[string]interface{}{
			"articles":  articles,
			"page":      page,
			"page_size": pageSize,
		}, nil
	})
}

// UpdateArticleStatus moves an article through its lifecycle, audits the
// change and invalidates every cache type the change can affect.
func (s *AdminService) UpdateArticleStatus(ctx context.Context, adminID, articleID uuid.UUID, status, justification string) error {
	article, err := s.articles.FindByID(ctx, articleID)
	if err != nil {
		return err
	}
	if article == nil {
		return errors.New("article not found")
	}

	if err := s.articles.Update(ctx, articleID, map[string]interface{}{"status": status}); err != nil {
		return err
	}

	s.audit.LogAdminAction(ctx, AuditEntry{
		AdminUserID:      adminID,
		ActionType:       ActionArticleStatusChanged,
		TargetEntityType: EntityArticle,
		TargetEntityID:   &articleID,
		Justification:    justification,
		Details: map[string]interface{}{
			"previous_status": article.Status,
			"new_status":      status,
			"title":           article.Title,
		},
	})

	s.invalidateArticleCaches(ctx)

	return nil
}

func (s *AdminService) ListApplications(ctx context.Context, status string, page, pageSize int) (interface{}, error) {
	params := map[string]interface{}{
		"status":    status,
		"page":      page,
		"page_size": pageSize,
	}

	return s.cache.Through(ctx, "application_lists", "", params, func(ctx context.Context) (interface{}, error) {
		apps, err := s.applications.List(ctx, status, pageSize, (page-1)*pageSize)
		if err != nil {
			return nil, err
		}

		return map[string]interface{}{
			"applications": apps,
			"page":         page,
			"page_size":    pageSize,
		}, nil
	})
}

// SubmitApplication records a prospective author's submission (public
// path, guarded by the app_submission tier).
func (s *AdminService) SubmitApplication(ctx context.Context, app *models.Application) error {
	if err := s.applications.Create(ctx, app); err != nil {
		return err
	}

	s.invalidateApplicationCaches(ctx)
	return nil
}

// ReviewApplication sets the review outcome. Approval also provisions the
// author record.
func (s *AdminService) ReviewApplication(ctx context.Context, adminID, appID uuid.UUID, status, notes string) error {
	app, err := s.applications.FindByID(ctx, appID)
	if err != nil {
		return err
	}
	if app == nil {
		return errors.New("application not found")
	}

	now := time.Now().UTC()
	if err := s.applications.Update(ctx, appID, map[string]interface{}{
		"status":       status,
		"reviewed_by":  adminID,
		"review_notes": notes,
		"reviewed_at":  now,
	}); err != nil {
		return err
	}

	actionType := ActionApplicationRejected
	switch status {
	case models.ApplicationApproved:
		actionType = ActionApplicationApproved
	case models.ApplicationUnderReview:
		actionType = ActionApplicationUnderReview
	case models.ApplicationRequiresChanges:
		actionType = ActionApplicationRequiresChanges
	}

	s.audit.LogAdminAction(ctx, AuditEntry{
		AdminUserID:      adminID,
		ActionType:       actionType,
		TargetEntityType: EntityApplication,
		TargetEntityID:   &appID,
		Justification:    notes,
		Details: map[string]interface{}{
			"applicant_name":  app.ApplicantName,
			"applicant_email": app.ApplicantEmail,
		},
	})

	if status == models.ApplicationApproved {
		existing, err := s.authors.FindByEmail(ctx, app.ApplicantEmail)
		if err != nil {
			return err
		}
		if existing == nil {
			author := &models.Author{
				FullName: app.ApplicantName,
				Email:    app.ApplicantEmail,
				Status:   models.AuthorActive,
			}
			if err := s.authors.Create(ctx, author); err != nil {
				return err
			}
		}
		s.invalidateAuthorCaches(ctx)
	}

	s.invalidateApplicationCaches(ctx)

	return nil
}

func (s *AdminService) ListAuthors(ctx context.Context, status string, page, pageSize int) (interface{}, error) {
	params := map[string]interface{}{
		"status":    status,
		"page":      page,
		"page_size": pageSize,
	}

	return s.cache.Through(ctx, "author_data", "", params, func(ctx context.Context) (interface{}, error) {
		authors, err := s.authors.List(ctx, status, pageSize, (page-1)*pageSize)
		if err != nil {
			return nil, err
		}

		return map[string]interface{}{
			"authors":   authors,
			"page":      page,
			"page_size": pageSize,
		}, nil
	})
}

func (s *AdminService) UpdateAuthorStatus(ctx context.Context, adminID, authorID uuid.UUID, status, justification string) error {
	author, err := s.authors.FindByID(ctx, authorID)
	if err != nil {
		return err
	}
	if author == nil {
		return errors.New("author not found")
	}

	if err := s.authors.Update(ctx, authorID, map[string]interface{}{"status": status}); err != nil {
		return err
	}

	actionType := ActionAuthorStatusChanged
	switch status {
	case models.AuthorSuspended:
		actionType = ActionAuthorSuspended
	case models.AuthorActive:
		actionType = ActionAuthorActivated
	}

	s.audit.LogAdminAction(ctx, AuditEntry{
		AdminUserID:      adminID,
		ActionType:       actionType,
		TargetEntityType: EntityAuthor,
		TargetEntityID:   &authorID,
		Justification:    justification,
		Details: map[string]interface{}{
			"previous_status": author.Status,
			"new_status":      status,
			"author_email":    author.Email,
		},
	})

	s.invalidateAuthorCaches(ctx)

	return nil
}

func (s *AdminService) ListAuditLogs(ctx context.Context, actionType string, page, pageSize int) (interface{}, error) {
	params := map[string]interface{}{
		"action_type": actionType,
		"page":        page,
		"page_size":   pageSize,
	}

	return s.cache.Through(ctx, "audit_logs", "", params, func(ctx context.Context) (interface{}, error) {
		entries, err := s.auditLogs.List(ctx, actionType, pageSize, (page-1)*pageSize)
		if err != nil {
			return nil, err
		}

		return map[string]interface{}{
			"audit_logs": entries,
			"page":       page,
			"page_size":  pageSize,
		}, nil
	})
}

func (s *AdminService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Every mutation path that affects cached reads must invalidate the
// affected types explicitly; there is no automatic dependency tracking.

func (s *AdminService) invalidateArticleCaches(ctx context.Context) {
	s.cache.Invalidate(ctx, "article_lists", "")
	s.cache.Invalidate(ctx, "admin_stats", "")
	s.cache.Invalidate(ctx, "analytics", "")
}

func (s *AdminService) invalidateAuthorCaches(ctx context.Context) {
	s.cache.Invalidate(ctx, "author_data", "")
	s.cache.Invalidate(ctx, "admin_stats", "")
}

func (s *AdminService) invalidateApplicationCaches(ctx context.Context) {
	s.cache.Invalidate(ctx, "application_lists", "")
	s.cache.Invalidate(ctx, "admin_stats", "")
}
