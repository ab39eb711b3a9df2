package controller

import (
	"context"
	"errors"
	"log"
	"time"

	"taskboard/models"
	"taskboard/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AnalyticsController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Cache  *utils.Cache
}

func NewAnalyticsController(db *gorm.DB, logger *log.Logger, cache *utils.Cache) *AnalyticsController {
	return &AnalyticsController{
		DB:     db,
		Logger: logger,
		Cache:  cache,
	}
}

// TaskAnalytics holds the five metric pairs: counts for the current month
// window and the difference against the previous month window
type TaskAnalytics struct {
	TaskCount                int64 `json:"taskCount"`
	TaskDifference           int64 `json:"taskDifference"`
	AssignedTaskCount        int64 `json:"assignedTaskCount"`
	AssignedTaskDifference   int64 `json:"assignedTaskDifference"`
	CompletedTaskCount       int64 `json:"completedTaskCount"`
	CompletedTaskDifference  int64 `json:"completedTaskDifference"`
	IncompleteTaskCount      int64 `json:"incompleteTaskCount"`
	IncompleteTaskDifference int64 `json:"incompleteTaskDifference"`
	OverdueTaskCount         int64 `json:"overdueTaskCount"`
	OverdueTaskDifference    int64 `json:"overdueTaskDifference"`
}

// GetWorkspaceAnalytics returns the metric pairs scoped to a workspace;
// membership required
func (ac *AnalyticsController) GetWorkspaceAnalytics(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	workspaceID := c.Params("id")

	member, err := utils.GetMember(ac.DB, workspaceID, user.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	analytics, err := ac.cachedAnalytics(c.Context(), "workspace_id", workspaceID,
		utils.WorkspaceKey(workspaceID, member.ID), member.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute analytics", err)
	}

	return c.JSON(utils.SuccessResponse(analytics))
}

// GetProjectAnalytics returns the metric pairs scoped to a project;
// membership in its workspace required
func (ac *AnalyticsController) GetProjectAnalytics(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := c.Params("id")

	var project models.Project
	if err := ac.DB.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute analytics", err)
	}

	member, err := utils.GetMember(ac.DB, project.WorkspaceID, user.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	analytics, err := ac.cachedAnalytics(c.Context(), "project_id", projectID,
		utils.ProjectKey(projectID, member.ID), member.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute analytics", err)
	}

	return c.JSON(utils.SuccessResponse(analytics))
}

// cachedAnalytics serves a member's metrics from the cache when present,
// computing and storing them otherwise. The cache key carries the member
// ID: the assigned pair is relative to the requesting member, so entries
// must never be shared between members of the same scope.
func (ac *AnalyticsController) cachedAnalytics(ctx context.Context, scopeColumn, scopeID, cacheKey, memberID string) (*TaskAnalytics, error) {
	var cached TaskAnalytics
	if ac.Cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	analytics, err := ac.computeTaskAnalytics(scopeColumn, scopeID, memberID, time.Now())
	if err != nil {
		return nil, err
	}

	ac.Cache.Set(ctx, cacheKey, analytics)
	return analytics, nil
}

// computeTaskAnalytics runs the five count pairs over the this-month and
// last-month windows. scopeColumn is "workspace_id" or "project_id"; every
// other predicate is identical between the two scopes.
func (ac *AnalyticsController) computeTaskAnalytics(scopeColumn, scopeID, memberID string, now time.Time) (*TaskAnalytics, error) {
	thisMonth := utils.ThisMonth(now)
	lastMonth := utils.LastMonth(now)

	scoped := func(window utils.MonthWindow) *gorm.DB {
		return ac.DB.Model(&models.Task{}).
			Where(scopeColumn+" = ?", scopeID).
			Where("created_at BETWEEN ? AND ?", window.Start, window.End)
	}

	count := func(query *gorm.DB) (int64, error) {
		var n int64
		err := query.Count(&n).Error
		return n, err
	}

	var analytics TaskAnalytics

	// Total tasks created in window
	thisCount, err := count(scoped(thisMonth))
	if err != nil {
		return nil, err
	}
	lastCount, err := count(scoped(lastMonth))
	if err != nil {
		return nil, err
	}
	analytics.TaskCount = thisCount
	analytics.TaskDifference = thisCount - lastCount

	// Tasks assigned to the requesting member
	thisCount, err = count(scoped(thisMonth).Where("assignee_id = ?", memberID))
	if err != nil {
		return nil, err
	}
	lastCount, err = count(scoped(lastMonth).Where("assignee_id = ?", memberID))
	if err != nil {
		return nil, err
	}
	analytics.AssignedTaskCount = thisCount
	analytics.AssignedTaskDifference = thisCount - lastCount

	// Incomplete: anything not DONE
	thisCount, err = count(scoped(thisMonth).Where("status <> ?", models.StatusDone))
	if err != nil {
		return nil, err
	}
	lastCount, err = count(scoped(lastMonth).Where("status <> ?", models.StatusDone))
	if err != nil {
		return nil, err
	}
	analytics.IncompleteTaskCount = thisCount
	analytics.IncompleteTaskDifference = thisCount - lastCount

	// Completed
	thisCount, err = count(scoped(thisMonth).Where("status = ?", models.StatusDone))
	if err != nil {
		return nil, err
	}
	lastCount, err = count(scoped(lastMonth).Where("status = ?", models.StatusDone))
	if err != nil {
		return nil, err
	}
	analytics.CompletedTaskCount = thisCount
	analytics.CompletedTaskDifference = thisCount - lastCount

	// Overdue: not DONE and past due as of now
	thisCount, err = count(scoped(thisMonth).
		Where("status <> ?", models.StatusDone).
		Where("due_date < ?", now))
	if err != nil {
		return nil, err
	}
	lastCount, err = count(scoped(lastMonth).
		Where("status <> ?", models.StatusDone).
		Where("due_date < ?", now))
	if err != nil {
		return nil, err
	}
	analytics.OverdueTaskCount = thisCount
	analytics.OverdueTaskDifference = thisCount - lastCount

	return &analytics, nil
}
