package worker

import (
	"context"
	"log"
	"time"

	"taskboard/models"

	"gorm.io/gorm"
)

// CleanupWorker periodically removes records orphaned by deletions that
// predate the transactional cascades: tasks whose project or workspace is
// gone, and projects/members whose workspace is gone.
type CleanupWorker struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Interval time.Duration
}

func NewCleanupWorker(db *gorm.DB, logger *log.Logger, interval time.Duration) *CleanupWorker {
	return &CleanupWorker{
		DB:       db,
		Logger:   logger,
		Interval: interval,
	}
}

func (cw *CleanupWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up; shutdown may interrupt it
	select {
	case <-ctx.Done():
		cw.Logger.Println("Cleanup worker shutting down...")
		return
	case <-time.After(10 * time.Second):
	}

	cw.Logger.Println("Cleanup worker started")

	ticker := time.NewTicker(cw.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cw.Logger.Println("Cleanup worker shutting down...")
			return
		case <-ticker.C:
			if err := cw.SweepOrphans(); err != nil {
				cw.Logger.Printf("Error sweeping orphans: %v", err)
			}
		}
	}
}

// SweepOrphans deletes orphaned rows bottom-up so a sweep never creates
// new orphans
func (cw *CleanupWorker) SweepOrphans() error {
	result := cw.DB.Where(
		"project_id NOT IN (?) OR workspace_id NOT IN (?)",
		cw.DB.Model(&models.Project{}).Select("id"),
		cw.DB.Model(&models.Workspace{}).Select("id"),
	).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		cw.Logger.Printf("Removed %d orphaned tasks", result.RowsAffected)
	}

	result = cw.DB.Where(
		"workspace_id NOT IN (?)",
		cw.DB.Model(&models.Workspace{}).Select("id"),
	).Delete(&models.Project{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		cw.Logger.Printf("Removed %d orphaned projects", result.RowsAffected)
	}

	result = cw.DB.Where(
		"workspace_id NOT IN (?)",
		cw.DB.Model(&models.Workspace{}).Select("id"),
	).Delete(&models.Member{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		cw.Logger.Printf("Removed %d orphaned members", result.RowsAffected)
	}

	return nil
}
