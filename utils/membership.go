package utils

import (
	"taskboard/models"

	"gorm.io/gorm"
)

// GetMember resolves (userID, workspaceID) to a membership record. Every
// scoped operation calls this first; a miss means the caller is not
// authorized for the workspace.
func GetMember(db *gorm.DB, workspaceID, userID string) (*models.Member, error) {
	var member models.Member
	if err := db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// CountAdmins returns how many admin members a workspace has. Used to keep
// at least one admin alive through member updates and removals.
func CountAdmins(db *gorm.DB, workspaceID string) (int64, error) {
	var count int64
	err := db.Model(&models.Member{}).
		Where("workspace_id = ? AND role = ?", workspaceID, models.RoleAdmin).
		Count(&count).Error
	return count, err
}
