package controller

import (
	"fmt"
	"io"
	"log"
	"testing"

	"taskboard/config"
	"taskboard/models"
	"taskboard/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared in-memory database: every pooled connection sees the
	// same schema, and each test gets its own
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := config.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		PasswordHash: "x",
		Name:         "Test User",
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return &user
}

func createTestWorkspace(t *testing.T, db *gorm.DB, ownerID string) *models.Workspace {
	t.Helper()
	workspace := models.Workspace{
		Name:       "Test Workspace",
		InviteCode: utils.GenerateInviteCode(utils.InviteCodeLength),
		OwnerID:    ownerID,
	}
	if err := db.Create(&workspace).Error; err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}
	return &workspace
}

func createTestMember(t *testing.T, db *gorm.DB, userID, workspaceID, role string) *models.Member {
	t.Helper()
	member := models.Member{
		UserID:      userID,
		WorkspaceID: workspaceID,
		Role:        role,
	}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("failed to create member: %v", err)
	}
	return &member
}

func createTestProject(t *testing.T, db *gorm.DB, workspaceID string) *models.Project {
	t.Helper()
	project := models.Project{
		Name:        "Test Project",
		WorkspaceID: workspaceID,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	return &project
}
