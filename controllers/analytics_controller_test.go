package controller

import (
	"context"
	"testing"
	"time"

	"taskboard/config"
	"taskboard/models"
	"taskboard/utils"

	"github.com/alicebob/miniredis/v2"
	"gorm.io/gorm"
)

func newAnalyticsFixture(t *testing.T) (*AnalyticsController, *gorm.DB, *models.Member, *models.Project) {
	t.Helper()
	db := setupTestDB(t)

	user := createTestUser(t, db, "analyst@example.com")
	workspace := createTestWorkspace(t, db, user.ID)
	member := createTestMember(t, db, user.ID, workspace.ID, models.RoleAdmin)
	project := createTestProject(t, db, workspace.ID)

	ac := NewAnalyticsController(db, testLogger(), nil)
	return ac, db, member, project
}

func createAnalyticsTask(t *testing.T, db *gorm.DB, project *models.Project, status models.TaskStatus, createdAt time.Time, assigneeID string, dueDate *time.Time) {
	t.Helper()
	task := models.Task{
		Name:        "task",
		Status:      status,
		CreatedAt:   createdAt,
		AssigneeID:  assigneeID,
		DueDate:     dueDate,
		ProjectID:   project.ID,
		WorkspaceID: project.WorkspaceID,
		Position:    models.PositionStep,
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
}

func TestComputeTaskAnalytics_EmptyScope(t *testing.T) {
	ac, _, member, project := newAnalyticsFixture(t)

	analytics, err := ac.computeTaskAnalytics("project_id", project.ID, member.ID, time.Now())
	if err != nil {
		t.Fatalf("computeTaskAnalytics() error = %v", err)
	}

	if *analytics != (TaskAnalytics{}) {
		t.Errorf("empty scope analytics = %+v, want all zeros", *analytics)
	}
}

// Four tasks created this month with statuses DONE, DONE, TODO, BACKLOG
// and none last month: count 4, completed 2, incomplete 2, every
// difference equal to its count.
func TestComputeTaskAnalytics_FirstMonth(t *testing.T) {
	ac, db, member, project := newAnalyticsFixture(t)

	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	created := time.Date(2026, time.August, 10, 9, 0, 0, 0, time.UTC)

	for _, status := range []models.TaskStatus{
		models.StatusDone, models.StatusDone, models.StatusTodo, models.StatusBacklog,
	} {
		createAnalyticsTask(t, db, project, status, created, "", nil)
	}

	analytics, err := ac.computeTaskAnalytics("project_id", project.ID, member.ID, now)
	if err != nil {
		t.Fatalf("computeTaskAnalytics() error = %v", err)
	}

	want := TaskAnalytics{
		TaskCount:                4,
		TaskDifference:           4,
		CompletedTaskCount:       2,
		CompletedTaskDifference:  2,
		IncompleteTaskCount:      2,
		IncompleteTaskDifference: 2,
	}
	if *analytics != want {
		t.Errorf("analytics = %+v, want %+v", *analytics, want)
	}
}

func TestComputeTaskAnalytics_MonthOverMonth(t *testing.T) {
	ac, db, member, project := newAnalyticsFixture(t)

	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	thisMonth := time.Date(2026, time.August, 5, 0, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2026, time.July, 5, 0, 0, 0, 0, time.UTC)

	// One task this month, three last month: a negative difference
	createAnalyticsTask(t, db, project, models.StatusTodo, thisMonth, "", nil)
	createAnalyticsTask(t, db, project, models.StatusDone, lastMonth, "", nil)
	createAnalyticsTask(t, db, project, models.StatusTodo, lastMonth, "", nil)
	createAnalyticsTask(t, db, project, models.StatusBacklog, lastMonth, "", nil)

	analytics, err := ac.computeTaskAnalytics("project_id", project.ID, member.ID, now)
	if err != nil {
		t.Fatalf("computeTaskAnalytics() error = %v", err)
	}

	if analytics.TaskCount != 1 || analytics.TaskDifference != -2 {
		t.Errorf("task pair = %d/%d, want 1/-2", analytics.TaskCount, analytics.TaskDifference)
	}
	if analytics.CompletedTaskCount != 0 || analytics.CompletedTaskDifference != -1 {
		t.Errorf("completed pair = %d/%d, want 0/-1",
			analytics.CompletedTaskCount, analytics.CompletedTaskDifference)
	}
	if analytics.IncompleteTaskCount != 1 || analytics.IncompleteTaskDifference != -1 {
		t.Errorf("incomplete pair = %d/%d, want 1/-1",
			analytics.IncompleteTaskCount, analytics.IncompleteTaskDifference)
	}
}

func TestComputeTaskAnalytics_AssignedToMember(t *testing.T) {
	ac, db, member, project := newAnalyticsFixture(t)

	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	created := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)

	createAnalyticsTask(t, db, project, models.StatusTodo, created, member.ID, nil)
	createAnalyticsTask(t, db, project, models.StatusTodo, created, "someone-else", nil)
	createAnalyticsTask(t, db, project, models.StatusTodo, created, "", nil)

	analytics, err := ac.computeTaskAnalytics("project_id", project.ID, member.ID, now)
	if err != nil {
		t.Fatalf("computeTaskAnalytics() error = %v", err)
	}

	if analytics.AssignedTaskCount != 1 || analytics.AssignedTaskDifference != 1 {
		t.Errorf("assigned pair = %d/%d, want 1/1",
			analytics.AssignedTaskCount, analytics.AssignedTaskDifference)
	}
	if analytics.TaskCount != 3 {
		t.Errorf("task count = %d, want 3", analytics.TaskCount)
	}
}

func TestComputeTaskAnalytics_Overdue(t *testing.T) {
	ac, db, member, project := newAnalyticsFixture(t)

	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	created := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)
	pastDue := time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC)
	futureDue := time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)

	// Past due and incomplete: overdue
	createAnalyticsTask(t, db, project, models.StatusInProgress, created, "", &pastDue)
	// Past due but DONE: not overdue
	createAnalyticsTask(t, db, project, models.StatusDone, created, "", &pastDue)
	// Incomplete but due in the future: not overdue
	createAnalyticsTask(t, db, project, models.StatusTodo, created, "", &futureDue)
	// Incomplete with no due date: not overdue
	createAnalyticsTask(t, db, project, models.StatusTodo, created, "", nil)

	analytics, err := ac.computeTaskAnalytics("project_id", project.ID, member.ID, now)
	if err != nil {
		t.Fatalf("computeTaskAnalytics() error = %v", err)
	}

	if analytics.OverdueTaskCount != 1 || analytics.OverdueTaskDifference != 1 {
		t.Errorf("overdue pair = %d/%d, want 1/1",
			analytics.OverdueTaskCount, analytics.OverdueTaskDifference)
	}
}

// The assigned pair is relative to the requesting member, so a cached
// response for one member must never be served to another member of the
// same workspace.
func TestCachedAnalytics_PerMember(t *testing.T) {
	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	cache := utils.NewCache(config.RedisConfig{Enabled: true, Address: mr.Addr()}, time.Minute)
	t.Cleanup(func() { cache.Close() })

	first := createTestUser(t, db, "first@example.com")
	workspace := createTestWorkspace(t, db, first.ID)
	firstMember := createTestMember(t, db, first.ID, workspace.ID, models.RoleAdmin)
	second := createTestUser(t, db, "second@example.com")
	secondMember := createTestMember(t, db, second.ID, workspace.ID, models.RoleMember)
	project := createTestProject(t, db, workspace.ID)

	task := models.Task{
		Name:        "assigned",
		Status:      models.StatusTodo,
		AssigneeID:  firstMember.ID,
		ProjectID:   project.ID,
		WorkspaceID: workspace.ID,
		Position:    models.PositionStep,
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	ac := NewAnalyticsController(db, testLogger(), cache)
	ctx := context.Background()

	forFirst, err := ac.cachedAnalytics(ctx, "workspace_id", workspace.ID,
		utils.WorkspaceKey(workspace.ID, firstMember.ID), firstMember.ID)
	if err != nil {
		t.Fatalf("cachedAnalytics() error = %v", err)
	}
	if forFirst.AssignedTaskCount != 1 {
		t.Fatalf("assignee's assigned count = %d, want 1", forFirst.AssignedTaskCount)
	}

	forSecond, err := ac.cachedAnalytics(ctx, "workspace_id", workspace.ID,
		utils.WorkspaceKey(workspace.ID, secondMember.ID), secondMember.ID)
	if err != nil {
		t.Fatalf("cachedAnalytics() error = %v", err)
	}
	if forSecond.AssignedTaskCount != 0 {
		t.Errorf("other member served assigned count = %d from a cached response, want 0",
			forSecond.AssignedTaskCount)
	}

	// The first member's own entry is still served from the cache
	again, err := ac.cachedAnalytics(ctx, "workspace_id", workspace.ID,
		utils.WorkspaceKey(workspace.ID, firstMember.ID), firstMember.ID)
	if err != nil {
		t.Fatalf("cachedAnalytics() error = %v", err)
	}
	if again.AssignedTaskCount != 1 {
		t.Errorf("cached assigned count = %d, want 1", again.AssignedTaskCount)
	}
}

func TestComputeTaskAnalytics_ScopeIsolation(t *testing.T) {
	ac, db, member, project := newAnalyticsFixture(t)

	other := createTestProject(t, db, project.WorkspaceID)

	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	created := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)

	createAnalyticsTask(t, db, project, models.StatusTodo, created, "", nil)
	createAnalyticsTask(t, db, other, models.StatusTodo, created, "", nil)

	projectAnalytics, err := ac.computeTaskAnalytics("project_id", project.ID, member.ID, now)
	if err != nil {
		t.Fatalf("computeTaskAnalytics(project) error = %v", err)
	}
	if projectAnalytics.TaskCount != 1 {
		t.Errorf("project-scoped count = %d, want 1", projectAnalytics.TaskCount)
	}

	workspaceAnalytics, err := ac.computeTaskAnalytics("workspace_id", project.WorkspaceID, member.ID, now)
	if err != nil {
		t.Fatalf("computeTaskAnalytics(workspace) error = %v", err)
	}
	if workspaceAnalytics.TaskCount != 2 {
		t.Errorf("workspace-scoped count = %d, want 2", workspaceAnalytics.TaskCount)
	}
}
