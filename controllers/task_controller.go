package controller

import (
	"errors"
	"log"
	"time"

	"taskboard/models"
	"taskboard/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TaskController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Cache  *utils.Cache
}

func NewTaskController(db *gorm.DB, logger *log.Logger, cache *utils.Cache) *TaskController {
	return &TaskController{
		DB:     db,
		Logger: logger,
		Cache:  cache,
	}
}

type createTaskRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"omitempty,max=2048"`
	Status      string     `json:"status" validate:"required,taskstatus"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  string     `json:"assignee_id" validate:"omitempty,uuid"`
	ProjectID   string     `json:"project_id" validate:"required,uuid"`
	WorkspaceID string     `json:"workspace_id" validate:"required,uuid"`
}

type updateTaskRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2048"`
	Status      *string    `json:"status" validate:"omitempty,taskstatus"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  *string    `json:"assignee_id" validate:"omitempty,uuid"`
	ProjectID   *string    `json:"project_id" validate:"omitempty,uuid"`
}

type moveTaskRequest struct {
	Status string `json:"status" validate:"required,taskstatus"`
	Index  int    `json:"index" validate:"min=0"`
}

type bulkUpdateRequest struct {
	Tasks []bulkUpdateEntry `json:"tasks" validate:"required,min=1,max=100,dive"`
}

type bulkUpdateEntry struct {
	ID       string `json:"id" validate:"required,uuid"`
	Status   string `json:"status" validate:"required,taskstatus"`
	Position int    `json:"position" validate:"min=1,max=1000000"`
}

// CreateTask creates a task appended to the end of its status column
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if _, err := utils.GetMember(tc.DB, req.WorkspaceID, user.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	var project models.Project
	if err := tc.DB.First(&project, "id = ? AND workspace_id = ?", req.ProjectID, req.WorkspaceID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
	}

	status, _ := models.ParseTaskStatus(req.Status)
	position, err := tc.nextTaskPosition(req.ProjectID, status)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create task", err)
	}

	task := models.Task{
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		DueDate:     req.DueDate,
		AssigneeID:  req.AssigneeID,
		ProjectID:   req.ProjectID,
		WorkspaceID: req.WorkspaceID,
		Position:    position,
	}
	if err := tc.DB.Create(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create task", err)
	}

	tc.Cache.Invalidate(c.Context(),
		utils.WorkspaceScope(task.WorkspaceID),
		utils.ProjectScope(task.ProjectID),
	)

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(task))
}

// nextTaskPosition appends to the end of the (project, status) column:
// max(position)+1000, capped, 1000 for an empty column
func (tc *TaskController) nextTaskPosition(projectID string, status models.TaskStatus) (int, error) {
	var last models.Task
	err := tc.DB.Where("project_id = ? AND status = ?", projectID, status).
		Order("position DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.PositionStep, nil
	}
	if err != nil {
		return 0, err
	}
	position := last.Position + models.PositionStep
	if position > models.PositionMax {
		position = models.PositionMax
	}
	return position, nil
}

// GetTasks lists tasks with filters; workspace membership required
func (tc *TaskController) GetTasks(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	workspaceID := c.Query("workspaceId")
	if workspaceID == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "missing workspaceId", nil)
	}

	if _, err := utils.GetMember(tc.DB, workspaceID, user.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	query := tc.DB.Where("workspace_id = ?", workspaceID)

	if projectID := c.Query("projectId"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status, err := models.ParseTaskStatus(statusStr)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid status filter", err)
		}
		query = query.Where("status = ?", status)
	}
	if assigneeID := c.Query("assigneeId"); assigneeID != "" {
		query = query.Where("assignee_id = ?", assigneeID)
	}
	if dueDate := c.Query("dueDate"); dueDate != "" {
		query = query.Where("due_date <= ?", dueDate)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tasks", err)
	}

	return c.JSON(utils.SuccessResponse(tasks))
}

// GetTask returns a single task; workspace membership required
func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := c.Params("id")

	var task models.Task
	if err := tc.DB.First(&task, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}

	if _, err := utils.GetMember(tc.DB, task.WorkspaceID, user.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	return c.JSON(utils.SuccessResponse(task))
}

// UpdateTask patches task fields; workspace membership required
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := c.Params("id")

	var req updateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var task models.Task
	if err := tc.DB.First(&task, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update task", err)
	}

	if _, err := utils.GetMember(tc.DB, task.WorkspaceID, user.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	previousProjectID := task.ProjectID

	if req.Name != nil {
		task.Name = *req.Name
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		status, _ := models.ParseTaskStatus(*req.Status)
		task.Status = status
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.AssigneeID != nil {
		task.AssigneeID = *req.AssigneeID
	}
	if req.ProjectID != nil {
		var project models.Project
		if err := tc.DB.First(&project, "id = ? AND workspace_id = ?", *req.ProjectID, task.WorkspaceID).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
		}
		task.ProjectID = *req.ProjectID
	}

	if err := tc.DB.Save(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update task", err)
	}

	tc.Cache.Invalidate(c.Context(),
		utils.WorkspaceScope(task.WorkspaceID),
		utils.ProjectScope(previousProjectID),
		utils.ProjectScope(task.ProjectID),
	)

	return c.JSON(utils.SuccessResponse(task))
}

// DeleteTask removes a task; workspace membership required
func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := c.Params("id")

	var task models.Task
	if err := tc.DB.First(&task, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete task", err)
	}

	if _, err := utils.GetMember(tc.DB, task.WorkspaceID, user.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	if err := tc.DB.Delete(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete task", err)
	}

	tc.Cache.Invalidate(c.Context(),
		utils.WorkspaceScope(task.WorkspaceID),
		utils.ProjectScope(task.ProjectID),
	)

	return c.JSON(utils.SuccessResponse(fiber.Map{"id": task.ID}))
}

// MoveTask applies a drag on the server: the task's project board is
// rebuilt, the reorder computed, and the whole batch persisted in one
// transaction. The applied updates are returned so a client can snapshot
// and revert its optimistic state on failure.
func (tc *TaskController) MoveTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := c.Params("id")

	var req moveTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var task models.Task
	if err := tc.DB.First(&task, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to move task", err)
	}

	if _, err := utils.GetMember(tc.DB, task.WorkspaceID, user.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	updates, err := tc.moveTask(&task, req)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to move task", err)
	}

	tc.Cache.Invalidate(c.Context(),
		utils.WorkspaceScope(task.WorkspaceID),
		utils.ProjectScope(task.ProjectID),
	)

	return c.JSON(utils.SuccessResponse(updates))
}

func (tc *TaskController) moveTask(task *models.Task, req moveTaskRequest) ([]utils.TaskUpdate, error) {
	destinationStatus, _ := models.ParseTaskStatus(req.Status)

	// The board is scoped to the task's project: columns are (project,
	// status) and drags never cross projects
	var boardTasks []models.Task
	if err := tc.DB.Where("project_id = ?", task.ProjectID).Find(&boardTasks).Error; err != nil {
		return nil, err
	}

	board := utils.BuildBoard(boardTasks)

	sourceIndex := -1
	for i, t := range board[task.Status] {
		if t.ID == task.ID {
			sourceIndex = i
			break
		}
	}
	if sourceIndex == -1 {
		return nil, errors.New("task not found on board")
	}

	updates, err := utils.Reorder(board,
		utils.DragLocation{Status: task.Status, Index: sourceIndex},
		utils.DragLocation{Status: destinationStatus, Index: req.Index},
	)
	if err != nil {
		return nil, err
	}

	if err := tc.applyTaskUpdates(updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// applyTaskUpdates persists a reorder batch as one logical update
func (tc *TaskController) applyTaskUpdates(updates []utils.TaskUpdate) error {
	return tc.DB.Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			if err := tx.Model(&models.Task{}).
				Where("id = ?", update.TaskID).
				Updates(map[string]interface{}{
					"status":   update.Status,
					"position": update.Position,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// BulkUpdateTasks persists a client-computed batch of (id, status,
// position) rows in one transaction. Membership is checked against every
// touched task's workspace.
func (tc *TaskController) BulkUpdateTasks(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req bulkUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	ids := make([]string, 0, len(req.Tasks))
	for _, entry := range req.Tasks {
		ids = append(ids, entry.ID)
	}

	var tasks []models.Task
	if err := tc.DB.Where("id IN ?", ids).Find(&tasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update tasks", err)
	}
	if len(tasks) != len(req.Tasks) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	cacheScopes := map[string]struct{}{}
	checked := map[string]struct{}{}
	for _, task := range tasks {
		if _, ok := checked[task.WorkspaceID]; !ok {
			if _, err := utils.GetMember(tc.DB, task.WorkspaceID, user.ID); err != nil {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
			}
			checked[task.WorkspaceID] = struct{}{}
		}
		cacheScopes[utils.WorkspaceScope(task.WorkspaceID)] = struct{}{}
		cacheScopes[utils.ProjectScope(task.ProjectID)] = struct{}{}
	}

	updates := make([]utils.TaskUpdate, 0, len(req.Tasks))
	for _, entry := range req.Tasks {
		status, _ := models.ParseTaskStatus(entry.Status)
		updates = append(updates, utils.TaskUpdate{
			TaskID:   entry.ID,
			Status:   status,
			Position: entry.Position,
		})
	}

	if err := tc.applyTaskUpdates(updates); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update tasks", err)
	}

	scopes := make([]string, 0, len(cacheScopes))
	for scope := range cacheScopes {
		scopes = append(scopes, scope)
	}
	tc.Cache.Invalidate(c.Context(), scopes...)

	return c.JSON(utils.SuccessResponse(updates))
}
