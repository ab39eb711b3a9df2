package controller

import (
	"errors"
	"log"

	"taskboard/models"
	"taskboard/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProjectController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Cache  *utils.Cache
}

func NewProjectController(db *gorm.DB, logger *log.Logger, cache *utils.Cache) *ProjectController {
	return &ProjectController{
		DB:     db,
		Logger: logger,
		Cache:  cache,
	}
}

type createProjectRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	ImageURL    string `json:"image_url" validate:"omitempty,max=2048"`
	WorkspaceID string `json:"workspace_id" validate:"required,uuid"`
}

type updateProjectRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	ImageURL *string `json:"image_url" validate:"omitempty,max=2048"`
}

// CreateProject creates a project in a workspace; membership required
func (pc *ProjectController) CreateProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req createProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if _, err := utils.GetMember(pc.DB, req.WorkspaceID, user.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	project := models.Project{
		Name:        req.Name,
		ImageURL:    req.ImageURL,
		WorkspaceID: req.WorkspaceID,
	}
	if err := pc.DB.Create(&project).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create project", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(project))
}

// GetProjects lists the projects of a workspace; membership required
func (pc *ProjectController) GetProjects(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	workspaceID := c.Query("workspaceId")
	if workspaceID == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "missing workspaceId", nil)
	}

	if _, err := utils.GetMember(pc.DB, workspaceID, user.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	var projects []models.Project
	if err := pc.DB.Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch projects", err)
	}

	return c.JSON(utils.SuccessResponse(projects))
}

// GetProject returns a single project; membership in its workspace required
func (pc *ProjectController) GetProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := c.Params("id")

	var project models.Project
	if err := pc.DB.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch project", err)
	}

	if _, err := utils.GetMember(pc.DB, project.WorkspaceID, user.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	return c.JSON(utils.SuccessResponse(project))
}

// UpdateProject patches project settings; membership required
func (pc *ProjectController) UpdateProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := c.Params("id")

	var req updateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var project models.Project
	if err := pc.DB.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update project", err)
	}

	if _, err := utils.GetMember(pc.DB, project.WorkspaceID, user.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.ImageURL != nil {
		project.ImageURL = *req.ImageURL
	}

	if err := pc.DB.Save(&project).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update project", err)
	}

	return c.JSON(utils.SuccessResponse(project))
}

// DeleteProject removes a project and its tasks in one transaction;
// membership required
func (pc *ProjectController) DeleteProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := c.Params("id")

	var project models.Project
	if err := pc.DB.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete project", err)
	}

	if _, err := utils.GetMember(pc.DB, project.WorkspaceID, user.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, "id = ?", projectID).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete project", err)
	}

	pc.Cache.Invalidate(c.Context(),
		utils.WorkspaceScope(project.WorkspaceID),
		utils.ProjectScope(projectID),
	)

	pc.Logger.Printf("project %s deleted by user %s", projectID, user.ID)
	return c.JSON(utils.SuccessResponse(fiber.Map{"id": projectID}))
}
