package controller

import (
	"errors"
	"log"

	"taskboard/models"
	"taskboard/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	errInvalidInviteCode = errors.New("invalid invite code")
	errAlreadyMember     = errors.New("already a member of this workspace")
)

type WorkspaceController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Cache  *utils.Cache
}

func NewWorkspaceController(db *gorm.DB, logger *log.Logger, cache *utils.Cache) *WorkspaceController {
	return &WorkspaceController{
		DB:     db,
		Logger: logger,
		Cache:  cache,
	}
}

type createWorkspaceRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	ImageURL string `json:"image_url" validate:"omitempty,max=2048"`
}

type updateWorkspaceRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	ImageURL *string `json:"image_url" validate:"omitempty,max=2048"`
}

type joinWorkspaceRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// GetWorkspaces returns the workspaces where the caller has a membership
func (wc *WorkspaceController) GetWorkspaces(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var memberships []models.Member
	if err := wc.DB.Where("user_id = ?", user.ID).Find(&memberships).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch workspaces", err)
	}

	if len(memberships) == 0 {
		return c.JSON(utils.SuccessResponse([]models.Workspace{}))
	}

	workspaceIDs := make([]string, 0, len(memberships))
	for _, membership := range memberships {
		workspaceIDs = append(workspaceIDs, membership.WorkspaceID)
	}

	var workspaces []models.Workspace
	if err := wc.DB.Where("id IN ?", workspaceIDs).
		Order("created_at DESC").
		Find(&workspaces).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch workspaces", err)
	}

	return c.JSON(utils.SuccessResponse(workspaces))
}

// CreateWorkspace creates the workspace and the creator's admin membership
// in a single transaction so a failure can never leave a workspace without
// members
func (wc *WorkspaceController) CreateWorkspace(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req createWorkspaceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	workspace := models.Workspace{
		Name:       req.Name,
		ImageURL:   req.ImageURL,
		InviteCode: utils.GenerateInviteCode(utils.InviteCodeLength),
		OwnerID:    user.ID,
	}

	if err := wc.createWorkspace(&workspace, user.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create workspace", err)
	}

	wc.Logger.Printf("workspace %s created by user %s", workspace.ID, user.ID)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(workspace))
}

func (wc *WorkspaceController) createWorkspace(workspace *models.Workspace, userID string) error {
	return wc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workspace).Error; err != nil {
			return err
		}
		member := models.Member{
			UserID:      userID,
			WorkspaceID: workspace.ID,
			Role:        models.RoleAdmin,
		}
		return tx.Create(&member).Error
	})
}

// GetWorkspace returns workspace detail; membership required
func (wc *WorkspaceController) GetWorkspace(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	workspaceID := c.Params("id")

	if _, err := utils.GetMember(wc.DB, workspaceID, user.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	var workspace models.Workspace
	if err := wc.DB.First(&workspace, "id = ?", workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Workspace not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch workspace", err)
	}

	return c.JSON(utils.SuccessResponse(workspace))
}

// GetWorkspaceInfo returns the public name of a workspace, used on the
// join screen before the caller has a membership
func (wc *WorkspaceController) GetWorkspaceInfo(c *fiber.Ctx) error {
	workspaceID := c.Params("id")

	var workspace models.Workspace
	if err := wc.DB.First(&workspace, "id = ?", workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Workspace not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch workspace", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"name": workspace.Name,
	}))
}

// UpdateWorkspace patches workspace settings; admin only
func (wc *WorkspaceController) UpdateWorkspace(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	workspaceID := c.Params("id")

	member, err := utils.GetMember(wc.DB, workspaceID, user.ID)
	if err != nil || !member.IsAdmin() {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	var req updateWorkspaceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var workspace models.Workspace
	if err := wc.DB.First(&workspace, "id = ?", workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Workspace not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update workspace", err)
	}

	if req.Name != nil {
		workspace.Name = *req.Name
	}
	if req.ImageURL != nil {
		workspace.ImageURL = *req.ImageURL
	}

	if err := wc.DB.Save(&workspace).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update workspace", err)
	}

	return c.JSON(utils.SuccessResponse(workspace))
}

// DeleteWorkspace removes the workspace and everything under it in one
// transaction; admin only
func (wc *WorkspaceController) DeleteWorkspace(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	workspaceID := c.Params("id")

	member, err := utils.GetMember(wc.DB, workspaceID, user.ID)
	if err != nil || !member.IsAdmin() {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	var projectIDs []string
	if err := wc.DB.Model(&models.Project{}).
		Where("workspace_id = ?", workspaceID).
		Pluck("id", &projectIDs).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete workspace", err)
	}

	err = wc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workspace_id = ?", workspaceID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", workspaceID).Delete(&models.Project{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", workspaceID).Delete(&models.Member{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Workspace{}, "id = ?", workspaceID).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete workspace", err)
	}

	cacheScopes := []string{utils.WorkspaceScope(workspaceID)}
	for _, projectID := range projectIDs {
		cacheScopes = append(cacheScopes, utils.ProjectScope(projectID))
	}
	wc.Cache.Invalidate(c.Context(), cacheScopes...)

	wc.Logger.Printf("workspace %s deleted by user %s", workspaceID, user.ID)
	return c.JSON(utils.SuccessResponse(fiber.Map{"id": workspaceID}))
}

// ResetInviteCode rotates the join secret; admin only
func (wc *WorkspaceController) ResetInviteCode(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	workspaceID := c.Params("id")

	member, err := utils.GetMember(wc.DB, workspaceID, user.ID)
	if err != nil || !member.IsAdmin() {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	var workspace models.Workspace
	if err := wc.DB.First(&workspace, "id = ?", workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Workspace not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reset invite code", err)
	}

	workspace.InviteCode = utils.GenerateInviteCode(utils.InviteCodeLength)
	if err := wc.DB.Save(&workspace).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reset invite code", err)
	}

	return c.JSON(utils.SuccessResponse(workspace))
}

// JoinWorkspace creates a member-role membership when the supplied code
// matches the workspace's current invite code
func (wc *WorkspaceController) JoinWorkspace(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	workspaceID := c.Params("id")

	var req joinWorkspaceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	member, err := wc.joinWorkspace(user.ID, workspaceID, req.Code)
	switch {
	case errors.Is(err, errAlreadyMember):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Already a member of this workspace", nil)
	case errors.Is(err, errInvalidInviteCode):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid invite code", nil)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Workspace not found", nil)
	case err != nil:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to join workspace", err)
	}

	wc.Logger.Printf("user %s joined workspace %s", user.ID, workspaceID)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(member))
}

// joinWorkspace enforces the invite-code join rules: the code must match
// exactly (case-sensitive) and the caller must not already be a member.
// No Member record is created on any failure.
func (wc *WorkspaceController) joinWorkspace(userID, workspaceID, code string) (*models.Member, error) {
	var workspace models.Workspace
	if err := wc.DB.First(&workspace, "id = ?", workspaceID).Error; err != nil {
		return nil, err
	}

	if _, err := utils.GetMember(wc.DB, workspaceID, userID); err == nil {
		return nil, errAlreadyMember
	}

	if workspace.InviteCode != code {
		return nil, errInvalidInviteCode
	}

	member := models.Member{
		UserID:      userID,
		WorkspaceID: workspaceID,
		Role:        models.RoleMember,
	}
	if err := wc.DB.Create(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}
