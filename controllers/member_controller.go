package controller

import (
	"errors"
	"log"

	"taskboard/models"
	"taskboard/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type MemberController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewMemberController(db *gorm.DB, logger *log.Logger) *MemberController {
	return &MemberController{
		DB:     db,
		Logger: logger,
	}
}

type updateMemberRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member"`
}

// GetMembers lists the memberships of a workspace; membership required
func (mc *MemberController) GetMembers(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	workspaceID := c.Params("id")

	if _, err := utils.GetMember(mc.DB, workspaceID, user.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	var members []models.Member
	if err := mc.DB.Preload("User").
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch members", err)
	}

	type memberView struct {
		models.Member
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	views := make([]memberView, 0, len(members))
	for _, member := range members {
		views = append(views, memberView{
			Member: member,
			Name:   member.User.Name,
			Email:  member.User.Email,
		})
	}

	return c.JSON(utils.SuccessResponse(views))
}

// UpdateMember changes a membership role; admin only. The last admin of a
// workspace cannot be demoted.
func (mc *MemberController) UpdateMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	memberID := c.Params("id")

	var req updateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var target models.Member
	if err := mc.DB.First(&target, "id = ?", memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Member not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update member", err)
	}

	caller, err := utils.GetMember(mc.DB, target.WorkspaceID, user.ID)
	if err != nil || !caller.IsAdmin() {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	if target.Role == models.RoleAdmin && req.Role != models.RoleAdmin {
		admins, err := utils.CountAdmins(mc.DB, target.WorkspaceID)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update member", err)
		}
		if admins <= 1 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Cannot demote the last admin", nil)
		}
	}

	target.Role = req.Role
	if err := mc.DB.Save(&target).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update member", err)
	}

	return c.JSON(utils.SuccessResponse(target))
}

// DeleteMember removes a membership. Admins can remove anyone; a member
// can remove themselves. The last admin cannot be removed.
func (mc *MemberController) DeleteMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	memberID := c.Params("id")

	var target models.Member
	if err := mc.DB.First(&target, "id = ?", memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Member not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete member", err)
	}

	caller, err := utils.GetMember(mc.DB, target.WorkspaceID, user.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}
	if !caller.IsAdmin() && caller.ID != target.ID {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}

	if target.Role == models.RoleAdmin {
		admins, err := utils.CountAdmins(mc.DB, target.WorkspaceID)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete member", err)
		}
		if admins <= 1 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Cannot remove the last admin", nil)
		}
	}

	if err := mc.DB.Delete(&target).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete member", err)
	}

	mc.Logger.Printf("member %s removed from workspace %s by user %s", target.ID, target.WorkspaceID, user.ID)
	return c.JSON(utils.SuccessResponse(fiber.Map{"id": target.ID}))
}
