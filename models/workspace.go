package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Workspace is the top-level tenant grouping members, projects and tasks
type Workspace struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string `gorm:"not null" json:"name"`
	ImageURL string `json:"image_url"`

	// Sole credential for self-service join; rotated on demand
	InviteCode string `gorm:"not null" json:"invite_code"`

	OwnerID string `gorm:"type:uuid;not null;index" json:"owner_id"`

	// Relations
	Members  []Member  `gorm:"foreignKey:WorkspaceID" json:"members,omitempty"`
	Projects []Project `gorm:"foreignKey:WorkspaceID" json:"projects,omitempty"`
}

func (w *Workspace) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// Member links a user to a workspace with a role
type Member struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID      string `gorm:"type:uuid;not null;uniqueIndex:idx_member_user_workspace" json:"user_id"`
	WorkspaceID string `gorm:"type:uuid;not null;uniqueIndex:idx_member_user_workspace" json:"workspace_id"`

	Role string `gorm:"default:'member'" json:"role"` // admin, member

	// Relations
	User      User      `json:"-"`
	Workspace Workspace `json:"-"`
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// IsAdmin reports whether the member can perform workspace-level
// destructive operations
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}
